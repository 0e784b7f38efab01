// Package opc implements the container engine for OOXML-style packages:
// zip archives of named parts, per-part relationship sidecars, and the
// [Content_Types].xml registry.
//
// The three layers build on each other:
//
//  1. [Package] - the authoritative, order-preserving part store
//  2. relationship helpers ([Relationships], [EnsureRelationship], ...)
//  3. content-type helpers ([EnsureOverride], [EnsureDefault], ...)
//
// Part names are normalized to POSIX-style paths without a leading slash.
// Parts are opaque bytes at this layer; higher layers parse and rewrite
// individual parts on demand.
//
// A Package is not safe for concurrent use. Exactly one logical owner may
// mutate a Package at a time; callers needing atomicity across a failed
// multi-step edit should work on a disposable copy and swap it in on
// success.
package opc

import (
	"archive/zip"
	"bytes"
	"io"
	"strings"

	"github.com/deckforge/deckforge/pkg/errors"
)

// Package is an in-memory OOXML container: a map of part name to bytes
// that remembers the order in which parts were first introduced.
//
// Save re-packs parts in that recorded order, so an unmodified package
// round-trips with its part sequence intact. A part that is deleted and
// later recreated is appended at the end, not restored to its original
// position.
type Package struct {
	parts map[string][]byte
	order []string
}

// New returns an empty package with no parts.
func New() *Package {
	return &Package{parts: make(map[string][]byte)}
}

// Open unpacks a zip archive into a new Package.
// Returns a CORRUPT_ARCHIVE error if data is not a valid zip stream.
func Open(data []byte) (*Package, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeCorruptArchive, err, "read container archive")
	}

	pkg := New()
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeCorruptArchive, err, "read part %s", f.Name)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeCorruptArchive, err, "read part %s", f.Name)
		}
		pkg.order = append(pkg.order, f.Name)
		pkg.parts[f.Name] = content
	}
	return pkg, nil
}

// Parts returns the names of all parts currently in the package, in
// insertion order.
func (p *Package) Parts() []string {
	names := make([]string, 0, len(p.parts))
	for _, name := range p.order {
		if _, ok := p.parts[name]; ok {
			names = append(names, name)
		}
	}
	return names
}

// Has reports whether a part with the given name exists.
func (p *Package) Has(name string) bool {
	_, ok := p.parts[NormalizePartName(name)]
	return ok
}

// Read returns the bytes of the named part.
// Returns a NOT_FOUND error if the part does not exist.
func (p *Package) Read(name string) ([]byte, error) {
	key := NormalizePartName(name)
	data, ok := p.parts[key]
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "part not found: %s", name)
	}
	return data, nil
}

// Write upserts the named part. A name is registered in the insertion
// order exactly once, when it is first introduced.
func (p *Package) Write(name string, data []byte) {
	key := NormalizePartName(name)
	if _, ok := p.parts[key]; !ok {
		p.order = append(p.order, key)
	}
	p.parts[key] = data
}

// Delete removes the named part from the package and from the insertion
// order. Deleting a missing part is a no-op.
func (p *Package) Delete(name string) {
	key := NormalizePartName(name)
	if _, ok := p.parts[key]; !ok {
		return
	}
	delete(p.parts, key)
	kept := p.order[:0]
	for _, entry := range p.order {
		if entry != key {
			kept = append(kept, entry)
		}
	}
	p.order = kept
}

// Save re-packs all currently-present parts into a zip archive in their
// recorded insertion order.
func (p *Package) Save() ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range p.Parts() {
		w, err := zw.Create(name)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "write part %s", name)
		}
		if _, err := w.Write(p.parts[name]); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "write part %s", name)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "finalize container archive")
	}
	return buf.Bytes(), nil
}

// NormalizePartName strips a single leading slash from a part name.
// Part identity inside the package is slash-free and POSIX-style.
func NormalizePartName(name string) string {
	return strings.TrimPrefix(name, "/")
}
