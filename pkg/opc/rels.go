package opc

import (
	"encoding/xml"
	"path"
	"strconv"
	"strings"

	"github.com/deckforge/deckforge/pkg/errors"
)

// RelationshipsNS is the namespace of relationship sidecar parts.
const RelationshipsNS = "http://schemas.openxmlformats.org/package/2006/relationships"

// TargetModeExternal marks a relationship whose target is not a part and
// must never be resolved against the package.
const TargetModeExternal = "External"

// Relationship is one typed directed edge from a source part to a target.
// The id is unique only within the relationship set of one source part.
type Relationship struct {
	ID         string
	Type       string
	Target     string
	TargetMode string
}

// IsExternal reports whether the relationship points outside the package.
func (r Relationship) IsExternal() bool {
	return r.TargetMode == TargetModeExternal
}

// RelsPartFor returns the name of the relationship sidecar for the given
// source part: dirname(P)/_rels/basename(P).rels, or _rels/.rels for the
// package root (empty source name).
func RelsPartFor(sourcePart string) string {
	source := NormalizePartName(sourcePart)
	if source == "" {
		return "_rels/.rels"
	}
	return path.Join(path.Dir(source), "_rels", path.Base(source)+".rels")
}

// SourcePartFor inverts RelsPartFor: given a sidecar name, it returns the
// source part the sidecar belongs to ("" for the package root).
func SourcePartFor(relsPart string) string {
	rels := NormalizePartName(relsPart)
	if rels == "_rels/.rels" {
		return ""
	}
	relsDir := path.Dir(rels)
	base := strings.TrimSuffix(path.Base(rels), ".rels")
	sourceDir := path.Dir(relsDir)
	if sourceDir == "." {
		return base
	}
	return path.Join(sourceDir, base)
}

type relationshipXML struct {
	ID         string `xml:"Id,attr"`
	Type       string `xml:"Type,attr"`
	Target     string `xml:"Target,attr"`
	TargetMode string `xml:"TargetMode,attr,omitempty"`
}

type relationshipsXML struct {
	XMLName xml.Name          `xml:"Relationships"`
	Xmlns   string            `xml:"xmlns,attr"`
	Rels    []relationshipXML `xml:"Relationship"`
}

// ParseRelationships decodes a relationship sidecar part.
func ParseRelationships(data []byte) ([]Relationship, error) {
	var doc relationshipsXML
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeCorruptArchive, err, "parse relationships")
	}
	rels := make([]Relationship, 0, len(doc.Rels))
	for _, r := range doc.Rels {
		rels = append(rels, Relationship{
			ID:         r.ID,
			Type:       r.Type,
			Target:     r.Target,
			TargetMode: r.TargetMode,
		})
	}
	return rels, nil
}

// SerializeRelationships encodes a relationship list as sidecar XML.
func SerializeRelationships(rels []Relationship) []byte {
	doc := relationshipsXML{Xmlns: RelationshipsNS}
	for _, r := range rels {
		doc.Rels = append(doc.Rels, relationshipXML{
			ID:         r.ID,
			Type:       r.Type,
			Target:     r.Target,
			TargetMode: r.TargetMode,
		})
	}
	out, _ := xml.Marshal(doc)
	return append([]byte(xml.Header), out...)
}

// Relationships returns the ordered relationship set of the given source
// part. A missing sidecar yields an empty list, not an error.
func Relationships(pkg *Package, sourcePart string) ([]Relationship, error) {
	relsPart := RelsPartFor(sourcePart)
	if !pkg.Has(relsPart) {
		return nil, nil
	}
	data, err := pkg.Read(relsPart)
	if err != nil {
		return nil, err
	}
	return ParseRelationships(data)
}

// WriteRelationships replaces the full contents of a sidecar. Structural
// edits that remove or renumber relationships wholesale go through here.
func WriteRelationships(pkg *Package, sourcePart string, rels []Relationship) {
	pkg.Write(RelsPartFor(sourcePart), SerializeRelationships(rels))
}

// EnsureRelationship returns the existing relationship with the given
// (type, target) pair if the source part already has one, so repeated
// calls never create duplicates. Otherwise it allocates the smallest
// unused rId<N> starting at 1, appends the new relationship, and persists
// the sidecar immediately.
func EnsureRelationship(pkg *Package, sourcePart, relType, target string) (Relationship, error) {
	rels, err := Relationships(pkg, sourcePart)
	if err != nil {
		return Relationship{}, err
	}
	for _, rel := range rels {
		if rel.Type == relType && rel.Target == target {
			return rel, nil
		}
	}

	rel := Relationship{ID: NextRelationshipID(rels), Type: relType, Target: target}
	rels = append(rels, rel)
	WriteRelationships(pkg, sourcePart, rels)
	return rel, nil
}

// NextRelationshipID returns the smallest id of the form rId<N> (N >= 1)
// not used by any relationship in rels. The counter is derived from the
// current set on every call; it is never cached.
func NextRelationshipID(rels []Relationship) string {
	used := make(map[string]bool, len(rels))
	for _, rel := range rels {
		used[rel.ID] = true
	}
	for n := 1; ; n++ {
		id := "rId" + strconv.Itoa(n)
		if !used[id] {
			return id
		}
	}
}
