// Package template ties the container, theme, and storage layers into a
// single handle for a presentation template: open from any storage URI,
// edit, validate, and save.
package template

import (
	"context"
	"sort"
	"strings"

	"github.com/deckforge/deckforge/pkg/deck"
	"github.com/deckforge/deckforge/pkg/errors"
	"github.com/deckforge/deckforge/pkg/opc"
	"github.com/deckforge/deckforge/pkg/storage"
	"github.com/deckforge/deckforge/pkg/theme"
)

// ThemeContentType is the declared content type of theme parts.
const ThemeContentType = "application/vnd.openxmlformats-officedocument.theme+xml"

// Template wraps an open presentation archive together with its primary
// theme part.
type Template struct {
	pkg       *opc.Package
	themePart string
	theme     *theme.Theme
}

// Open fetches the archive at uri and opens it.
func Open(ctx context.Context, uri string, cfg storage.Config) (*Template, error) {
	data, err := storage.ReadBytes(ctx, uri, cfg)
	if err != nil {
		return nil, err
	}
	return FromBytes(data)
}

// FromBytes opens a template from raw archive bytes.
func FromBytes(data []byte) (*Template, error) {
	pkg, err := opc.Open(data)
	if err != nil {
		return nil, err
	}
	return FromPackage(pkg)
}

// FromPackage wraps an already open package.
func FromPackage(pkg *opc.Package) (*Template, error) {
	themePart, err := findThemePart(pkg)
	if err != nil {
		return nil, err
	}
	return &Template{pkg: pkg, themePart: themePart}, nil
}

// New builds a fresh minimal template with one master, one layout, one
// blank slide, and an Office-style theme.
func New() *Template {
	pkg := newBasePackage()
	return &Template{pkg: pkg, themePart: baseThemePart}
}

// Package exposes the underlying container for part-level edits.
func (t *Template) Package() *opc.Package {
	return t.pkg
}

// ThemePart names the primary theme part.
func (t *Template) ThemePart() string {
	return t.themePart
}

// Theme lazily parses the primary theme part. The parsed theme is
// flushed back into the container on save.
func (t *Template) Theme() (*theme.Theme, error) {
	if t.theme != nil {
		return t.theme, nil
	}
	data, err := t.pkg.Read(t.themePart)
	if err != nil {
		return nil, err
	}
	parsed, err := theme.Parse(data)
	if err != nil {
		return nil, err
	}
	t.theme = parsed
	return t.theme, nil
}

// Bytes serializes the template: pending theme edits are flushed, the
// theme relationship and content type override are ensured, and the
// archive is rebuilt.
func (t *Template) Bytes() ([]byte, error) {
	if t.theme != nil {
		t.pkg.Write(t.themePart, t.theme.Bytes())
	}
	if err := t.ensureThemeRelationship(); err != nil {
		return nil, err
	}
	if _, err := opc.EnsureOverride(t.pkg, t.themePart, ThemeContentType); err != nil {
		return nil, err
	}
	return t.pkg.Save()
}

// Save serializes the template and writes it to uri.
func (t *Template) Save(ctx context.Context, uri string, cfg storage.Config) error {
	data, err := t.Bytes()
	if err != nil {
		return err
	}
	return storage.WriteBytes(ctx, uri, data, cfg)
}

func (t *Template) ensureThemeRelationship() error {
	if !t.pkg.Has(deck.PresentationPart) {
		return nil
	}
	target := opc.RelativeTarget(deck.PresentationPart, t.themePart)
	_, err := opc.EnsureRelationship(t.pkg, deck.PresentationPart, deck.ThemeRelType, target)
	return err
}

func findThemePart(pkg *opc.Package) (string, error) {
	var candidates []string
	for _, part := range pkg.Parts() {
		if strings.HasPrefix(part, "ppt/theme/") && strings.HasSuffix(part, ".xml") {
			candidates = append(candidates, part)
		}
	}
	if len(candidates) == 0 {
		return "", errors.New(errors.ErrCodeNotFound, "no theme part in package")
	}
	for _, part := range candidates {
		if part == "ppt/theme/theme1.xml" {
			return part, nil
		}
	}
	sort.Strings(candidates)
	return candidates[0], nil
}
