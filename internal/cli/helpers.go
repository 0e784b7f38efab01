package cli

import (
	"context"
	"sort"

	"github.com/spf13/cobra"

	"github.com/deckforge/deckforge/pkg/deck"
	"github.com/deckforge/deckforge/pkg/errors"
	"github.com/deckforge/deckforge/pkg/opc"
	"github.com/deckforge/deckforge/pkg/storage"
	"github.com/deckforge/deckforge/pkg/template"
)

// openPackage fetches and opens the archive at uri.
func openPackage(ctx context.Context, uri string) (*opc.Package, error) {
	data, err := storage.ReadBytes(ctx, uri, configFromContext(ctx).storageConfig())
	if err != nil {
		return nil, err
	}
	return opc.Open(data)
}

// openOrNewPackage opens the archive at uri, or starts from a fresh base
// template when uri is empty.
func openOrNewPackage(ctx context.Context, uri string) (*opc.Package, error) {
	if uri == "" {
		return template.New().Package(), nil
	}
	return openPackage(ctx, uri)
}

// savePackage rebuilds the archive and writes it to uri.
func savePackage(ctx context.Context, p *opc.Package, uri string) error {
	data, err := p.Save()
	if err != nil {
		return err
	}
	return storage.WriteBytes(ctx, uri, data, configFromContext(ctx).storageConfig())
}

// openTemplate opens the template at uri, or a fresh base template when
// uri is empty.
func openTemplate(ctx context.Context, uri string) (*template.Template, error) {
	if uri == "" {
		return template.New(), nil
	}
	return template.Open(ctx, uri, configFromContext(ctx).storageConfig())
}

// saveTemplate writes the template to uri.
func saveTemplate(ctx context.Context, tpl *template.Template, uri string) error {
	return tpl.Save(ctx, uri, configFromContext(ctx).storageConfig())
}

// partEditFlags is the palette/font override flag set shared by
// set-master, set-layout, and set-slide.
type partEditFlags struct {
	palette     string
	paletteNone bool
	font        string
	fontsNone   bool
}

func (f *partEditFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.palette, "palette", "", "path to a slot-to-hex palette JSON")
	cmd.Flags().BoolVar(&f.paletteNone, "palette-none", false, "strip hard-coded colors from the part")
	cmd.Flags().StringVar(&f.font, "font", "", "font family to force on every run")
	cmd.Flags().BoolVar(&f.fontsNone, "fonts-none", false, "strip font overrides from the part")
}

func (f *partEditFlags) validate() error {
	if f.palette != "" && f.paletteNone {
		return errors.New(errors.ErrCodeInvalidInput, "use either --palette or --palette-none, not both")
	}
	if f.font != "" && f.fontsNone {
		return errors.New(errors.ErrCodeInvalidInput, "use either --font or --fonts-none, not both")
	}
	return nil
}

// apply runs the requested edits against one part.
func (f *partEditFlags) apply(p *opc.Package, part string) error {
	if f.palette != "" {
		mapping, err := loadJSONMap(f.palette)
		if err != nil {
			return err
		}
		if _, err := deck.ApplyPaletteToPart(p, part, mapping); err != nil {
			return err
		}
	}
	if f.paletteNone {
		if _, err := deck.StripColorsFromPart(p, part); err != nil {
			return err
		}
	}
	if f.font != "" {
		if _, err := deck.SetFontFamilyForPart(p, part, f.font); err != nil {
			return err
		}
	}
	if f.fontsNone {
		if _, err := deck.StripFontsFromPart(p, part); err != nil {
			return err
		}
	}
	return nil
}

// slideSet parses a slides selection flag, nil when empty.
func slideSet(value string) (map[int]bool, error) {
	if value == "" {
		return nil, nil
	}
	return errors.ParseSlideNumbers(value)
}

// sortedSlideNumbers flattens and sorts a slide selection.
func sortedSlideNumbers(set map[int]bool) []int {
	numbers := make([]int, 0, len(set))
	for n := range set {
		numbers = append(numbers, n)
	}
	sort.Ints(numbers)
	return numbers
}
