package deck

import (
	"github.com/deckforge/deckforge/pkg/opc"
	"github.com/deckforge/deckforge/pkg/style"
	"github.com/deckforge/deckforge/pkg/xmlnode"
)

// editPart parses a part, applies fn, and writes the part back when fn
// reports at least one change. Returns fn's count.
func editPart(p *opc.Package, part string, fn func(*xmlnode.Node) int) (int, error) {
	root, err := parsePart(p, part)
	if err != nil {
		return 0, err
	}
	n := fn(root)
	if n > 0 {
		writePart(p, part, root)
	}
	return n, nil
}

// ApplyPaletteToPart substitutes mapped srgb colors with scheme colors in
// one part and returns the replacement count.
func ApplyPaletteToPart(p *opc.Package, part string, mapping map[string]string) (int, error) {
	return editPart(p, part, func(root *xmlnode.Node) int {
		return style.ApplyColorMapping(root, mapping)
	})
}

// StripColorsFromPart removes hardcoded colors from one part.
func StripColorsFromPart(p *opc.Package, part string) (int, error) {
	return editPart(p, part, style.StripHardcodedColors)
}

// StripFontsFromPart removes inline run formatting from one part.
func StripFontsFromPart(p *opc.Package, part string) (int, error) {
	return editPart(p, part, style.StripInlineFormatting)
}

// SetFontFamilyForPart sets the latin typeface throughout one part.
func SetFontFamilyForPart(p *opc.Package, part, typeface string) (int, error) {
	return editPart(p, part, func(root *xmlnode.Node) int {
		return style.SetTextFontFamily(root, typeface)
	})
}

// SetLayoutTextStyles applies placeholder text-style overrides to a
// layout part.
func SetLayoutTextStyles(p *opc.Package, layoutPart string, update style.TextStyleUpdate) (int, error) {
	return editPart(p, layoutPart, func(root *xmlnode.Node) int {
		return style.SetLayoutTextStyles(root, update)
	})
}

// SetMasterTextStyles applies title/body text-style overrides to a
// master part's txStyles.
func SetMasterTextStyles(p *opc.Package, masterPart string, update style.TextStyleUpdate) (int, error) {
	return editPart(p, masterPart, func(root *xmlnode.Node) int {
		return style.SetMasterTextStyles(root, update)
	})
}
