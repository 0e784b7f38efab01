// Package theme edits the theme part: color scheme slots, font scheme,
// and the scheme names.
package theme

import (
	"strings"

	"github.com/deckforge/deckforge/pkg/errors"
	"github.com/deckforge/deckforge/pkg/xmlnode"
)

// ColorSlots lists the scheme slots in their conventional order.
var ColorSlots = []string{
	"dk1", "lt1", "dk2", "lt2",
	"accent1", "accent2", "accent3", "accent4", "accent5", "accent6",
	"hlink", "folHlink",
}

// slotSynonyms maps the spelled-out slot names callers tend to use to
// the scheme element names.
var slotSynonyms = map[string]string{
	"dark1":  "dk1",
	"light1": "lt1",
	"dark2":  "dk2",
	"light2": "lt2",
}

// CanonicalSlot maps a slot name or its spelled-out synonym to the
// scheme element name, or "" when the name matches no slot.
func CanonicalSlot(name string) string {
	if canonical, ok := slotSynonyms[name]; ok {
		name = canonical
	}
	for _, slot := range ColorSlots {
		if slot == name {
			return slot
		}
	}
	return ""
}

// FontSpec is one font-scheme entry. EastAsian and ComplexScript are
// empty when the script has no explicit typeface.
type FontSpec struct {
	Latin         string `json:"latin"`
	EastAsian     string `json:"east_asian,omitempty"`
	ComplexScript string `json:"complex_script,omitempty"`
}

// Theme wraps a parsed theme document. Edits accumulate in memory;
// Bytes serializes the result for writing back to the part.
type Theme struct {
	root       *xmlnode.Node
	clrScheme  *xmlnode.Node
	fontScheme *xmlnode.Node
}

// Parse decodes a theme part and locates its color and font schemes.
func Parse(data []byte) (*Theme, error) {
	root, err := xmlnode.Parse(data)
	if err != nil {
		return nil, err
	}
	elements := root.Find("a:themeElements")
	if elements == nil {
		return nil, errors.New(errors.ErrCodeInvalidPart, "theme is missing themeElements")
	}
	clrScheme := elements.Find("a:clrScheme")
	if clrScheme == nil {
		return nil, errors.New(errors.ErrCodeInvalidPart, "theme is missing clrScheme")
	}
	fontScheme := elements.Find("a:fontScheme")
	if fontScheme == nil {
		return nil, errors.New(errors.ErrCodeInvalidPart, "theme is missing fontScheme")
	}
	return &Theme{root: root, clrScheme: clrScheme, fontScheme: fontScheme}, nil
}

// Bytes serializes the theme document.
func (t *Theme) Bytes() []byte {
	return t.root.Bytes()
}

// Color returns the slot's hex value as "#RRGGBB", preferring srgbClr and
// falling back to a sysClr's lastClr. Empty when the slot is missing or
// carries neither.
func (t *Theme) Color(slot string) string {
	node := t.clrScheme.Find("a:" + slot)
	if node == nil {
		return ""
	}
	if srgb := node.Find("a:srgbClr"); srgb != nil && srgb.Attr("val") != "" {
		return "#" + strings.ToUpper(srgb.Attr("val"))
	}
	if sys := node.Find("a:sysClr"); sys != nil && sys.Attr("lastClr") != "" {
		return "#" + strings.ToUpper(sys.Attr("lastClr"))
	}
	return ""
}

// SetColor replaces the slot's color with an srgbClr for the given hex
// value, creating the slot when missing. The value may carry a leading
// '#' and any case.
func (t *Theme) SetColor(slot, value string) error {
	hex, err := errors.NormalizeHexColor(value)
	if err != nil {
		return err
	}
	node := t.clrScheme.Find("a:" + slot)
	if node == nil {
		node = xmlnode.New("a:" + slot)
		t.clrScheme.Append(node)
	}
	node.Children = nil
	node.Append(xmlnode.New("a:srgbClr", "val", hex))
	return nil
}

// Colors returns every slot's current value keyed by slot name. Missing
// slots map to "".
func (t *Theme) Colors() map[string]string {
	out := make(map[string]string, len(ColorSlots))
	for _, slot := range ColorSlots {
		out[slot] = t.Color(slot)
	}
	return out
}

// MajorFont returns the major font spec, or nil when absent.
func (t *Theme) MajorFont() *FontSpec {
	return t.fontSpec("a:majorFont")
}

// MinorFont returns the minor font spec, or nil when absent.
func (t *Theme) MinorFont() *FontSpec {
	return t.fontSpec("a:minorFont")
}

// SetMajorFont sets the major font's latin typeface and, when non-empty,
// the east-asian and complex-script typefaces.
func (t *Theme) SetMajorFont(spec FontSpec) {
	t.setFontSpec("a:majorFont", spec)
}

// SetMinorFont sets the minor font like SetMajorFont.
func (t *Theme) SetMinorFont(spec FontSpec) {
	t.setFontSpec("a:minorFont", spec)
}

func (t *Theme) fontSpec(tag string) *FontSpec {
	node := t.fontScheme.Find(tag)
	if node == nil {
		return nil
	}
	latin := node.Find("a:latin")
	if latin == nil {
		return nil
	}
	spec := &FontSpec{Latin: latin.Attr("typeface")}
	if ea := node.Find("a:ea"); ea != nil {
		spec.EastAsian = ea.Attr("typeface")
	}
	if cs := node.Find("a:cs"); cs != nil {
		spec.ComplexScript = cs.Attr("typeface")
	}
	return spec
}

func (t *Theme) setFontSpec(tag string, spec FontSpec) {
	node := t.fontScheme.Find(tag)
	if node == nil {
		node = xmlnode.New(tag)
		t.fontScheme.Append(node)
	}
	setFontChild(node, "a:latin", spec.Latin)
	if spec.EastAsian != "" {
		setFontChild(node, "a:ea", spec.EastAsian)
	}
	if spec.ComplexScript != "" {
		setFontChild(node, "a:cs", spec.ComplexScript)
	}
}

func setFontChild(node *xmlnode.Node, tag, typeface string) {
	child := node.Find(tag)
	if child == nil {
		child = xmlnode.New(tag)
		node.Append(child)
	}
	child.SetAttr("typeface", typeface)
}

// Name returns the theme's name attribute.
func (t *Theme) Name() string { return t.root.Attr("name") }

// SetName sets the theme's name attribute.
func (t *Theme) SetName(value string) { t.root.SetAttr("name", value) }

// ColorSchemeName returns the color scheme's name attribute.
func (t *Theme) ColorSchemeName() string { return t.clrScheme.Attr("name") }

// SetColorSchemeName sets the color scheme's name attribute.
func (t *Theme) SetColorSchemeName(value string) { t.clrScheme.SetAttr("name", value) }

// FontSchemeName returns the font scheme's name attribute.
func (t *Theme) FontSchemeName() string { return t.fontScheme.Attr("name") }

// SetFontSchemeName sets the font scheme's name attribute.
func (t *Theme) SetFontSchemeName(value string) { t.fontScheme.SetAttr("name", value) }
