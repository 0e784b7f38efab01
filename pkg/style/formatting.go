// Package style rewrites drawing XML in place: palette substitution,
// stripping hardcoded formatting, and placeholder typography. Functions
// operate on a parsed document and return how many nodes they touched;
// callers decide whether to write the part back.
package style

import (
	"strings"

	"github.com/deckforge/deckforge/pkg/xmlnode"
)

// Friendly scheme-slot names accepted in palette mappings.
var schemeSynonyms = map[string]string{
	"dark1":  "dk1",
	"light1": "lt1",
	"dark2":  "dk2",
	"light2": "lt2",
}

// NormalizeColorMapping uppercases hex keys (leading '#' stripped) and
// resolves scheme-slot synonyms in the values.
func NormalizeColorMapping(mapping map[string]string) map[string]string {
	normalized := make(map[string]string, len(mapping))
	for key, value := range mapping {
		color := strings.ToUpper(strings.TrimPrefix(strings.TrimSpace(key), "#"))
		scheme := strings.TrimSpace(value)
		if canonical, ok := schemeSynonyms[strings.ToLower(scheme)]; ok {
			scheme = canonical
		}
		normalized[color] = scheme
	}
	return normalized
}

// ApplyColorMapping replaces each a:srgbClr whose value appears in the
// mapping with an a:schemeClr for the mapped slot, keeping the color
// node's children (alpha, shade, and similar modifiers) and position.
// Returns the number of replacements.
func ApplyColorMapping(root *xmlnode.Node, mapping map[string]string) int {
	normalized := NormalizeColorMapping(mapping)
	replacements := 0
	root.Walk(func(parent *xmlnode.Node) {
		for i, child := range parent.Children {
			if child.Tag != "a:srgbClr" {
				continue
			}
			raw := child.Attr("val")
			if raw == "" {
				continue
			}
			key := strings.ToUpper(strings.TrimPrefix(strings.TrimSpace(raw), "#"))
			slot, ok := normalized[key]
			if !ok {
				continue
			}
			scheme := xmlnode.New("a:schemeClr", "val", slot)
			scheme.Children = child.Children
			scheme.Text = child.Text
			scheme.Tail = child.Tail
			parent.Children[i] = scheme
			replacements++
		}
	})
	return replacements
}

// StripHardcodedColors removes every a:srgbClr and a:sysClr node plus any
// p:clrMapOvr, then drops solidFill and gradient-stop nodes left without
// a color child. Returns the number of color nodes removed.
func StripHardcodedColors(root *xmlnode.Node) int {
	removed := 0
	removed += removeByTag(root, "a:srgbClr")
	removed += removeByTag(root, "a:sysClr")
	removed += removeByTag(root, "p:clrMapOvr")

	parents := root.ParentMap()
	for _, tag := range []string{"a:solidFill", "a:gs"} {
		for _, node := range root.FindAll(tag) {
			if !hasColorChild(node) {
				if parent := parents[node]; parent != nil {
					parent.Remove(node)
				}
			}
		}
	}
	return removed
}

// Inline run-formatting nodes stripped wholesale so master and layout
// defaults take over.
var inlineFormattingTags = []string{
	"a:rPr",
	"a:defRPr",
	"a:lstStyle",
	"a:buClr",
	"a:buSz",
	"a:buFont",
	"a:buChar",
	"a:buAutoNum",
}

// StripInlineFormatting removes run properties, list styles, and bullet
// styling, returning the number of nodes removed.
func StripInlineFormatting(root *xmlnode.Node) int {
	removed := 0
	for _, tag := range inlineFormattingTags {
		removed += removeByTag(root, tag)
	}
	return removed
}

// SetTextFontFamily sets the latin typeface on every rPr and defRPr,
// creating the a:latin child where missing. Returns the number of
// properties updated.
func SetTextFontFamily(root *xmlnode.Node, typeface string) int {
	updated := 0
	for _, tag := range []string{"a:rPr", "a:defRPr"} {
		for _, node := range root.FindAll(tag) {
			latin := node.Find("a:latin")
			if latin == nil {
				latin = xmlnode.New("a:latin")
				node.Append(latin)
			}
			latin.SetAttr("typeface", typeface)
			updated++
		}
	}
	return updated
}

func removeByTag(root *xmlnode.Node, tag string) int {
	parents := root.ParentMap()
	removed := 0
	for _, node := range root.FindAll(tag) {
		if parent := parents[node]; parent != nil && parent.Remove(node) {
			removed++
		}
	}
	return removed
}

func hasColorChild(node *xmlnode.Node) bool {
	for _, child := range node.Children {
		switch child.Tag {
		case "a:srgbClr", "a:schemeClr", "a:sysClr", "a:prstClr":
			return true
		}
	}
	return false
}
