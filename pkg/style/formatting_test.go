package style

import (
	"strings"
	"testing"

	"github.com/deckforge/deckforge/pkg/xmlnode"
)

func parseDoc(t *testing.T, doc string) *xmlnode.Node {
	t.Helper()
	root, err := xmlnode.Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return root
}

func TestNormalizeColorMapping(t *testing.T) {
	got := NormalizeColorMapping(map[string]string{
		"#ff0000": "accent1",
		" 00ff00": "dark1",
		"0000FF":  " lt2 ",
	})
	want := map[string]string{
		"FF0000": "accent1",
		"00FF00": "dk1",
		"0000FF": "lt2",
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("mapping[%q] = %q, want %q", k, got[k], v)
		}
	}
}

func TestApplyColorMappingReplacesInPlace(t *testing.T) {
	doc := `<p:sp><a:solidFill><a:srgbClr val="FF0000"><a:alpha val="50000"/></a:srgbClr></a:solidFill>` +
		`<a:solidFill><a:srgbClr val="123456"/></a:solidFill></p:sp>`
	root := parseDoc(t, doc)

	n := ApplyColorMapping(root, map[string]string{"#ff0000": "accent1"})
	if n != 1 {
		t.Fatalf("replacements = %d, want 1", n)
	}
	out := string(root.Bytes())
	if !strings.Contains(out, `<a:schemeClr val="accent1"><a:alpha val="50000"/></a:schemeClr>`) {
		t.Errorf("modifier children not preserved: %s", out)
	}
	if !strings.Contains(out, `<a:srgbClr val="123456"/>`) {
		t.Errorf("unmapped color was touched: %s", out)
	}
}

func TestStripHardcodedColors(t *testing.T) {
	doc := `<p:sld><p:clrMapOvr><a:masterClrMapping/></p:clrMapOvr>` +
		`<a:solidFill><a:srgbClr val="FF0000"/></a:solidFill>` +
		`<a:solidFill><a:schemeClr val="accent1"/></a:solidFill>` +
		`<a:gs><a:sysClr val="windowText" lastClr="000000"/></a:gs></p:sld>`
	root := parseDoc(t, doc)

	removed := StripHardcodedColors(root)
	if removed != 3 {
		t.Errorf("removed = %d, want 3", removed)
	}
	out := string(root.Bytes())
	if strings.Contains(out, "srgbClr") || strings.Contains(out, "sysClr") || strings.Contains(out, "clrMapOvr") {
		t.Errorf("hardcoded colors remain: %s", out)
	}
	// The solidFill holding a schemeClr stays; the emptied ones go.
	if strings.Count(out, "a:solidFill") != 2 {
		t.Errorf("emptied fills not dropped: %s", out)
	}
	if strings.Contains(out, "<a:gs") {
		t.Errorf("emptied gradient stop not dropped: %s", out)
	}
}

func TestStripInlineFormatting(t *testing.T) {
	doc := `<p:sp><a:p><a:pPr><a:buChar char="-"/></a:pPr>` +
		`<a:r><a:rPr sz="1800" b="1"/><a:t>x</a:t></a:r></a:p>` +
		`<a:lstStyle><a:lvl1pPr><a:defRPr sz="2000"/></a:lvl1pPr></a:lstStyle></p:sp>`
	root := parseDoc(t, doc)

	removed := StripInlineFormatting(root)
	if removed != 4 {
		t.Errorf("removed = %d, want 4", removed)
	}
	out := string(root.Bytes())
	for _, tag := range []string{"a:rPr", "a:defRPr", "a:lstStyle", "a:buChar"} {
		if strings.Contains(out, tag) {
			t.Errorf("%s still present: %s", tag, out)
		}
	}
	if !strings.Contains(out, "<a:t>x</a:t>") {
		t.Errorf("text content lost: %s", out)
	}
}

func TestSetTextFontFamily(t *testing.T) {
	doc := `<p:sp><a:r><a:rPr><a:latin typeface="Arial"/></a:rPr></a:r>` +
		`<a:lvl1pPr><a:defRPr sz="1800"/></a:lvl1pPr></p:sp>`
	root := parseDoc(t, doc)

	updated := SetTextFontFamily(root, "Inter")
	if updated != 2 {
		t.Errorf("updated = %d, want 2", updated)
	}
	out := string(root.Bytes())
	if strings.Contains(out, "Arial") {
		t.Errorf("existing typeface not replaced: %s", out)
	}
	if strings.Count(out, `typeface="Inter"`) != 2 {
		t.Errorf("typeface not applied everywhere: %s", out)
	}
}
