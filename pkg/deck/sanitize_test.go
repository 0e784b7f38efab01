package deck

import (
	"strings"
	"testing"

	"github.com/deckforge/deckforge/pkg/errors"
	"github.com/deckforge/deckforge/pkg/xmlnode"
)

func TestSanitizeSlides(t *testing.T) {
	p := fixtureDeck(t)
	p.Write("ppt/slides/slide1.xml", []byte(xmlDecl+
		`<p:sld `+nsDecls+`>`+
		`<p:cSld><p:bg><p:bgPr><a:effectLst/></p:bgPr></p:bg>`+
		`<p:spTree><p:sp><p:txBody><a:bodyPr/><a:p/></p:txBody></p:sp></p:spTree></p:cSld>`+
		`<p:transition/>`+
		`</p:sld>`))

	result, err := SanitizeSlides(p, nil)
	if err != nil {
		t.Fatalf("SanitizeSlides() error = %v", err)
	}
	if result.SlidesUpdated != 2 {
		t.Errorf("SlidesUpdated = %d, want 2", result.SlidesUpdated)
	}
	if result.ClrMapAdded != 2 || result.BgNoFillAdded != 1 || result.LstStyleAdded != 1 {
		t.Errorf("result = %+v", result)
	}

	data, _ := p.Read("ppt/slides/slide1.xml")
	root, _ := xmlnode.Parse(data)

	// clrMapOvr sits before the transition element.
	var tags []string
	for _, child := range root.Children {
		tags = append(tags, child.Tag)
	}
	ovr, trans := indexOf(tags, "p:clrMapOvr"), indexOf(tags, "p:transition")
	if ovr < 0 || trans < 0 || ovr > trans {
		t.Errorf("element order = %v", tags)
	}
	if root.Find("p:clrMapOvr/a:masterClrMapping") == nil {
		t.Error("masterClrMapping missing")
	}

	// lstStyle lands right after bodyPr.
	txBody := root.FindAll("p:txBody")[0]
	if len(txBody.Children) < 2 || txBody.Children[0].Tag != "a:bodyPr" || txBody.Children[1].Tag != "a:lstStyle" {
		t.Errorf("txBody children = %v", txBody.Children)
	}

	// The fill-less bgPr got an explicit noFill before effectLst.
	bgPr := root.Find("p:cSld/p:bg/p:bgPr")
	if bgPr.Children[0].Tag != "a:noFill" {
		t.Errorf("bgPr children = %v", bgPr.Children)
	}
}

func TestSanitizeSlidesIsIdempotent(t *testing.T) {
	p := fixtureDeck(t)
	if _, err := SanitizeSlides(p, nil); err != nil {
		t.Fatalf("first SanitizeSlides() error = %v", err)
	}
	result, err := SanitizeSlides(p, nil)
	if err != nil {
		t.Fatalf("second SanitizeSlides() error = %v", err)
	}
	if result.SlidesUpdated != 0 {
		t.Errorf("second run updated %d slides, want 0", result.SlidesUpdated)
	}
}

func TestSanitizeSlidesSubset(t *testing.T) {
	p := fixtureDeck(t)
	result, err := SanitizeSlides(p, map[int]bool{2: true})
	if err != nil {
		t.Fatalf("SanitizeSlides() error = %v", err)
	}
	if result.SlidesUpdated != 1 {
		t.Errorf("SlidesUpdated = %d, want 1", result.SlidesUpdated)
	}

	// Slide 1 must be untouched.
	data, _ := p.Read("ppt/slides/slide1.xml")
	if strings.Contains(string(data), "clrMapOvr") {
		t.Error("slide outside the subset was modified")
	}
}

func TestSanitizeSlidesOutOfRange(t *testing.T) {
	p := fixtureDeck(t)
	if _, err := SanitizeSlides(p, map[int]bool{7: true}); !errors.Is(err, errors.ErrCodeOutOfRange) {
		t.Errorf("error = %v, want OUT_OF_RANGE", err)
	}
}

func indexOf(values []string, want string) int {
	for i, v := range values {
		if v == want {
			return i
		}
	}
	return -1
}
