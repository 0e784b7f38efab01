package deck

import (
	"strings"
	"testing"

	"github.com/deckforge/deckforge/pkg/opc"
)

func writeColoredSlides(p *opc.Package) {
	colored := xmlDecl +
		`<p:sld ` + nsDecls + `><p:cSld><p:spTree>` +
		`<p:sp><p:spPr><a:solidFill><a:srgbClr val="FF0000"/></a:solidFill></p:spPr></p:sp>` +
		`<p:sp><p:spPr><a:solidFill><a:srgbClr val="123456"/></a:solidFill></p:spPr></p:sp>` +
		`</p:spTree></p:cSld></p:sld>`
	p.Write("ppt/slides/slide1.xml", []byte(colored))
}

func TestNormalizeSlideColors(t *testing.T) {
	p := fixtureDeck(t)
	writeColoredSlides(p)

	result, err := NormalizeSlideColors(p, map[string]string{"#ff0000": "accent1"}, nil)
	if err != nil {
		t.Fatalf("NormalizeSlideColors() error = %v", err)
	}
	if result.SlidesTotal != 2 || result.SlidesTouched != 1 || result.Replacements != 1 {
		t.Errorf("result = %+v", result)
	}
	if result.PerSlide[1] != 1 {
		t.Errorf("PerSlide = %v", result.PerSlide)
	}

	data, _ := p.Read("ppt/slides/slide1.xml")
	out := string(data)
	if !strings.Contains(out, `<a:schemeClr val="accent1"/>`) {
		t.Errorf("mapped color not replaced: %s", out)
	}
	if !strings.Contains(out, `<a:srgbClr val="123456"/>`) {
		t.Errorf("unmapped color was touched: %s", out)
	}
}

func TestNormalizeSlideColorsHonorsSubset(t *testing.T) {
	p := fixtureDeck(t)
	writeColoredSlides(p)

	result, err := NormalizeSlideColors(p, map[string]string{"FF0000": "accent1"}, map[int]bool{2: true})
	if err != nil {
		t.Fatalf("NormalizeSlideColors() error = %v", err)
	}
	if result.SlidesTouched != 0 || result.Replacements != 0 {
		t.Errorf("result = %+v, want untouched", result)
	}
	data, _ := p.Read("ppt/slides/slide1.xml")
	if !strings.Contains(string(data), `val="FF0000"`) {
		t.Error("slide outside the subset was modified")
	}
}
