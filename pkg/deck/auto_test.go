package deck

import (
	"strings"
	"testing"

	"github.com/deckforge/deckforge/pkg/xmlnode"
)

func TestAutoLayout(t *testing.T) {
	p := fixtureDeck(t)

	result, err := AutoLayout(p, [][]int{{1}, {2}}, AutoLayoutOptions{Assign: true})
	if err != nil {
		t.Fatalf("AutoLayout() error = %v", err)
	}
	if result.GroupCount != 2 {
		t.Errorf("GroupCount = %d, want 2", result.GroupCount)
	}
	if len(result.CreatedLayouts) != 2 {
		t.Fatalf("CreatedLayouts = %v, want 2 layouts", result.CreatedLayouts)
	}

	for i, layout := range result.CreatedLayouts {
		data, _ := p.Read(layout)
		root, err := xmlnode.Parse(data)
		if err != nil {
			t.Fatalf("parse %s: %v", layout, err)
		}
		wantName := "Auto Layout " + string(rune('1'+i))
		if got := root.Attr("name"); got != wantName {
			t.Errorf("layout %d name = %q, want %q", i, got, wantName)
		}
	}

	// Each slide now points at its group's layout.
	layout1, _ := SlideLayoutPart(p, "ppt/slides/slide1.xml")
	layout2, _ := SlideLayoutPart(p, "ppt/slides/slide2.xml")
	if layout1 != result.CreatedLayouts[0] || layout2 != result.CreatedLayouts[1] {
		t.Errorf("assignments = %q, %q, want %v", layout1, layout2, result.CreatedLayouts)
	}
}

func TestAutoLayoutStripsAndApplies(t *testing.T) {
	p := fixtureDeck(t)
	writeColoredSlides(p)

	result, err := AutoLayout(p, [][]int{{1}}, AutoLayoutOptions{
		Prefix:      "Brand",
		StripColors: true,
		Palette:     map[string]string{"FF0000": "accent1"},
	})
	if err != nil {
		t.Fatalf("AutoLayout() error = %v", err)
	}
	if len(result.CreatedLayouts) != 1 {
		t.Fatalf("CreatedLayouts = %v", result.CreatedLayouts)
	}

	// The new layout had the palette applied before slides were stripped.
	layoutData, _ := p.Read(result.CreatedLayouts[0])
	if !strings.Contains(string(layoutData), `<a:schemeClr val="accent1"/>`) {
		t.Error("palette not applied to the created layout")
	}

	slideData, _ := p.Read("ppt/slides/slide1.xml")
	if strings.Contains(string(slideData), "srgbClr") {
		t.Error("slide colors not stripped")
	}
}

func TestAutoLayoutSkipsEmptyGroups(t *testing.T) {
	p := fixtureDeck(t)
	result, err := AutoLayout(p, [][]int{{}, {1}}, AutoLayoutOptions{})
	if err != nil {
		t.Fatalf("AutoLayout() error = %v", err)
	}
	if len(result.CreatedLayouts) != 1 {
		t.Errorf("CreatedLayouts = %v, want 1", result.CreatedLayouts)
	}
}
