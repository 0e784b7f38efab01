package deck

import (
	"strings"
	"testing"

	"github.com/deckforge/deckforge/pkg/errors"
	"github.com/deckforge/deckforge/pkg/opc"
	"github.com/deckforge/deckforge/pkg/xmlnode"
)

func TestMakeLayoutFromSlide(t *testing.T) {
	p := fixtureDeck(t)

	newLayout, err := MakeLayoutFromSlide(p, 1, "Hero", 1)
	if err != nil {
		t.Fatalf("MakeLayoutFromSlide() error = %v", err)
	}
	if newLayout != "ppt/slideLayouts/slideLayout2.xml" {
		t.Fatalf("new layout = %q, want ppt/slideLayouts/slideLayout2.xml", newLayout)
	}
	if !p.Has(newLayout) {
		t.Fatal("new layout part not written")
	}

	data, _ := p.Read(newLayout)
	root, err := xmlnode.Parse(data)
	if err != nil {
		t.Fatalf("parse new layout: %v", err)
	}
	if root.Attr("name") != "Hero" {
		t.Errorf("layout name = %q, want Hero", root.Attr("name"))
	}
	// Body comes from the slide, not the template layout.
	if root.Find("p:cSld") == nil || len(root.Find("p:cSld/p:spTree").Children) == 0 {
		t.Error("slide body was not copied into the layout")
	}

	if !opc.HasOverride(p, newLayout) {
		t.Error("no content-type override for the new layout")
	}

	// Master gained one layout-id entry with id max+1 and a binding rel.
	masterData, _ := p.Read("ppt/slideMasters/slideMaster1.xml")
	masterRoot, _ := xmlnode.Parse(masterData)
	list := masterRoot.Find("p:sldLayoutIdLst")
	if len(list.Children) != 2 {
		t.Fatalf("layout-id entries = %d, want 2", len(list.Children))
	}
	added := list.Children[1]
	if added.Attr("id") != "2147483650" {
		t.Errorf("new layout id = %q, want 2147483650", added.Attr("id"))
	}
	masterRels, _ := opc.Relationships(p, "ppt/slideMasters/slideMaster1.xml")
	var bound bool
	for _, rel := range masterRels {
		if rel.ID == added.Attr("r:id") && rel.Type == SlideLayoutRelType &&
			rel.Target == "../slideLayouts/slideLayout2.xml" {
			bound = true
		}
	}
	if !bound {
		t.Errorf("layout-id entry %q not bound to a master relationship", added.Attr("r:id"))
	}
}

func TestMakeLayoutCopiesOnlyReferencedRelationships(t *testing.T) {
	p := fixtureDeck(t)

	newLayout, err := MakeLayoutFromSlide(p, 1, "Hero", 1)
	if err != nil {
		t.Fatalf("MakeLayoutFromSlide() error = %v", err)
	}
	rels, err := opc.Relationships(p, newLayout)
	if err != nil {
		t.Fatalf("Relationships() error = %v", err)
	}

	var imageTargets, masterCount int
	for _, rel := range rels {
		switch rel.Type {
		case ImageRelType:
			imageTargets++
			if rel.Target != "../media/image1.png" {
				t.Errorf("unexpected image target %q", rel.Target)
			}
		case SlideMasterRelType:
			masterCount++
		default:
			t.Errorf("unexpected relationship type %q", rel.Type)
		}
	}
	// image2 (rId3) is never referenced by the slide body, so it is dropped.
	if imageTargets != 1 {
		t.Errorf("image relationships = %d, want 1", imageTargets)
	}
	if masterCount != 1 {
		t.Errorf("slideMaster relationships = %d, want 1", masterCount)
	}
}

func TestMakeLayoutFromSlideOutOfRange(t *testing.T) {
	p := fixtureDeck(t)
	before := len(p.Parts())

	for _, n := range []int{0, 3, -1} {
		if _, err := MakeLayoutFromSlide(p, n, "X", 1); !errors.Is(err, errors.ErrCodeOutOfRange) {
			t.Errorf("MakeLayoutFromSlide(%d) error = %v, want OUT_OF_RANGE", n, err)
		}
	}
	if _, err := MakeLayoutFromSlide(p, 1, "X", 5); !errors.Is(err, errors.ErrCodeOutOfRange) {
		t.Errorf("bad master index error = %v, want OUT_OF_RANGE", err)
	}
	if got := len(p.Parts()); got != before {
		t.Errorf("failed calls wrote parts: %d, was %d", got, before)
	}
}

func TestMakeLayoutFromSlideNoMasters(t *testing.T) {
	p := opc.New()
	p.Write("ppt/slides/slide1.xml", []byte(`<p:sld><p:cSld/></p:sld>`))
	if _, err := MakeLayoutFromSlide(p, 1, "X", 1); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("error = %v, want NOT_FOUND", err)
	}
}

func TestMakeLayoutNumberingIsGapTolerant(t *testing.T) {
	p := fixtureDeck(t)
	p.Write("ppt/slideLayouts/slideLayout7.xml", []byte(xmlDecl+
		`<p:sldLayout `+nsDecls+`><p:cSld><p:spTree/></p:cSld></p:sldLayout>`))

	newLayout, err := MakeLayoutFromSlide(p, 2, "After Gap", 1)
	if err != nil {
		t.Fatalf("MakeLayoutFromSlide() error = %v", err)
	}
	if newLayout != "ppt/slideLayouts/slideLayout8.xml" {
		t.Errorf("new layout = %q, want slideLayout8.xml", newLayout)
	}
}

func TestAssignSlidesToLayout(t *testing.T) {
	p := fixtureDeck(t)

	if err := AssignSlidesToLayout(p, []int{1, 2}, "ppt/slideLayouts/slideLayout1.xml"); err != nil {
		t.Fatalf("AssignSlidesToLayout() error = %v", err)
	}
	for _, slide := range []string{"ppt/slides/slide1.xml", "ppt/slides/slide2.xml"} {
		layout, err := SlideLayoutPart(p, slide)
		if err != nil {
			t.Fatalf("SlideLayoutPart(%s) error = %v", slide, err)
		}
		if layout != "ppt/slideLayouts/slideLayout1.xml" {
			t.Errorf("%s layout = %q", slide, layout)
		}
	}
}

func TestAssignSlidesAppendsWhenNoLayoutRel(t *testing.T) {
	p := fixtureDeck(t)
	// Slide 2 keeps a sidecar but loses its layout relationship.
	opc.WriteRelationships(p, "ppt/slides/slide2.xml", []opc.Relationship{
		{ID: "rId1", Type: ImageRelType, Target: "../media/image1.png"},
	})

	if err := AssignSlidesToLayout(p, []int{2}, "ppt/slideLayouts/slideLayout1.xml"); err != nil {
		t.Fatalf("AssignSlidesToLayout() error = %v", err)
	}
	rels, _ := opc.Relationships(p, "ppt/slides/slide2.xml")
	if len(rels) != 2 {
		t.Fatalf("relationships = %d, want 2", len(rels))
	}
	appended := rels[1]
	if appended.ID != "rId2" || appended.Type != SlideLayoutRelType ||
		appended.Target != "../slideLayouts/slideLayout1.xml" {
		t.Errorf("appended rel = %+v", appended)
	}
}

func TestAssignSlidesValidatesBeforeWriting(t *testing.T) {
	p := fixtureDeck(t)
	slide1Before, _ := p.Read("ppt/slides/_rels/slide1.xml.rels")

	err := AssignSlidesToLayout(p, []int{1, 99}, "ppt/slideLayouts/slideLayout1.xml")
	if !errors.Is(err, errors.ErrCodeOutOfRange) {
		t.Fatalf("error = %v, want OUT_OF_RANGE", err)
	}
	slide1After, _ := p.Read("ppt/slides/_rels/slide1.xml.rels")
	if string(slide1Before) != string(slide1After) {
		t.Error("slide 1 was rewritten although the batch failed validation")
	}
}

func TestSetLayoutBackgroundImage(t *testing.T) {
	p := fixtureDeck(t)
	layout := "ppt/slideLayouts/slideLayout1.xml"

	if err := SetLayoutBackgroundImage(p, layout, []byte{1, 2, 3}, "png"); err != nil {
		t.Fatalf("SetLayoutBackgroundImage() error = %v", err)
	}
	if !p.Has("ppt/media/image3.png") {
		t.Error("image part not added (expected image3.png after the two fixture images)")
	}

	data, _ := p.Read(layout)
	out := string(data)
	if !strings.Contains(out, "<p:bg>") || !strings.Contains(out, "a:blipFill") {
		t.Errorf("background fill not written: %s", out)
	}

	rels, _ := opc.Relationships(p, layout)
	var hasImage bool
	for _, rel := range rels {
		if rel.Type == ImageRelType && rel.Target == "../media/image3.png" {
			hasImage = true
		}
	}
	if !hasImage {
		t.Error("image relationship missing on layout")
	}
}

func TestAddLayoutImageShape(t *testing.T) {
	p := fixtureDeck(t)
	layout := "ppt/slideLayouts/slideLayout1.xml"

	if err := AddLayoutImageShape(p, layout, []byte{1}, "png", 100, 200, 300, 400, ""); err != nil {
		t.Fatalf("AddLayoutImageShape() error = %v", err)
	}
	data, _ := p.Read(layout)
	root, _ := xmlnode.Parse(data)
	pics := root.FindAll("p:pic")
	if len(pics) != 1 {
		t.Fatalf("pictures = %d, want 1", len(pics))
	}
	pic := pics[0]
	if got := pic.Find("p:nvPicPr/p:cNvPr").Attr("name"); got != "Picture 1" {
		t.Errorf("shape name = %q, want Picture 1", got)
	}
	off := pic.Find("p:spPr/a:xfrm/a:off")
	ext := pic.Find("p:spPr/a:xfrm/a:ext")
	if off.Attr("x") != "100" || off.Attr("y") != "200" || ext.Attr("cx") != "300" || ext.Attr("cy") != "400" {
		t.Errorf("geometry = %s/%s %s/%s", off.Attr("x"), off.Attr("y"), ext.Attr("cx"), ext.Attr("cy"))
	}
}
