package deck

import (
	"testing"

	"github.com/deckforge/deckforge/pkg/errors"
	"github.com/deckforge/deckforge/pkg/opc"
	"github.com/deckforge/deckforge/pkg/xmlnode"
)

const plainLayoutXML = xmlDecl +
	`<p:sldLayout xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main" ` +
	`xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main">` +
	`<p:cSld><p:spTree/></p:cSld></p:sldLayout>`

// gappedDeck has one slide on slideLayout7 and a master listing layouts
// 1 and 7, so reindexing must rename 7 to 2.
func gappedDeck(t *testing.T) *opc.Package {
	t.Helper()
	p := opc.New()

	p.Write("[Content_Types].xml", []byte(xmlDecl+
		`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">`+
		`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>`+
		`<Default Extension="xml" ContentType="application/xml"/>`+
		`<Override PartName="/ppt/slideLayouts/slideLayout1.xml" ContentType="`+SlideLayoutContentType+`"/>`+
		`<Override PartName="/ppt/slideLayouts/slideLayout7.xml" ContentType="`+SlideLayoutContentType+`"/>`+
		`</Types>`))

	p.Write("ppt/presentation.xml", []byte(xmlDecl+
		`<p:presentation `+nsDecls+`>`+
		`<p:sldIdLst><p:sldId id="256" r:id="rId1"/></p:sldIdLst>`+
		`</p:presentation>`))
	p.Write("ppt/_rels/presentation.xml.rels", []byte(xmlDecl+relsOpen+
		relXML("rId1", SlideRelType, "slides/slide1.xml")+
		relsClose))

	p.Write("ppt/slides/slide1.xml", []byte(xmlDecl+
		`<p:sld `+nsDecls+`><p:cSld><p:spTree/></p:cSld></p:sld>`))
	p.Write("ppt/slides/_rels/slide1.xml.rels", []byte(xmlDecl+relsOpen+
		relXML("rId7", SlideLayoutRelType, "../slideLayouts/slideLayout7.xml")+
		relsClose))

	p.Write("ppt/slideMasters/slideMaster1.xml", []byte(xmlDecl+
		`<p:sldMaster `+nsDecls+`>`+
		`<p:sldLayoutIdLst>`+
		`<p:sldLayoutId id="2147483661" r:id="rId1"/>`+
		`<p:sldLayoutId id="2147483667" r:id="rId7"/>`+
		`</p:sldLayoutIdLst>`+
		`</p:sldMaster>`))
	p.Write("ppt/slideMasters/_rels/slideMaster1.xml.rels", []byte(xmlDecl+relsOpen+
		relXML("rId1", SlideLayoutRelType, "../slideLayouts/slideLayout1.xml")+
		relXML("rId7", SlideLayoutRelType, "../slideLayouts/slideLayout7.xml")+
		relXML("rId9", ThemeRelType, "../theme/theme1.xml")+
		relsClose))

	p.Write("ppt/slideLayouts/slideLayout1.xml", []byte(plainLayoutXML))
	p.Write("ppt/slideLayouts/slideLayout7.xml", []byte(plainLayoutXML))
	p.Write("ppt/theme/theme1.xml", []byte(xmlDecl+
		`<a:theme xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" name="Test"/>`))

	return p
}

func TestReindexLayouts(t *testing.T) {
	p := gappedDeck(t)

	result, err := ReindexLayouts(p)
	if err != nil {
		t.Fatalf("ReindexLayouts() error = %v", err)
	}
	if got := result.LayoutMapping["ppt/slideLayouts/slideLayout1.xml"]; got != "ppt/slideLayouts/slideLayout1.xml" {
		t.Errorf("layout1 mapped to %q", got)
	}
	if got := result.LayoutMapping["ppt/slideLayouts/slideLayout7.xml"]; got != "ppt/slideLayouts/slideLayout2.xml" {
		t.Errorf("layout7 mapped to %q", got)
	}
	if result.SlidesUpdated != 1 || result.MastersUpdated != 1 {
		t.Errorf("updated slides=%d masters=%d, want 1/1", result.SlidesUpdated, result.MastersUpdated)
	}

	if !p.Has("ppt/slideLayouts/slideLayout1.xml") || !p.Has("ppt/slideLayouts/slideLayout2.xml") {
		t.Error("canonical layout parts missing")
	}
	if p.Has("ppt/slideLayouts/slideLayout7.xml") {
		t.Error("old layout part still present")
	}
	for _, part := range p.Parts() {
		if len(part) > len(layoutsPrefix) && part[:len(layoutsPrefix)] == layoutsPrefix &&
			part[len(layoutsPrefix)] == '_' {
			t.Errorf("temporary part left behind: %s", part)
		}
	}

	// Slide rel follows the rename.
	slideRels, _ := opc.Relationships(p, "ppt/slides/slide1.xml")
	var target string
	for _, rel := range slideRels {
		if rel.Type == SlideLayoutRelType {
			target = rel.Target
		}
	}
	if target != "../slideLayouts/slideLayout2.xml" {
		t.Errorf("slide layout target = %q", target)
	}

	// Master layout rels renumber contiguously, skipping the theme's rId9.
	masterRels, _ := opc.Relationships(p, "ppt/slideMasters/slideMaster1.xml")
	var layoutIDs []string
	var themeSurvives bool
	for _, rel := range masterRels {
		switch rel.Type {
		case SlideLayoutRelType:
			layoutIDs = append(layoutIDs, rel.ID)
		case ThemeRelType:
			themeSurvives = rel.ID == "rId9"
		}
	}
	if len(layoutIDs) != 2 || layoutIDs[0] != "rId1" || layoutIDs[1] != "rId2" {
		t.Errorf("layout rel ids = %v, want [rId1 rId2]", layoutIDs)
	}
	if !themeSurvives {
		t.Error("non-layout relationship lost or renumbered")
	}

	// Layout-id entries rebind to the new ids in list order.
	masterData, _ := p.Read("ppt/slideMasters/slideMaster1.xml")
	masterRoot, _ := xmlnode.Parse(masterData)
	var listIDs []string
	for _, entry := range masterRoot.Find("p:sldLayoutIdLst").Children {
		listIDs = append(listIDs, entry.Attr("r:id"))
	}
	if len(listIDs) != 2 || listIDs[0] != "rId1" || listIDs[1] != "rId2" {
		t.Errorf("layout-id bindings = %v, want [rId1 rId2]", listIDs)
	}

	// Overrides moved with the rename.
	if !opc.HasOverride(p, "ppt/slideLayouts/slideLayout2.xml") {
		t.Error("override for slideLayout2.xml missing")
	}
	if opc.HasOverride(p, "ppt/slideLayouts/slideLayout7.xml") {
		t.Error("override for slideLayout7.xml still present")
	}
}

func TestReindexIsIdempotent(t *testing.T) {
	p := gappedDeck(t)
	if _, err := ReindexLayouts(p); err != nil {
		t.Fatalf("first ReindexLayouts() error = %v", err)
	}
	snapshot := make(map[string]string)
	for _, part := range p.Parts() {
		data, _ := p.Read(part)
		snapshot[part] = string(data)
	}

	result, err := ReindexLayouts(p)
	if err != nil {
		t.Fatalf("second ReindexLayouts() error = %v", err)
	}
	if result.SlidesUpdated != 0 {
		t.Errorf("second run touched %d slides", result.SlidesUpdated)
	}
	for _, part := range p.Parts() {
		data, _ := p.Read(part)
		prev, ok := snapshot[part]
		if !ok {
			t.Errorf("second run created %s", part)
			continue
		}
		if prev != string(data) {
			t.Errorf("second run changed %s", part)
		}
	}
}

func TestReindexNumbersAcrossMasters(t *testing.T) {
	p := gappedDeck(t)
	// Second master owning one extra layout.
	p.Write("ppt/slideLayouts/slideLayout9.xml", []byte(plainLayoutXML))
	p.Write("ppt/slideMasters/slideMaster2.xml", []byte(xmlDecl+
		`<p:sldMaster `+nsDecls+`>`+
		`<p:sldLayoutIdLst><p:sldLayoutId id="2147483670" r:id="rId1"/></p:sldLayoutIdLst>`+
		`</p:sldMaster>`))
	p.Write("ppt/slideMasters/_rels/slideMaster2.xml.rels", []byte(xmlDecl+relsOpen+
		relXML("rId1", SlideLayoutRelType, "../slideLayouts/slideLayout9.xml")+
		relsClose))

	result, err := ReindexLayouts(p)
	if err != nil {
		t.Fatalf("ReindexLayouts() error = %v", err)
	}
	// Master 2's layout continues the sequence after master 1's two.
	if got := result.LayoutMapping["ppt/slideLayouts/slideLayout9.xml"]; got != "ppt/slideLayouts/slideLayout3.xml" {
		t.Errorf("layout9 mapped to %q, want slideLayout3.xml", got)
	}
	if !p.Has("ppt/slideLayouts/slideLayout3.xml") || p.Has("ppt/slideLayouts/slideLayout9.xml") {
		t.Error("cross-master rename not applied")
	}
}

func TestReindexRejectsDivergentMapping(t *testing.T) {
	p := gappedDeck(t)
	// A second master listing layout7 at a different position forces two
	// different canonical names for one part.
	p.Write("ppt/slideMasters/slideMaster2.xml", []byte(xmlDecl+
		`<p:sldMaster `+nsDecls+`>`+
		`<p:sldLayoutIdLst><p:sldLayoutId id="2147483671" r:id="rId1"/></p:sldLayoutIdLst>`+
		`</p:sldMaster>`))
	p.Write("ppt/slideMasters/_rels/slideMaster2.xml.rels", []byte(xmlDecl+relsOpen+
		relXML("rId1", SlideLayoutRelType, "../slideLayouts/slideLayout7.xml")+
		relsClose))

	before, _ := p.Read("ppt/slides/_rels/slide1.xml.rels")
	_, err := ReindexLayouts(p)
	if !errors.Is(err, errors.ErrCodeInconsistent) {
		t.Fatalf("error = %v, want INCONSISTENT", err)
	}
	// Divergence is detected before any rename.
	if !p.Has("ppt/slideLayouts/slideLayout7.xml") {
		t.Error("parts were renamed although the mapping failed")
	}
	after, _ := p.Read("ppt/slides/_rels/slide1.xml.rels")
	if string(before) != string(after) {
		t.Error("slide relationships were rewritten")
	}
}

func TestReindexEmptyPackage(t *testing.T) {
	p := opc.New()
	result, err := ReindexLayouts(p)
	if err != nil {
		t.Fatalf("ReindexLayouts() error = %v", err)
	}
	if len(result.LayoutMapping) != 0 {
		t.Errorf("LayoutMapping = %v, want empty", result.LayoutMapping)
	}
}
