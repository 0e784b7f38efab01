package deck

import (
	"strconv"
	"strings"

	"github.com/deckforge/deckforge/pkg/errors"
	"github.com/deckforge/deckforge/pkg/opc"
	"github.com/deckforge/deckforge/pkg/xmlnode"
)

// MakeLayoutFromSlide turns an existing slide into a new layout under the
// selected master and returns the new layout's part name.
//
// The new layout starts as a copy of the master's first layout (or the
// first layout anywhere when the master has none) with its body replaced
// by the slide's body. Slide relationships are carried over only when an
// r:embed, r:link, or r:id attribute in the copied body still references
// them; a fresh slideMaster relationship is appended. The master's
// layout-id list grows by one entry bound to a new relationship.
func MakeLayoutFromSlide(p *opc.Package, slideNumber int, name string, masterIndex int) (string, error) {
	slides := SlideParts(p)
	if slideNumber < 1 || slideNumber > len(slides) {
		return "", errors.New(errors.ErrCodeOutOfRange, "slide number %d out of range (1-%d)", slideNumber, len(slides))
	}
	masterPart, err := masterPartByIndex(p, masterIndex)
	if err != nil {
		return "", err
	}
	templateLayout, err := firstLayoutForMaster(p, masterPart)
	if err != nil {
		return "", err
	}

	slidePart := slides[slideNumber-1]
	slideRoot, err := parsePart(p, slidePart)
	if err != nil {
		return "", err
	}
	layoutRoot, err := parsePart(p, templateLayout)
	if err != nil {
		return "", err
	}

	slideBody := slideRoot.Find("p:cSld")
	layoutBody := layoutRoot.Find("p:cSld")
	if slideBody == nil || layoutBody == nil {
		return "", errors.New(errors.ErrCodeInconsistent, "slide or layout is missing cSld")
	}
	parents := layoutRoot.ParentMap()
	layoutParent := parents[layoutBody]
	if layoutParent == nil {
		layoutParent = layoutRoot
	}
	layoutParent.Remove(layoutBody)
	layoutParent.Insert(0, slideBody.Clone())
	layoutRoot.SetAttr("name", name)

	newLayout := nextLayoutPart(p)
	writePart(p, newLayout, layoutRoot)

	layoutRels, err := layoutRelationshipsFromSlide(p, slidePart, masterPart, newLayout)
	if err != nil {
		return "", err
	}
	opc.WriteRelationships(p, newLayout, layoutRels)

	masterTarget := opc.RelativeTarget(masterPart, newLayout)
	rel, err := opc.EnsureRelationship(p, masterPart, SlideLayoutRelType, masterTarget)
	if err != nil {
		return "", err
	}
	if err := appendLayoutID(p, masterPart, rel.ID); err != nil {
		return "", err
	}

	if _, err := opc.EnsureOverride(p, newLayout, SlideLayoutContentType); err != nil {
		return "", err
	}
	return newLayout, nil
}

// AssignSlidesToLayout points each given slide's slideLayout relationship
// at layoutPart, appending one when the slide has none. Slide numbers are
// 1-based over the enumeration order.
func AssignSlidesToLayout(p *opc.Package, slideNumbers []int, layoutPart string) error {
	slides := SlideParts(p)
	for _, n := range slideNumbers {
		if n < 1 || n > len(slides) {
			return errors.New(errors.ErrCodeOutOfRange, "slide number %d out of range (1-%d)", n, len(slides))
		}
	}
	for _, n := range slideNumbers {
		if err := setSlideLayout(p, slides[n-1], layoutPart); err != nil {
			return err
		}
	}
	return nil
}

func setSlideLayout(p *opc.Package, slidePart, layoutPart string) error {
	rels, err := opc.Relationships(p, slidePart)
	if err != nil {
		return err
	}
	if rels == nil {
		return errors.New(errors.ErrCodeNotFound, "missing relationships for slide: %s", slidePart)
	}
	target := opc.RelativeTarget(slidePart, layoutPart)
	updated := false
	for i := range rels {
		if rels[i].Type == SlideLayoutRelType {
			rels[i].Target = target
			updated = true
			break
		}
	}
	if !updated {
		rels = append(rels, opc.Relationship{
			ID:     opc.NextRelationshipID(rels),
			Type:   SlideLayoutRelType,
			Target: target,
		})
	}
	opc.WriteRelationships(p, slidePart, rels)
	return nil
}

// firstLayoutForMaster picks the template layout for a new layout: the
// master's first slideLayout relationship target when one exists, else
// the lexicographically first layout part overall.
func firstLayoutForMaster(p *opc.Package, masterPart string) (string, error) {
	rels, err := opc.Relationships(p, masterPart)
	if err != nil {
		return "", err
	}
	for _, rel := range rels {
		if rel.Type == SlideLayoutRelType {
			return opc.ResolveTarget(dirOf(masterPart), rel.Target), nil
		}
	}
	layouts := LayoutParts(p)
	if len(layouts) == 0 {
		return "", errors.New(errors.ErrCodeNotFound, "no slide layout parts found")
	}
	return layouts[0], nil
}

func layoutRelationshipsFromSlide(p *opc.Package, slidePart, masterPart, layoutPart string) ([]opc.Relationship, error) {
	slideRels, err := opc.Relationships(p, slidePart)
	if err != nil {
		return nil, err
	}
	data, err := p.Read(slidePart)
	if err != nil {
		return nil, err
	}
	embedIDs, err := referencedRelIDs(data)
	if err != nil {
		return nil, err
	}

	var layoutRels []opc.Relationship
	for _, rel := range slideRels {
		if embedIDs[rel.ID] {
			layoutRels = append(layoutRels, rel)
		}
	}
	layoutRels = append(layoutRels, opc.Relationship{
		ID:     opc.NextRelationshipID(layoutRels),
		Type:   SlideMasterRelType,
		Target: opc.RelativeTarget(layoutPart, masterPart),
	})
	return layoutRels, nil
}

// referencedRelIDs collects every relationship id mentioned by an
// r:embed, r:link, or r:id attribute anywhere in the document.
func referencedRelIDs(data []byte) (map[string]bool, error) {
	root, err := xmlnode.Parse(data)
	if err != nil {
		return nil, err
	}
	ids := make(map[string]bool)
	root.Walk(func(n *xmlnode.Node) {
		for _, attr := range []string{"r:embed", "r:link", "r:id"} {
			if v := n.Attr(attr); v != "" {
				ids[v] = true
			}
		}
	})
	return ids, nil
}

// appendLayoutID adds a sldLayoutId entry bound to relID. The numeric id
// is max existing + 1, or 256 when the list was empty.
func appendLayoutID(p *opc.Package, masterPart, relID string) error {
	root, err := parsePart(p, masterPart)
	if err != nil {
		return err
	}
	list := root.Find("p:sldLayoutIdLst")
	if list == nil {
		list = xmlnode.New("p:sldLayoutIdLst")
		root.Append(list)
	}

	maxID := 0
	for _, entry := range list.Children {
		if entry.Tag != "p:sldLayoutId" {
			continue
		}
		if v, err := strconv.Atoi(entry.Attr("id")); err == nil && v > maxID {
			maxID = v
		}
	}
	newID := 256
	if maxID > 0 {
		newID = maxID + 1
	}
	list.Append(xmlnode.New("p:sldLayoutId", "id", strconv.Itoa(newID), "r:id", relID))

	writePart(p, masterPart, root)
	return nil
}

// nextLayoutPart allocates the next layout name by numeric suffix,
// gap-tolerant: a number freed by deletion is not reused.
func nextLayoutPart(p *opc.Package) string {
	maxN := 0
	for _, part := range LayoutParts(p) {
		base := part[strings.LastIndexByte(part, '/')+1:]
		if !strings.HasPrefix(base, "slideLayout") || !strings.HasSuffix(base, ".xml") {
			continue
		}
		raw := strings.TrimSuffix(strings.TrimPrefix(base, "slideLayout"), ".xml")
		if n, err := strconv.Atoi(raw); err == nil && n > maxN {
			maxN = n
		}
	}
	return layoutsPrefix + "slideLayout" + strconv.Itoa(maxN+1) + ".xml"
}
