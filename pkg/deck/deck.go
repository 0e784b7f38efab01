// Package deck implements the structural operations on a presentation
// container: slide enumeration, layout creation and assignment, pruning,
// reindexing, and the master/layout/slide lookups they share.
//
// Operations validate their preconditions before the first write and fail
// fast with a coded error. There is no rollback; callers that need
// atomicity work on a disposable copy of the package.
package deck

import (
	"sort"
	"strconv"
	"strings"

	"github.com/deckforge/deckforge/pkg/errors"
	"github.com/deckforge/deckforge/pkg/opc"
	"github.com/deckforge/deckforge/pkg/xmlnode"
)

// Well-known part locations inside the container.
const (
	PresentationPart     = "ppt/presentation.xml"
	presentationRelsPart = "ppt/_rels/presentation.xml.rels"
	slidesPrefix         = "ppt/slides/"
	layoutsPrefix        = "ppt/slideLayouts/"
	mastersPrefix        = "ppt/slideMasters/"
)

// Relationship types and the layout content type.
const (
	SlideRelType       = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slide"
	SlideLayoutRelType = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideLayout"
	SlideMasterRelType = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideMaster"
	ImageRelType       = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/image"
	ThemeRelType       = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/theme"

	SlideLayoutContentType = "application/vnd.openxmlformats-officedocument.presentationml.slideLayout+xml"
)

// SlideParts returns slides in presentation order: the sldIdLst entries
// resolved through the presentation sidecar, filtered to slide
// relationships. When the presentation part or its sidecar is missing, or
// resolution yields nothing, it falls back to a lexicographic scan of
// ppt/slides, which keeps synthetic and partially built containers usable.
func SlideParts(p *opc.Package) []string {
	if !p.Has(PresentationPart) || !p.Has(presentationRelsPart) {
		return fallbackSlideParts(p)
	}
	root, err := parsePart(p, PresentationPart)
	if err != nil {
		return fallbackSlideParts(p)
	}
	rels, err := opc.Relationships(p, PresentationPart)
	if err != nil {
		return fallbackSlideParts(p)
	}
	byID := make(map[string]opc.Relationship, len(rels))
	for _, rel := range rels {
		byID[rel.ID] = rel
	}

	var slides []string
	list := root.Find("p:sldIdLst")
	if list != nil {
		for _, sldID := range list.Children {
			if sldID.Tag != "p:sldId" {
				continue
			}
			rel, ok := byID[sldID.Attr("r:id")]
			if !ok || !strings.HasSuffix(rel.Type, "/slide") {
				continue
			}
			slides = append(slides, opc.ResolveTarget("ppt", rel.Target))
		}
	}
	if len(slides) == 0 {
		return fallbackSlideParts(p)
	}
	return slides
}

func fallbackSlideParts(p *opc.Package) []string {
	var slides []string
	for _, part := range p.Parts() {
		if strings.HasPrefix(part, slidesPrefix+"slide") && strings.HasSuffix(part, ".xml") {
			slides = append(slides, part)
		}
	}
	sort.Strings(slides)
	return slides
}

// LayoutParts returns all layout parts in lexicographic order.
func LayoutParts(p *opc.Package) []string {
	return partsUnder(p, layoutsPrefix)
}

// MasterParts returns all master parts in lexicographic order.
func MasterParts(p *opc.Package) []string {
	return partsUnder(p, mastersPrefix)
}

func partsUnder(p *opc.Package, prefix string) []string {
	var out []string
	for _, part := range p.Parts() {
		if strings.HasPrefix(part, prefix) && strings.HasSuffix(part, ".xml") {
			out = append(out, part)
		}
	}
	sort.Strings(out)
	return out
}

// SlideLayoutPart resolves the layout a slide uses via its slideLayout
// relationship. Returns "" when the slide has no sidecar or no layout
// relationship.
func SlideLayoutPart(p *opc.Package, slidePart string) (string, error) {
	return relTargetByType(p, slidePart, "/slideLayout")
}

// LayoutMasterPart resolves the master a layout belongs to via its
// slideMaster relationship. Returns "" when unresolvable.
func LayoutMasterPart(p *opc.Package, layoutPart string) (string, error) {
	return relTargetByType(p, layoutPart, "/slideMaster")
}

func relTargetByType(p *opc.Package, sourcePart, typeSuffix string) (string, error) {
	rels, err := opc.Relationships(p, sourcePart)
	if err != nil {
		return "", err
	}
	for _, rel := range rels {
		if strings.HasSuffix(rel.Type, typeSuffix) && !rel.IsExternal() {
			return opc.ResolveTarget(dirOf(sourcePart), rel.Target), nil
		}
	}
	return "", nil
}

// MasterLayoutOrder returns the master's layouts in layout-id-list order,
// each entry resolved through the master's relationships. Entries whose
// relationship id does not resolve are skipped.
func MasterLayoutOrder(p *opc.Package, masterPart string) ([]string, error) {
	rels, err := opc.Relationships(p, masterPart)
	if err != nil {
		return nil, err
	}
	if rels == nil {
		return nil, nil
	}
	byID := make(map[string]opc.Relationship, len(rels))
	for _, rel := range rels {
		byID[rel.ID] = rel
	}

	root, err := parsePart(p, masterPart)
	if err != nil {
		return nil, err
	}
	list := root.Find("p:sldLayoutIdLst")
	if list == nil {
		return nil, nil
	}
	var order []string
	for _, entry := range list.Children {
		if entry.Tag != "p:sldLayoutId" {
			continue
		}
		rel, ok := byID[entry.Attr("r:id")]
		if !ok {
			continue
		}
		if target := opc.ResolveTarget(dirOf(masterPart), rel.Target); target != "" {
			order = append(order, target)
		}
	}
	return order, nil
}

// ResolveLayoutPart maps a selector to a layout part name. The selector is
// a full part path, a 1-based index over the sorted layout list, or a
// layout display name.
func ResolveLayoutPart(p *opc.Package, selector string) (string, error) {
	if strings.HasPrefix(selector, layoutsPrefix) {
		if !p.Has(selector) {
			return "", errors.New(errors.ErrCodeNotFound, "layout not found: %s", selector)
		}
		return selector, nil
	}
	if isDigits(selector) {
		index, _ := strconv.Atoi(selector)
		layouts := LayoutParts(p)
		if index < 1 || index > len(layouts) {
			return "", errors.New(errors.ErrCodeOutOfRange, "layout index %d out of range (1-%d)", index, len(layouts))
		}
		return layouts[index-1], nil
	}
	for _, part := range LayoutParts(p) {
		root, err := parsePart(p, part)
		if err != nil {
			return "", err
		}
		if root.Attr("name") == selector {
			return part, nil
		}
	}
	return "", errors.New(errors.ErrCodeNotFound, "layout not found: %s", selector)
}

// ResolveMasterPart maps a selector to a master part name. The selector is
// a full part path or a 1-based index over the sorted master list.
func ResolveMasterPart(p *opc.Package, selector string) (string, error) {
	if strings.HasPrefix(selector, mastersPrefix) {
		if !p.Has(selector) {
			return "", errors.New(errors.ErrCodeNotFound, "master not found: %s", selector)
		}
		return selector, nil
	}
	if isDigits(selector) {
		index, _ := strconv.Atoi(selector)
		return masterPartByIndex(p, index)
	}
	return "", errors.New(errors.ErrCodeUnsupported, "malformed master selector: %q", selector)
}

func masterPartByIndex(p *opc.Package, index int) (string, error) {
	masters := MasterParts(p)
	if len(masters) == 0 {
		return "", errors.New(errors.ErrCodeNotFound, "no slide master parts found")
	}
	if index < 1 || index > len(masters) {
		return "", errors.New(errors.ErrCodeOutOfRange, "master index %d out of range (1-%d)", index, len(masters))
	}
	return masters[index-1], nil
}

// SlideSize returns the presentation slide size in EMU, or (0, 0) when
// the presentation part or its sldSz element is missing.
func SlideSize(p *opc.Package) (cx, cy int64) {
	if !p.Has(PresentationPart) {
		return 0, 0
	}
	root, err := parsePart(p, PresentationPart)
	if err != nil {
		return 0, 0
	}
	sz := root.Find("p:sldSz")
	if sz == nil {
		return 0, 0
	}
	cx, _ = strconv.ParseInt(sz.Attr("cx"), 10, 64)
	cy, _ = strconv.ParseInt(sz.Attr("cy"), 10, 64)
	return cx, cy
}

func parsePart(p *opc.Package, name string) (*xmlnode.Node, error) {
	data, err := p.Read(name)
	if err != nil {
		return nil, err
	}
	return xmlnode.Parse(data)
}

func writePart(p *opc.Package, name string, root *xmlnode.Node) {
	p.Write(name, root.Bytes())
}

func dirOf(part string) string {
	if i := strings.LastIndexByte(part, '/'); i >= 0 {
		return part[:i]
	}
	return ""
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
