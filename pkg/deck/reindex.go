package deck

import (
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/deckforge/deckforge/pkg/errors"
	"github.com/deckforge/deckforge/pkg/opc"
)

// ReindexResult reports what ReindexLayouts changed.
type ReindexResult struct {
	LayoutMapping  map[string]string `json:"layout_mapping"`
	MastersUpdated int               `json:"masters_updated"`
	SlidesUpdated  int               `json:"slides_updated"`
}

type renameEntry struct {
	old string
	new string
}

// ReindexLayouts renames layouts to the canonical slideLayoutN.xml
// sequence derived from each master's layout-id-list order, numbering
// continuing across masters. Slide relationships are retargeted, every
// master's slideLayout relationships are rebuilt as a contiguous rId run
// that skips ids held by its non-layout relationships, layout-id entries
// are rebound, and content-type overrides follow the renames. A second
// invocation on an already canonical container changes nothing.
func ReindexLayouts(p *opc.Package) (*ReindexResult, error) {
	order, err := buildReindexMap(p)
	if err != nil {
		return nil, err
	}
	mapping := make(map[string]string, len(order))
	for _, e := range order {
		mapping[e.old] = e.new
	}
	if len(order) == 0 {
		return &ReindexResult{LayoutMapping: mapping}, nil
	}

	if err := renameLayoutParts(p, order); err != nil {
		return nil, err
	}
	slidesUpdated, err := retargetSlideLayouts(p, mapping)
	if err != nil {
		return nil, err
	}
	mastersUpdated, err := rebuildMasterLayoutRels(p, mapping)
	if err != nil {
		return nil, err
	}

	return &ReindexResult{
		LayoutMapping:  mapping,
		MastersUpdated: mastersUpdated,
		SlidesUpdated:  slidesUpdated,
	}, nil
}

// buildReindexMap walks masters in sorted order and assigns sequential
// canonical names following each master's layout-id-list order. A layout
// reached twice with diverging assignments is a structural fault.
func buildReindexMap(p *opc.Package) ([]renameEntry, error) {
	if len(LayoutParts(p)) == 0 {
		return nil, nil
	}

	var order []renameEntry
	assigned := make(map[string]string)
	next := 1
	for _, masterPart := range MasterParts(p) {
		layouts, err := MasterLayoutOrder(p, masterPart)
		if err != nil {
			return nil, err
		}
		for _, layoutPart := range layouts {
			newName := layoutsPrefix + "slideLayout" + strconv.Itoa(next) + ".xml"
			if prev, ok := assigned[layoutPart]; ok {
				if prev != newName {
					return nil, errors.New(errors.ErrCodeInconsistent,
						"layout %s already mapped to %s", layoutPart, prev)
				}
				next++
				continue
			}
			assigned[layoutPart] = newName
			order = append(order, renameEntry{old: layoutPart, new: newName})
			next++
		}
	}
	return order, nil
}

// renameLayoutParts executes the batch rename in two phases: every
// changing part (and sidecar) first moves to a unique temporary name, then
// to its final name. Staging through temporaries keeps a rename whose
// destination is another entry's source from clobbering it.
func renameLayoutParts(p *opc.Package, order []renameEntry) error {
	temps := make(map[string]string, len(order))
	for _, e := range order {
		if e.old == e.new {
			continue
		}
		temp := layoutsPrefix + "_tmp-" + uuid.NewString() + ".xml"
		for p.Has(temp) {
			temp = layoutsPrefix + "_tmp-" + uuid.NewString() + ".xml"
		}
		temps[e.old] = temp
	}

	for _, e := range order {
		temp, ok := temps[e.old]
		if !ok {
			continue
		}
		if err := movePart(p, e.old, temp); err != nil {
			return err
		}
		if _, err := opc.RemoveOverride(p, e.old); err != nil {
			return err
		}
	}

	for _, e := range order {
		if temp, ok := temps[e.old]; ok {
			if err := movePart(p, temp, e.new); err != nil {
				return err
			}
		}
		if _, err := opc.EnsureOverride(p, e.new, SlideLayoutContentType); err != nil {
			return err
		}
	}
	return nil
}

func movePart(p *opc.Package, from, to string) error {
	data, err := p.Read(from)
	if err != nil {
		return err
	}
	p.Write(to, data)
	p.Delete(from)

	fromRels := opc.RelsPartFor(from)
	if p.Has(fromRels) {
		relsData, err := p.Read(fromRels)
		if err != nil {
			return err
		}
		p.Write(opc.RelsPartFor(to), relsData)
		p.Delete(fromRels)
	}
	return nil
}

func retargetSlideLayouts(p *opc.Package, mapping map[string]string) (int, error) {
	updated := 0
	for _, slidePart := range SlideParts(p) {
		rels, err := opc.Relationships(p, slidePart)
		if err != nil {
			return updated, err
		}
		if rels == nil {
			continue
		}
		changed := false
		for i := range rels {
			if !strings.HasSuffix(rels[i].Type, "/slideLayout") {
				continue
			}
			target := opc.ResolveTarget(dirOf(slidePart), rels[i].Target)
			if newName, ok := mapping[target]; ok && newName != target {
				rels[i].Target = opc.RelativeTarget(slidePart, newName)
				changed = true
			}
		}
		if changed {
			opc.WriteRelationships(p, slidePart, rels)
			updated++
		}
	}
	return updated, nil
}

// rebuildMasterLayoutRels replaces each master's slideLayout relationship
// run with fresh contiguous ids, skipping ids its other relationships
// already hold, and rebinds the layout-id entries in list order.
func rebuildMasterLayoutRels(p *opc.Package, mapping map[string]string) (int, error) {
	updated := 0
	for _, masterPart := range MasterParts(p) {
		layouts, err := MasterLayoutOrder(p, masterPart)
		if err != nil {
			return updated, err
		}
		if len(layouts) == 0 {
			continue
		}

		rels, err := opc.Relationships(p, masterPart)
		if err != nil {
			return updated, err
		}
		var nonLayout []opc.Relationship
		usedIDs := make(map[string]bool)
		for _, rel := range rels {
			if !strings.HasSuffix(rel.Type, "/slideLayout") {
				nonLayout = append(nonLayout, rel)
				usedIDs[rel.ID] = true
			}
		}

		var layoutRels []opc.Relationship
		next := 1
		for _, layoutPart := range layouts {
			newPart := layoutPart
			if mapped, ok := mapping[layoutPart]; ok {
				newPart = mapped
			}
			for usedIDs["rId"+strconv.Itoa(next)] {
				next++
			}
			id := "rId" + strconv.Itoa(next)
			usedIDs[id] = true
			next++
			layoutRels = append(layoutRels, opc.Relationship{
				ID:     id,
				Type:   SlideLayoutRelType,
				Target: opc.RelativeTarget(masterPart, newPart),
			})
		}
		opc.WriteRelationships(p, masterPart, append(nonLayout, layoutRels...))

		root, err := parsePart(p, masterPart)
		if err != nil {
			return updated, err
		}
		if list := root.Find("p:sldLayoutIdLst"); list != nil {
			i := 0
			for _, entry := range list.Children {
				if entry.Tag != "p:sldLayoutId" || i >= len(layoutRels) {
					continue
				}
				entry.SetAttr("r:id", layoutRels[i].ID)
				i++
			}
		}
		writePart(p, masterPart, root)
		updated++
	}
	return updated, nil
}
