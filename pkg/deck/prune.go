package deck

import (
	"strings"

	"github.com/deckforge/deckforge/pkg/opc"
)

// PruneResult reports what PruneUnusedLayouts removed.
type PruneResult struct {
	RemovedLayouts []string `json:"removed_layouts"`
	MastersUpdated int      `json:"masters_updated"`
}

// PruneUnusedLayouts deletes every layout no slide references, except
// those named in keep. For each removed layout the part, its sidecar, its
// content-type override, and every master's reference (relationship plus
// layout-id entry) go away.
func PruneUnusedLayouts(p *opc.Package, keep map[string]bool) (*PruneResult, error) {
	used := make(map[string]bool)
	for _, slidePart := range SlideParts(p) {
		layoutPart, err := SlideLayoutPart(p, slidePart)
		if err != nil {
			return nil, err
		}
		if layoutPart != "" {
			used[layoutPart] = true
		}
	}

	var unused []string
	for _, layout := range LayoutParts(p) {
		if !used[layout] && !keep[layout] {
			unused = append(unused, layout)
		}
	}

	mastersUpdated := 0
	for _, layout := range unused {
		n, err := removeLayoutFromMasters(p, layout)
		if err != nil {
			return nil, err
		}
		mastersUpdated += n
		p.Delete(layout)
		if rels := opc.RelsPartFor(layout); p.Has(rels) {
			p.Delete(rels)
		}
		if _, err := opc.RemoveOverride(p, layout); err != nil {
			return nil, err
		}
	}

	return &PruneResult{RemovedLayouts: unused, MastersUpdated: mastersUpdated}, nil
}

// removeLayoutFromMasters strips every master's reference to layoutPart
// and returns how many masters changed. Each master loses the matching
// slideLayout relationships and the layout-id entries bound to them.
func removeLayoutFromMasters(p *opc.Package, layoutPart string) (int, error) {
	updated := 0
	for _, masterPart := range MasterParts(p) {
		rels, err := opc.Relationships(p, masterPart)
		if err != nil {
			return updated, err
		}
		if rels == nil {
			continue
		}

		var kept []opc.Relationship
		removedIDs := make(map[string]bool)
		for _, rel := range rels {
			if strings.HasSuffix(rel.Type, "/slideLayout") &&
				opc.ResolveTarget(dirOf(masterPart), rel.Target) == layoutPart {
				removedIDs[rel.ID] = true
				continue
			}
			kept = append(kept, rel)
		}
		if len(removedIDs) == 0 {
			continue
		}

		opc.WriteRelationships(p, masterPart, kept)

		root, err := parsePart(p, masterPart)
		if err != nil {
			return updated, err
		}
		if list := root.Find("p:sldLayoutIdLst"); list != nil {
			filtered := list.Children[:0:0]
			for _, entry := range list.Children {
				if entry.Tag == "p:sldLayoutId" && removedIDs[entry.Attr("r:id")] {
					continue
				}
				filtered = append(filtered, entry)
			}
			list.Children = filtered
		}
		writePart(p, masterPart, root)
		updated++
	}
	return updated, nil
}
