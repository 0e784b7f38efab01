package deck

import (
	"github.com/deckforge/deckforge/pkg/opc"
	"github.com/deckforge/deckforge/pkg/style"
	"github.com/deckforge/deckforge/pkg/xmlnode"
)

// NormalizeResult reports what NormalizeSlideColors replaced.
type NormalizeResult struct {
	SlidesTotal   int         `json:"slides_total"`
	SlidesTouched int         `json:"slides_touched"`
	Replacements  int         `json:"replacements"`
	PerSlide      map[int]int `json:"per_slide"`
}

// NormalizeSlideColors applies a hex-to-scheme-slot palette mapping to
// each selected slide. An empty slide set means every slide. Slides
// outside the valid range are ignored rather than failing, since the set
// is a filter, not a selection of required slides.
func NormalizeSlideColors(p *opc.Package, mapping map[string]string, slideNumbers map[int]bool) (*NormalizeResult, error) {
	slides := SlideParts(p)
	normalized := style.NormalizeColorMapping(mapping)

	result := &NormalizeResult{
		SlidesTotal: len(slides),
		PerSlide:    make(map[int]int),
	}
	for i, slidePart := range slides {
		number := i + 1
		if len(slideNumbers) > 0 && !slideNumbers[number] {
			continue
		}
		n, err := editPart(p, slidePart, func(root *xmlnode.Node) int {
			return style.ApplyColorMapping(root, normalized)
		})
		if err != nil {
			return nil, err
		}
		if n > 0 {
			result.Replacements += n
			result.PerSlide[number] = n
			result.SlidesTouched++
		}
	}
	return result, nil
}
