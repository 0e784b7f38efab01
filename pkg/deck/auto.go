package deck

import (
	"strconv"

	"github.com/deckforge/deckforge/pkg/opc"
)

// AutoLayoutOptions controls AutoLayout. Zero values mean: name layouts
// "Auto Layout N", use the first master, assign slides, strip nothing.
type AutoLayoutOptions struct {
	Prefix      string
	MasterIndex int
	Assign      bool
	StripColors bool
	StripFonts  bool
	Palette     map[string]string
}

// AutoLayoutResult reports the layouts AutoLayout created.
type AutoLayoutResult struct {
	CreatedLayouts []string `json:"created_layouts"`
	GroupCount     int      `json:"group_count"`
}

// AutoLayout creates one layout per slide group, from the group's first
// slide, and optionally assigns the group to it, applies a palette to the
// new layout, and strips colors or fonts from the group's slides. Groups
// are slide numbers as produced by the audit's slide grouping.
func AutoLayout(p *opc.Package, groups [][]int, opts AutoLayoutOptions) (*AutoLayoutResult, error) {
	prefix := opts.Prefix
	if prefix == "" {
		prefix = "Auto Layout"
	}
	masterIndex := opts.MasterIndex
	if masterIndex == 0 {
		masterIndex = 1
	}

	result := &AutoLayoutResult{GroupCount: len(groups)}
	for i, slides := range groups {
		if len(slides) == 0 {
			continue
		}
		layoutName := prefix + " " + strconv.Itoa(i+1)
		layoutPart, err := MakeLayoutFromSlide(p, slides[0], layoutName, masterIndex)
		if err != nil {
			return nil, err
		}
		result.CreatedLayouts = append(result.CreatedLayouts, layoutPart)

		if len(opts.Palette) > 0 {
			if _, err := ApplyPaletteToPart(p, layoutPart, opts.Palette); err != nil {
				return nil, err
			}
		}
		if opts.Assign {
			if err := AssignSlidesToLayout(p, slides, layoutPart); err != nil {
				return nil, err
			}
		}
		if opts.StripColors || opts.StripFonts {
			slideParts := SlideParts(p)
			for _, n := range slides {
				if n < 1 || n > len(slideParts) {
					continue
				}
				if opts.StripColors {
					if _, err := StripColorsFromPart(p, slideParts[n-1]); err != nil {
						return nil, err
					}
				}
				if opts.StripFonts {
					if _, err := StripFontsFromPart(p, slideParts[n-1]); err != nil {
						return nil, err
					}
				}
			}
		}
	}
	return result, nil
}
