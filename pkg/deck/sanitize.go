package deck

import (
	"sort"

	"github.com/deckforge/deckforge/pkg/errors"
	"github.com/deckforge/deckforge/pkg/opc"
	"github.com/deckforge/deckforge/pkg/xmlnode"
)

// SanitizeResult reports the defaults SanitizeSlides filled in.
type SanitizeResult struct {
	SlidesUpdated int `json:"slides_updated"`
	ClrMapAdded   int `json:"clrmap_added"`
	LstStyleAdded int `json:"lststyle_added"`
	BgNoFillAdded int `json:"bg_nofill_added"`
}

// SanitizeSlides patches slides so stripped formatting falls back to the
// master cleanly: a clrMapOvr with masterClrMapping, an lstStyle in every
// text body, and an explicit noFill on backgrounds that declare bgPr with
// no fill. A nil slide set means every slide.
func SanitizeSlides(p *opc.Package, slideNumbers map[int]bool) (*SanitizeResult, error) {
	slides := SlideParts(p)
	selected := slides
	if slideNumbers != nil {
		numbers := make([]int, 0, len(slideNumbers))
		for n := range slideNumbers {
			numbers = append(numbers, n)
		}
		sort.Ints(numbers)
		selected = nil
		for _, n := range numbers {
			if n < 1 || n > len(slides) {
				return nil, errors.New(errors.ErrCodeOutOfRange, "slide number %d out of range (1-%d)", n, len(slides))
			}
			selected = append(selected, slides[n-1])
		}
	}

	result := &SanitizeResult{}
	for _, slidePart := range selected {
		root, err := parsePart(p, slidePart)
		if err != nil {
			return nil, err
		}
		changed := false
		if ensureClrMapOvr(root) {
			result.ClrMapAdded++
			changed = true
		}
		if n := ensureLstStyles(root); n > 0 {
			result.LstStyleAdded += n
			changed = true
		}
		if ensureBgNoFill(root) {
			result.BgNoFillAdded++
			changed = true
		}
		if changed {
			writePart(p, slidePart, root)
			result.SlidesUpdated++
		}
	}
	return result, nil
}

// ensureClrMapOvr adds a clrMapOvr/masterClrMapping pair, placed before
// any transition element to keep the slide's element order valid.
func ensureClrMapOvr(root *xmlnode.Node) bool {
	if root.Find("p:clrMapOvr") != nil {
		return false
	}
	clrMap := xmlnode.New("p:clrMapOvr")
	clrMap.Append(xmlnode.New("a:masterClrMapping"))
	if transition := root.Find("p:transition"); transition != nil {
		root.Insert(root.IndexOf(transition), clrMap)
	} else {
		root.Append(clrMap)
	}
	return true
}

// ensureLstStyles adds an empty lstStyle right after bodyPr in each text
// body that lacks one.
func ensureLstStyles(root *xmlnode.Node) int {
	added := 0
	for _, txBody := range root.FindAll("p:txBody") {
		if txBody.Find("a:lstStyle") != nil {
			continue
		}
		lst := xmlnode.New("a:lstStyle")
		if bodyPr := txBody.Find("a:bodyPr"); bodyPr != nil {
			txBody.Insert(txBody.IndexOf(bodyPr)+1, lst)
		} else {
			txBody.Insert(0, lst)
		}
		added++
	}
	return added
}

// ensureBgNoFill gives a fill-less bgPr an explicit noFill, before any
// effectLst.
func ensureBgNoFill(root *xmlnode.Node) bool {
	bgPr := root.Find("p:cSld/p:bg/p:bgPr")
	if bgPr == nil {
		return false
	}
	for _, tag := range []string{"a:solidFill", "a:gradFill", "a:blipFill", "a:pattFill", "a:noFill"} {
		if bgPr.Find(tag) != nil {
			return false
		}
	}
	noFill := xmlnode.New("a:noFill")
	if effect := bgPr.Find("a:effectLst"); effect != nil {
		bgPr.Insert(bgPr.IndexOf(effect), noFill)
	} else {
		bgPr.Append(noFill)
	}
	return true
}
