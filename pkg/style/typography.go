package style

import (
	"sort"
	"strconv"

	"github.com/deckforge/deckforge/pkg/xmlnode"
)

// Placeholder types treated as title versus body text.
var (
	titleTypes = map[string]bool{"title": true, "ctrTitle": true}
	bodyTypes  = map[string]bool{"body": true}
)

// TextStyleStats counts the sz and b attribute values seen across run
// properties. Keys are the raw attribute values (sz in centipoints).
type TextStyleStats struct {
	SizeCounts map[string]int
	BoldCounts map[string]int
}

// ExtractTextStyleStats tallies explicit size and bold settings on every
// rPr and defRPr in the document.
func ExtractTextStyleStats(root *xmlnode.Node) TextStyleStats {
	stats := TextStyleStats{
		SizeCounts: make(map[string]int),
		BoldCounts: make(map[string]int),
	}
	for _, tag := range []string{"a:rPr", "a:defRPr"} {
		for _, node := range root.FindAll(tag) {
			if sz := node.Attr("sz"); sz != "" && isNumeric(sz) {
				stats.SizeCounts[sz]++
			}
			if node.HasAttr("b") {
				stats.BoldCounts[node.Attr("b")]++
			}
		}
	}
	return stats
}

// PlaceholderStyle is the dominant explicit style of one placeholder
// category. SizePt is nil when no explicit size was found; Bold is nil
// when no bold flag was found.
type PlaceholderStyle struct {
	SizePt *float64
	Bold   *bool
}

// DetectPlaceholderStyles inspects title and body placeholder shapes and
// reports the most common explicit size and bold flag per category.
func DetectPlaceholderStyles(root *xmlnode.Node) map[string]PlaceholderStyle {
	styles := make(map[string]PlaceholderStyle)
	for _, shape := range root.FindAll("p:sp") {
		ph := shape.Find("p:nvSpPr/p:nvPr/p:ph")
		if ph == nil {
			continue
		}
		phType := ph.Attr("type")
		if phType == "" {
			phType = "body"
		}
		var category string
		switch {
		case titleTypes[phType]:
			category = "title"
		case bodyTypes[phType]:
			category = "body"
		default:
			continue
		}

		sizes := make(map[int]int)
		bolds := make(map[string]int)
		for _, tag := range []string{"a:rPr", "a:defRPr"} {
			for _, rpr := range shape.FindAll(tag) {
				if sz := rpr.Attr("sz"); sz != "" && isNumeric(sz) {
					n, _ := strconv.Atoi(sz)
					sizes[n]++
				}
				if rpr.HasAttr("b") {
					bolds[rpr.Attr("b")]++
				}
			}
		}
		if len(sizes) == 0 && len(bolds) == 0 {
			continue
		}

		var style PlaceholderStyle
		if sz, ok := mostCommonInt(sizes); ok {
			pt := float64(sz) / 100
			style.SizePt = &pt
		}
		if b, ok := mostCommonString(bolds); ok {
			bold := b == "1"
			style.Bold = &bold
		}
		styles[category] = style
	}
	return styles
}

// TextStyleUpdate carries the optional title/body overrides applied by
// SetLayoutTextStyles and SetMasterTextStyles. Nil fields are left alone.
type TextStyleUpdate struct {
	TitleSizePt *float64
	TitleBold   *bool
	BodySizePt  *float64
	BodyBold    *bool
}

// SetLayoutTextStyles writes the overrides into each placeholder shape's
// level-1 default run properties, creating lstStyle/lvl1pPr/defRPr as
// needed. Returns the number of attributes set.
func SetLayoutTextStyles(root *xmlnode.Node, update TextStyleUpdate) int {
	updated := 0
	for _, shape := range root.FindAll("p:sp") {
		ph := shape.Find("p:nvSpPr/p:nvPr/p:ph")
		if ph == nil {
			continue
		}
		phType := ph.Attr("type")
		if phType == "" {
			phType = "body"
		}
		switch {
		case titleTypes[phType]:
			updated += applyShapeStyle(shape, update.TitleSizePt, update.TitleBold)
		case bodyTypes[phType]:
			updated += applyShapeStyle(shape, update.BodySizePt, update.BodyBold)
		}
	}
	return updated
}

// SetMasterTextStyles writes the overrides into the master's txStyles
// title and body level-1 defaults. Returns the number of attributes set;
// zero when the master has no txStyles.
func SetMasterTextStyles(root *xmlnode.Node, update TextStyleUpdate) int {
	txStyles := root.Find("p:txStyles")
	if txStyles == nil {
		return 0
	}
	updated := 0
	if title := txStyles.Find("p:titleStyle"); title != nil {
		updated += applyLevelStyle(title, update.TitleSizePt, update.TitleBold)
	}
	if body := txStyles.Find("p:bodyStyle"); body != nil {
		updated += applyLevelStyle(body, update.BodySizePt, update.BodyBold)
	}
	return updated
}

func applyShapeStyle(shape *xmlnode.Node, sizePt *float64, bold *bool) int {
	if sizePt == nil && bold == nil {
		return 0
	}
	lstStyle := firstDescendant(shape, "a:lstStyle")
	if lstStyle == nil {
		txBody := firstDescendant(shape, "p:txBody")
		if txBody == nil {
			return 0
		}
		lstStyle = xmlnode.New("a:lstStyle")
		txBody.Append(lstStyle)
	}
	return applyLevelStyle(lstStyle, sizePt, bold)
}

func applyLevelStyle(container *xmlnode.Node, sizePt *float64, bold *bool) int {
	lvl := container.Find("a:lvl1pPr")
	if lvl == nil {
		lvl = xmlnode.New("a:lvl1pPr")
		container.Append(lvl)
	}
	defRPr := lvl.Find("a:defRPr")
	if defRPr == nil {
		defRPr = xmlnode.New("a:defRPr")
		lvl.Append(defRPr)
	}

	updated := 0
	if sizePt != nil {
		defRPr.SetAttr("sz", strconv.Itoa(int(*sizePt*100+0.5)))
		updated++
	}
	if bold != nil {
		if *bold {
			defRPr.SetAttr("b", "1")
		} else {
			defRPr.SetAttr("b", "0")
		}
		updated++
	}
	return updated
}

func firstDescendant(node *xmlnode.Node, tag string) *xmlnode.Node {
	matches := node.FindAll(tag)
	if len(matches) == 0 {
		return nil
	}
	return matches[0]
}

func mostCommonInt(counts map[int]int) (int, bool) {
	if len(counts) == 0 {
		return 0, false
	}
	keys := make([]int, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	best, bestCount := keys[0], counts[keys[0]]
	for _, k := range keys[1:] {
		if counts[k] > bestCount {
			best, bestCount = k, counts[k]
		}
	}
	return best, true
}

func mostCommonString(counts map[string]int) (string, bool) {
	if len(counts) == 0 {
		return "", false
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	best, bestCount := keys[0], counts[keys[0]]
	for _, k := range keys[1:] {
		if counts[k] > bestCount {
			best, bestCount = k, counts[k]
		}
	}
	return best, true
}

func isNumeric(s string) bool {
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
