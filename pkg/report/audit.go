// Package report builds read-only analyses of a presentation container:
// per-slide color and style audits, slide/layout/master trees, and a
// relationship graph suitable for Graphviz rendering.
package report

import (
	"sort"
	"strconv"
	"strings"

	"github.com/deckforge/deckforge/pkg/deck"
	"github.com/deckforge/deckforge/pkg/errors"
	"github.com/deckforge/deckforge/pkg/opc"
	"github.com/deckforge/deckforge/pkg/style"
	"github.com/deckforge/deckforge/pkg/xmlnode"
)

// ColorCounts tallies color node kinds within a part.
type ColorCounts struct {
	SRGB   int `json:"srgb"`
	Scheme int `json:"scheme"`
	SysClr int `json:"sysclr"`
}

// FillCounts tallies fill node kinds within a part.
type FillCounts struct {
	Solid int `json:"solid"`
	Grad  int `json:"grad"`
	Blip  int `json:"blip"`
}

// BackgroundFlags records which background constructs a slide declares.
type BackgroundFlags struct {
	BgRef   bool `json:"bg_ref"`
	BgBlip  bool `json:"bg_blip"`
	BgGrad  bool `json:"bg_grad"`
	BgSolid bool `json:"bg_solid"`
}

// ColorFrequency is a color value with its occurrence count.
type ColorFrequency struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// SizeFrequency is a font size in points with its occurrence count.
type SizeFrequency struct {
	Pt    float64 `json:"pt"`
	Count int     `json:"count"`
}

// TextStyleSummary condenses run-property statistics for one part.
type TextStyleSummary struct {
	TopSizes []SizeFrequency `json:"top_sizes"`
	Bold     map[string]int  `json:"bold"`
}

// SlideAudit is the census for a single slide.
type SlideAudit struct {
	SlidePart    string           `json:"slide_part"`
	LayoutPart   string           `json:"layout_part,omitempty"`
	MasterPart   string           `json:"master_part,omitempty"`
	ColorCounts  ColorCounts      `json:"color_counts"`
	ShapeColors  ColorCounts      `json:"shape_colors"`
	TextColors   ColorCounts      `json:"text_colors"`
	TextStyles   TextStyleSummary `json:"text_styles"`
	HasClrMapOvr bool             `json:"has_clrMapOvr"`
	Background   BackgroundFlags  `json:"background"`
	Fills        FillCounts       `json:"fills"`
	Pictures     int              `json:"pictures"`
	TopSRGB      []ColorFrequency `json:"top_srgb"`
}

// PartAudit is the census for a layout or master part.
type PartAudit struct {
	ColorCounts  ColorCounts      `json:"color_counts"`
	ShapeColors  ColorCounts      `json:"shape_colors"`
	TextColors   ColorCounts      `json:"text_colors"`
	Fills        FillCounts       `json:"fills"`
	Pictures     int              `json:"pictures"`
	TopSRGB      []ColorFrequency `json:"top_srgb"`
	HasClrMap    bool             `json:"has_clrMap"`
	HasClrMapOvr bool             `json:"has_clrMapOvr"`
}

// SlideGroup clusters slides that share a grouping key, with
// aggregate counts used to judge how much hardcoding the group carries.
type SlideGroup struct {
	LayoutPart      string   `json:"layout_part,omitempty"`
	MasterPart      string   `json:"master_part,omitempty"`
	Background      string   `json:"background"`
	Palette         []string `json:"palette"`
	Slides          []int    `json:"slides"`
	HardcodedTotal  int      `json:"hardcoded_total"`
	TextSRGBTotal   int      `json:"text_srgb_total"`
	ShapeSRGBTotal  int      `json:"shape_srgb_total"`
	ClrMapOvrSlides int      `json:"clrMapOvr_slides"`
	ImageSlides     int      `json:"image_slides"`
	CustomBgSlides  int      `json:"custom_bg_slides"`
}

// ThemeSummary names the primary theme part and its scheme names.
type ThemeSummary struct {
	Part            string `json:"part"`
	ThemeName       string `json:"theme_name"`
	ColorSchemeName string `json:"color_scheme_name"`
	FontSchemeName  string `json:"font_scheme_name"`
}

// AuditReport is the full package census.
type AuditReport struct {
	SlidesTotal   int                  `json:"slides_total"`
	SlidesAudited int                  `json:"slides_audited"`
	PerSlide      map[int]*SlideAudit  `json:"per_slide"`
	Masters       map[string]PartAudit `json:"masters"`
	Layouts       map[string]PartAudit `json:"layouts"`
	Groups        []*SlideGroup        `json:"groups"`
	Theme         *ThemeSummary        `json:"theme,omitempty"`
	GroupBy       []string             `json:"group_by"`
}

// Audit walks the presentation and builds a census of color usage, text
// styles, backgrounds, and images per slide, plus summaries of every
// layout and master. slideNumbers restricts the audit to a subset; an
// empty or nil set audits all slides. groupBy selects grouping keys
// from "p" (palette), "b" (background), and "l" (layout); nil means
// palette plus layout.
func Audit(p *opc.Package, slideNumbers map[int]bool, groupBy []string) (*AuditReport, error) {
	groups, err := normalizeGroupBy(groupBy)
	if err != nil {
		return nil, err
	}

	slideParts := deck.SlideParts(p)
	perSlide := make(map[int]*SlideAudit)

	masters, err := auditParts(p, deck.MasterParts(p))
	if err != nil {
		return nil, err
	}
	layouts, err := auditParts(p, deck.LayoutParts(p))
	if err != nil {
		return nil, err
	}

	for i, slidePart := range slideParts {
		num := i + 1
		if len(slideNumbers) > 0 && !slideNumbers[num] {
			continue
		}
		data, err := p.Read(slidePart)
		if err != nil {
			return nil, err
		}
		root, err := xmlnode.Parse(data)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidPart, err, "parse %s", slidePart)
		}

		layoutPart, err := deck.SlideLayoutPart(p, slidePart)
		if err != nil {
			return nil, err
		}
		masterPart := ""
		if layoutPart != "" {
			masterPart, err = deck.LayoutMasterPart(p, layoutPart)
			if err != nil {
				return nil, err
			}
		}

		perSlide[num] = &SlideAudit{
			SlidePart:    slidePart,
			LayoutPart:   layoutPart,
			MasterPart:   masterPart,
			ColorCounts:  colorCounts(root),
			ShapeColors:  scopedColorCounts(root, "p:spPr"),
			TextColors:   textColorCounts(root),
			TextStyles:   textStyleSummary(root),
			HasClrMapOvr: len(root.FindAll("p:clrMapOvr")) > 0,
			Background:   backgroundFlags(root),
			Fills:        fillCounts(root),
			Pictures:     len(root.FindAll("p:pic")),
			TopSRGB:      topSRGB(root, 5),
		}
	}

	return &AuditReport{
		SlidesTotal:   len(slideParts),
		SlidesAudited: len(perSlide),
		PerSlide:      perSlide,
		Masters:       masters,
		Layouts:       layouts,
		Groups:        groupSlides(perSlide, groups),
		Theme:         themeSummary(p),
		GroupBy:       groups,
	}, nil
}

// GroupNumbers flattens audit groups into per-group slide number lists,
// preserving group order and skipping empty groups.
func GroupNumbers(groups []*SlideGroup) [][]int {
	out := make([][]int, 0, len(groups))
	for _, g := range groups {
		if len(g.Slides) == 0 {
			continue
		}
		nums := make([]int, len(g.Slides))
		copy(nums, g.Slides)
		out = append(out, nums)
	}
	return out
}

func normalizeGroupBy(tokens []string) ([]string, error) {
	if tokens == nil {
		return []string{"p", "l"}, nil
	}
	selected := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if token != "p" && token != "b" && token != "l" {
			return nil, errors.New(errors.ErrCodeInvalidInput, "invalid group-by option: %q", token)
		}
		if !contains(selected, token) {
			selected = append(selected, token)
		}
	}
	return selected, nil
}

func auditParts(p *opc.Package, parts []string) (map[string]PartAudit, error) {
	summary := make(map[string]PartAudit, len(parts))
	for _, part := range parts {
		data, err := p.Read(part)
		if err != nil {
			return nil, err
		}
		root, err := xmlnode.Parse(data)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidPart, err, "parse %s", part)
		}
		summary[part] = PartAudit{
			ColorCounts:  colorCounts(root),
			ShapeColors:  scopedColorCounts(root, "p:spPr"),
			TextColors:   textColorCounts(root),
			Fills:        fillCounts(root),
			Pictures:     len(root.FindAll("p:pic")),
			TopSRGB:      topSRGB(root, 5),
			HasClrMap:    len(root.FindAll("p:clrMap")) > 0,
			HasClrMapOvr: len(root.FindAll("p:clrMapOvr")) > 0,
		}
	}
	return summary, nil
}

func colorCounts(root *xmlnode.Node) ColorCounts {
	return ColorCounts{
		SRGB:   len(root.FindAll("a:srgbClr")),
		Scheme: len(root.FindAll("a:schemeClr")),
		SysClr: len(root.FindAll("a:sysClr")),
	}
}

func fillCounts(root *xmlnode.Node) FillCounts {
	return FillCounts{
		Solid: len(root.FindAll("a:solidFill")),
		Grad:  len(root.FindAll("a:gradFill")),
		Blip:  len(root.FindAll("a:blipFill")),
	}
}

// scopedColorCounts counts color nodes that sit under any element with
// the given tag.
func scopedColorCounts(root *xmlnode.Node, scope string) ColorCounts {
	var counts ColorCounts
	for _, container := range root.FindAll(scope) {
		c := colorCounts(container)
		counts.SRGB += c.SRGB
		counts.Scheme += c.Scheme
		counts.SysClr += c.SysClr
	}
	return counts
}

var textColorScopes = []string{"a:rPr", "a:defRPr", "a:lstStyle", "a:buClr"}

func textColorCounts(root *xmlnode.Node) ColorCounts {
	var counts ColorCounts
	for _, scope := range textColorScopes {
		c := scopedColorCounts(root, scope)
		counts.SRGB += c.SRGB
		counts.Scheme += c.Scheme
		counts.SysClr += c.SysClr
	}
	return counts
}

func textStyleSummary(root *xmlnode.Node) TextStyleSummary {
	stats := style.ExtractTextStyleStats(root)

	type sizeCount struct {
		size  int
		count int
	}
	sizes := make([]sizeCount, 0, len(stats.SizeCounts))
	for raw, count := range stats.SizeCounts {
		size, err := strconv.Atoi(raw)
		if err != nil {
			continue
		}
		sizes = append(sizes, sizeCount{size, count})
	}
	sort.Slice(sizes, func(i, j int) bool {
		if sizes[i].count != sizes[j].count {
			return sizes[i].count > sizes[j].count
		}
		return sizes[i].size < sizes[j].size
	})
	if len(sizes) > 5 {
		sizes = sizes[:5]
	}

	top := make([]SizeFrequency, 0, len(sizes))
	for _, sc := range sizes {
		top = append(top, SizeFrequency{Pt: float64(sc.size) / 100, Count: sc.count})
	}

	bold := make(map[string]int, len(stats.BoldCounts))
	for k, v := range stats.BoldCounts {
		bold[k] = v
	}
	return TextStyleSummary{TopSizes: top, Bold: bold}
}

func backgroundFlags(root *xmlnode.Node) BackgroundFlags {
	bgPr := root.Find("p:cSld/p:bg/p:bgPr")
	hasPrChild := func(tag string) bool {
		if bgPr == nil {
			return false
		}
		for _, child := range bgPr.Children {
			if child.Tag == tag {
				return true
			}
		}
		return false
	}
	return BackgroundFlags{
		BgRef:   root.Find("p:cSld/p:bg/p:bgRef") != nil,
		BgBlip:  hasPrChild("a:blipFill"),
		BgGrad:  hasPrChild("a:gradFill"),
		BgSolid: hasPrChild("a:solidFill"),
	}
}

func topSRGB(root *xmlnode.Node, limit int) []ColorFrequency {
	counts := make(map[string]int)
	for _, node := range root.FindAll("a:srgbClr") {
		val := strings.ToUpper(node.Attr("val"))
		if val == "" {
			continue
		}
		counts[val]++
	}
	values := make([]string, 0, len(counts))
	for val := range counts {
		values = append(values, val)
	}
	sort.Slice(values, func(i, j int) bool {
		if counts[values[i]] != counts[values[j]] {
			return counts[values[i]] > counts[values[j]]
		}
		return values[i] < values[j]
	})
	if len(values) > limit {
		values = values[:limit]
	}
	out := make([]ColorFrequency, 0, len(values))
	for _, val := range values {
		out = append(out, ColorFrequency{Value: val, Count: counts[val]})
	}
	return out
}

func groupSlides(perSlide map[int]*SlideAudit, groupBy []string) []*SlideGroup {
	nums := make([]int, 0, len(perSlide))
	for num := range perSlide {
		nums = append(nums, num)
	}
	sort.Ints(nums)

	byKey := make(map[string]*SlideGroup)
	var order []string
	for _, num := range nums {
		data := perSlide[num]
		palette := make([]string, 0, len(data.TopSRGB))
		for _, entry := range data.TopSRGB {
			palette = append(palette, entry.Value)
		}

		var keyParts []string
		if contains(groupBy, "l") {
			keyParts = append(keyParts, data.LayoutPart, data.MasterPart)
		}
		if contains(groupBy, "b") {
			keyParts = append(keyParts, backgroundSignature(data.Background))
		}
		if contains(groupBy, "p") {
			keyParts = append(keyParts, strings.Join(palette, ","))
		}
		key := strings.Join(keyParts, "|")

		group, ok := byKey[key]
		if !ok {
			group = &SlideGroup{
				LayoutPart: data.LayoutPart,
				MasterPart: data.MasterPart,
				Background: backgroundSignature(data.Background),
				Palette:    palette,
			}
			byKey[key] = group
			order = append(order, key)
		}
		group.Slides = append(group.Slides, num)
		group.HardcodedTotal += data.ColorCounts.SRGB + data.ColorCounts.SysClr
		group.TextSRGBTotal += data.TextColors.SRGB
		group.ShapeSRGBTotal += data.ShapeColors.SRGB
		if data.HasClrMapOvr {
			group.ClrMapOvrSlides++
		}
		if data.Pictures > 0 || data.Fills.Blip > 0 {
			group.ImageSlides++
		}
		bg := data.Background
		if bg.BgBlip || bg.BgGrad || bg.BgSolid || bg.BgRef {
			group.CustomBgSlides++
		}
	}

	groups := make([]*SlideGroup, 0, len(order))
	for _, key := range order {
		groups = append(groups, byKey[key])
	}
	return groups
}

func backgroundSignature(bg BackgroundFlags) string {
	var flags []string
	if bg.BgBlip {
		flags = append(flags, "blip")
	}
	if bg.BgGrad {
		flags = append(flags, "grad")
	}
	if bg.BgSolid {
		flags = append(flags, "solid")
	}
	if bg.BgRef {
		flags = append(flags, "ref")
	}
	if len(flags) == 0 {
		return "none"
	}
	return strings.Join(flags, "+")
}

func themeSummary(p *opc.Package) *ThemeSummary {
	var parts, plain []string
	for _, part := range p.Parts() {
		if !strings.HasPrefix(part, "ppt/theme/") || !strings.HasSuffix(part, ".xml") {
			continue
		}
		parts = append(parts, part)
		if !strings.Contains(part, "themeOverride") {
			plain = append(plain, part)
		}
	}
	if len(parts) == 0 {
		return nil
	}
	candidates := plain
	if len(candidates) == 0 {
		candidates = parts
	}
	sort.Strings(candidates)
	themePart := candidates[0]

	data, err := p.Read(themePart)
	if err != nil {
		return nil
	}
	root, err := xmlnode.Parse(data)
	if err != nil {
		return nil
	}
	summary := &ThemeSummary{Part: themePart, ThemeName: root.Attr("name")}
	if elements := root.Find("a:themeElements"); elements != nil {
		if clr := elements.Find("a:clrScheme"); clr != nil {
			summary.ColorSchemeName = clr.Attr("name")
		}
		if fonts := elements.Find("a:fontScheme"); fonts != nil {
			summary.FontSchemeName = fonts.Attr("name")
		}
	}
	return summary
}

func contains(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}
