package report

import (
	"fmt"
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/deckforge/deckforge/pkg/deck"
	"github.com/deckforge/deckforge/pkg/errors"
	"github.com/deckforge/deckforge/pkg/opc"
	"github.com/deckforge/deckforge/pkg/xmlnode"
)

// DumpOptions controls how much of the inheritance chain a tree dump
// includes.
type DumpOptions struct {
	IncludeLayout bool
	IncludeMaster bool
	IncludeText   bool
	// Grouped collapses each slide into per-layer summaries instead of
	// the flat shape listing.
	Grouped bool
}

// Color is a single color reference as it appears in the markup.
type Color struct {
	Kind    string `json:"kind"`
	Value   string `json:"value,omitempty"`
	LastClr string `json:"lastClr,omitempty"`
}

// GradientStop is one stop of a gradient fill.
type GradientStop struct {
	Pos   string `json:"pos,omitempty"`
	Color *Color `json:"color,omitempty"`
}

// Fill describes a fill applied to a background or shape.
type Fill struct {
	Type   string         `json:"type"`
	Color  *Color         `json:"color,omitempty"`
	Stops  []GradientStop `json:"stops,omitempty"`
	Colors []Color        `json:"colors,omitempty"`
}

// Background wraps the resolved background fill of a layer, when any.
type Background struct {
	Fill *Fill `json:"fill"`
}

// Placeholder identifies a placeholder shape binding.
type Placeholder struct {
	Type string `json:"type,omitempty"`
	Idx  string `json:"idx,omitempty"`
}

// FontUse is a typeface with its occurrence count.
type FontUse struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// SizeUse is a font size in points with its occurrence count.
type SizeUse struct {
	Value float64 `json:"value"`
	Count int     `json:"count"`
}

// TextInfo summarizes the text body of a shape.
type TextInfo struct {
	Paragraphs  int       `json:"paragraphs"`
	Runs        int       `json:"runs"`
	Colors      []Color   `json:"colors"`
	Fonts       []FontUse `json:"fonts"`
	SizesPt     []SizeUse `json:"sizes_pt"`
	HasLstStyle bool      `json:"has_lstStyle"`
}

// Shape is one entry of a shape tree. Children is populated for groups.
type Shape struct {
	Type        string       `json:"type"`
	ID          string       `json:"id,omitempty"`
	Name        string       `json:"name,omitempty"`
	Placeholder *Placeholder `json:"placeholder,omitempty"`
	Fill        *Fill        `json:"fill,omitempty"`
	Embed       string       `json:"embed,omitempty"`
	GraphicURI  string       `json:"graphic_uri,omitempty"`
	Text        *TextInfo    `json:"text,omitempty"`
	Children    []*Shape     `json:"children,omitempty"`
}

// Layer is the collected state of one level of the inheritance chain.
type Layer struct {
	Part         string      `json:"part,omitempty"`
	Name         string      `json:"name,omitempty"`
	Background   *Background `json:"background"`
	Shapes       []*Shape    `json:"shapes"`
	HasClrMap    bool        `json:"has_clrMap"`
	HasClrMapOvr bool        `json:"has_clrMapOvr"`
}

// SlideTree is the dump entry for one slide. The flat fields are
// populated in the default mode; Local/SlideLayout/SlideMaster in
// grouped mode.
type SlideTree struct {
	Slide  int    `json:"slide"`
	Part   string `json:"part"`
	Layout string `json:"layout,omitempty"`
	Master string `json:"master,omitempty"`

	Background   *Background `json:"background,omitempty"`
	Shapes       []*Shape    `json:"shapes,omitempty"`
	HasClrMapOvr *bool       `json:"has_clrMapOvr,omitempty"`
	LayoutTree   *Layer      `json:"layout_tree,omitempty"`
	MasterTree   *Layer      `json:"master_tree,omitempty"`

	Local       *Layer `json:"local,omitempty"`
	SlideLayout *Layer `json:"slideLayout,omitempty"`
	SlideMaster *Layer `json:"slideMaster,omitempty"`
}

// TreeDump is the full dump payload.
type TreeDump struct {
	Slides []*SlideTree `json:"slides"`
}

// DumpTree inspects the selected slides together with the layouts and
// masters they inherit from. slideNumbers restricts the dump; nil or
// empty means all slides. Out-of-range selections fail before any slide
// is inspected.
func DumpTree(p *opc.Package, slideNumbers map[int]bool, opts DumpOptions) (*TreeDump, error) {
	slideParts := deck.SlideParts(p)

	selected := make([]int, 0, len(slideParts))
	if len(slideNumbers) > 0 {
		for num := range slideNumbers {
			selected = append(selected, num)
		}
		sort.Ints(selected)
		for _, num := range selected {
			if num < 1 || num > len(slideParts) {
				return nil, errors.New(errors.ErrCodeOutOfRange, "slide number out of range: %d", num)
			}
		}
	} else {
		for i := range slideParts {
			selected = append(selected, i+1)
		}
	}

	dump := &TreeDump{Slides: make([]*SlideTree, 0, len(selected))}
	for idx, num := range selected {
		slidePart := slideParts[num-1]
		root, err := parseXMLPart(p, slidePart)
		if err != nil {
			return nil, err
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

		entry := &SlideTree{
			Slide:  idx + 1,
			Part:   slidePart,
			Layout: layoutPart,
			Master: masterPart,
		}

		if opts.Grouped {
			entry.Local = collectLayer(root, "", opts.IncludeText)
			if opts.IncludeLayout && layoutPart != "" {
				layer, err := collectPartLayer(p, layoutPart, opts.IncludeText)
				if err != nil {
					return nil, err
				}
				entry.SlideLayout = layer
			}
			if opts.IncludeMaster && masterPart != "" {
				layer, err := collectPartLayer(p, masterPart, opts.IncludeText)
				if err != nil {
					return nil, err
				}
				entry.SlideMaster = layer
			}
			dump.Slides = append(dump.Slides, entry)
			continue
		}

		hasOvr := len(root.FindAll("p:clrMapOvr")) > 0
		entry.Background = extractBackground(root)
		entry.Shapes = extractShapes(root, opts.IncludeText)
		entry.HasClrMapOvr = &hasOvr

		if opts.IncludeLayout && layoutPart != "" {
			layer, err := collectPartLayer(p, layoutPart, opts.IncludeText)
			if err != nil {
				return nil, err
			}
			entry.LayoutTree = layer
		}
		if opts.IncludeMaster && masterPart != "" {
			layer, err := collectPartLayer(p, masterPart, opts.IncludeText)
			if err != nil {
				return nil, err
			}
			entry.MasterTree = layer
		}
		dump.Slides = append(dump.Slides, entry)
	}
	return dump, nil
}

// Summarize renders one line per layer of a grouped dump, suitable for
// terminal output. localOnly drops slides whose local layer carries no
// hardcoded color.
func Summarize(dump *TreeDump, localOnly bool) []string {
	var lines []string
	for _, slide := range dump.Slides {
		if localOnly && !slideHasLocalHardcoded(slide) {
			continue
		}
		lines = append(lines, fmt.Sprintf("slide %d:", slide.Slide))
		for _, layer := range []struct {
			name  string
			layer *Layer
		}{
			{"slideMaster", slide.SlideMaster},
			{"slideLayout", slide.SlideLayout},
			{"local", slide.Local},
		} {
			if layer.layer == nil {
				continue
			}
			s := summarizeLayer(layer.layer)
			lines = append(lines, fmt.Sprintf(
				"  %s: bg=%s fills(hard=%d, theme=%d) text(hard=%d, theme=%d) fonts=%s sizes=%s clrMap=%s",
				layer.name, s.bg, s.shapeFillHard, s.shapeFillTheme,
				s.textColorHard, s.textColorTheme, s.fonts, s.sizes, s.clrMap))
		}
	}
	return lines
}

func parseXMLPart(p *opc.Package, part string) (*xmlnode.Node, error) {
	data, err := p.Read(part)
	if err != nil {
		return nil, err
	}
	root, err := xmlnode.Parse(data)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPart, err, "parse %s", part)
	}
	return root, nil
}

func collectPartLayer(p *opc.Package, part string, includeText bool) (*Layer, error) {
	root, err := parseXMLPart(p, part)
	if err != nil {
		return nil, err
	}
	return collectLayer(root, part, includeText), nil
}

func collectLayer(root *xmlnode.Node, part string, includeText bool) *Layer {
	layer := &Layer{
		Part:         part,
		Background:   extractBackground(root),
		Shapes:       extractShapes(root, includeText),
		HasClrMap:    len(root.FindAll("p:clrMap")) > 0,
		HasClrMapOvr: len(root.FindAll("p:clrMapOvr")) > 0,
	}
	if part != "" {
		layer.Name = path.Base(part)
	}
	return layer
}

func extractBackground(root *xmlnode.Node) *Background {
	bgPr := root.Find("p:cSld/p:bg/p:bgPr")
	if bgPr == nil {
		return nil
	}
	fill := extractFill(bgPr)
	if fill == nil {
		return nil
	}
	return &Background{Fill: fill}
}

func extractShapes(root *xmlnode.Node, includeText bool) []*Shape {
	spTree := root.Find("p:cSld/p:spTree")
	if spTree == nil {
		return []*Shape{}
	}
	shapes := make([]*Shape, 0, len(spTree.Children))
	for _, node := range spTree.Children {
		shapes = append(shapes, extractShape(node, includeText))
	}
	return shapes
}

func extractShape(node *xmlnode.Node, includeText bool) *Shape {
	switch xmlnode.LocalName(node.Tag) {
	case "sp":
		return extractSp(node, includeText)
	case "pic":
		return extractPic(node)
	case "graphicFrame":
		return extractGraphicFrame(node)
	case "grpSp":
		return extractGroup(node, includeText)
	}
	return &Shape{Type: xmlnode.LocalName(node.Tag)}
}

func extractSp(node *xmlnode.Node, includeText bool) *Shape {
	shape := &Shape{Type: "shape"}
	applyIdentity(shape, node.Find("p:nvSpPr/p:cNvPr"))
	if ph := node.Find("p:nvSpPr/p:nvPr/p:ph"); ph != nil {
		shape.Placeholder = &Placeholder{Type: ph.Attr("type"), Idx: ph.Attr("idx")}
	}
	if spPr := node.Find("p:spPr"); spPr != nil {
		shape.Fill = extractFill(spPr)
	}
	if includeText {
		if txBody := node.Find("p:txBody"); txBody != nil {
			shape.Text = extractTextInfo(txBody)
		}
	}
	return shape
}

func extractPic(node *xmlnode.Node) *Shape {
	shape := &Shape{Type: "picture"}
	applyIdentity(shape, node.Find("p:nvPicPr/p:cNvPr"))
	if blip := node.Find("p:blipFill/a:blip"); blip != nil {
		shape.Embed = blip.Attr("r:embed")
	}
	shape.Fill = extractFill(node)
	return shape
}

func extractGraphicFrame(node *xmlnode.Node) *Shape {
	shape := &Shape{Type: "graphicFrame"}
	applyIdentity(shape, node.Find("p:nvGraphicFramePr/p:cNvPr"))
	if graphic := node.Find("a:graphic/a:graphicData"); graphic != nil {
		shape.GraphicURI = graphic.Attr("uri")
	}
	return shape
}

func extractGroup(node *xmlnode.Node, includeText bool) *Shape {
	shape := &Shape{Type: "group"}
	applyIdentity(shape, node.Find("p:nvGrpSpPr/p:cNvPr"))
	if children := node.Find("p:grpSp/p:spTree"); children != nil {
		for _, child := range children.Children {
			shape.Children = append(shape.Children, extractShape(child, includeText))
		}
	}
	return shape
}

func applyIdentity(shape *Shape, cNvPr *xmlnode.Node) {
	if cNvPr == nil {
		return
	}
	shape.ID = cNvPr.Attr("id")
	shape.Name = cNvPr.Attr("name")
}

func extractTextInfo(txBody *xmlnode.Node) *TextInfo {
	var paragraphs int
	for _, child := range txBody.Children {
		if child.Tag == "a:p" {
			paragraphs++
		}
	}
	return &TextInfo{
		Paragraphs:  paragraphs,
		Runs:        len(txBody.FindAll("a:r")),
		Colors:      extractColorNodes(txBody),
		Fonts:       extractTextFonts(txBody),
		SizesPt:     extractTextSizes(txBody),
		HasLstStyle: txBody.Find("a:lstStyle") != nil,
	}
}

var colorTags = []string{"a:srgbClr", "a:schemeClr", "a:sysClr", "a:prstClr"}

func extractColorNodes(node *xmlnode.Node) []Color {
	colors := []Color{}
	for _, tag := range colorTags {
		for _, found := range node.FindAll(tag) {
			colors = append(colors, colorFromNode(tag, found))
		}
	}
	return colors
}

func extractColor(node *xmlnode.Node) *Color {
	for _, tag := range colorTags {
		for _, child := range node.Children {
			if child.Tag == tag {
				color := colorFromNode(tag, child)
				return &color
			}
		}
	}
	return nil
}

func colorFromNode(tag string, node *xmlnode.Node) Color {
	color := Color{Kind: xmlnode.LocalName(tag), Value: node.Attr("val")}
	if color.Kind == "sysClr" {
		color.LastClr = node.Attr("lastClr")
	}
	return color
}

func extractFill(node *xmlnode.Node) *Fill {
	childByTag := func(tag string) *xmlnode.Node {
		for _, child := range node.Children {
			if child.Tag == tag {
				return child
			}
		}
		return nil
	}

	if solid := childByTag("a:solidFill"); solid != nil {
		return &Fill{Type: "solid", Color: extractColor(solid)}
	}
	if grad := childByTag("a:gradFill"); grad != nil {
		fill := &Fill{Type: "gradient"}
		for _, gs := range grad.FindAll("a:gs") {
			fill.Stops = append(fill.Stops, GradientStop{Pos: gs.Attr("pos"), Color: extractColor(gs)})
		}
		return fill
	}
	if childByTag("a:blipFill") != nil {
		return &Fill{Type: "image"}
	}
	if patt := childByTag("a:pattFill"); patt != nil {
		return &Fill{Type: "pattern", Colors: extractColorNodes(patt)}
	}
	if childByTag("a:noFill") != nil {
		return &Fill{Type: "none"}
	}
	return nil
}

func extractTextFonts(txBody *xmlnode.Node) []FontUse {
	counts := make(map[string]int)
	for _, tag := range []string{"a:rPr", "a:defRPr"} {
		for _, rpr := range txBody.FindAll(tag) {
			for _, child := range rpr.Children {
				if child.Tag != "a:latin" {
					continue
				}
				if font := child.Attr("typeface"); font != "" {
					counts[font]++
				}
			}
		}
	}
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]FontUse, 0, len(names))
	for _, name := range names {
		out = append(out, FontUse{Value: name, Count: counts[name]})
	}
	return out
}

func extractTextSizes(txBody *xmlnode.Node) []SizeUse {
	counts := make(map[float64]int)
	for _, tag := range []string{"a:rPr", "a:defRPr"} {
		for _, rpr := range txBody.FindAll(tag) {
			raw := rpr.Attr("sz")
			if raw == "" {
				continue
			}
			sz, err := strconv.Atoi(raw)
			if err != nil {
				continue
			}
			counts[float64(sz)/100]++
		}
	}
	sizes := make([]float64, 0, len(counts))
	for size := range counts {
		sizes = append(sizes, size)
	}
	sort.Float64s(sizes)
	out := make([]SizeUse, 0, len(sizes))
	for _, size := range sizes {
		out = append(out, SizeUse{Value: size, Count: counts[size]})
	}
	return out
}

type layerSummary struct {
	bg             string
	shapeFillHard  int
	shapeFillTheme int
	textColorHard  int
	textColorTheme int
	fonts          string
	sizes          string
	clrMap         string
}

func summarizeLayer(layer *Layer) layerSummary {
	s := layerSummary{bg: "none", fonts: "[]", sizes: "{}"}
	if layer.Background != nil && layer.Background.Fill != nil {
		s.bg = FormatFill(layer.Background.Fill)
	}

	fonts := make(map[string]int)
	sizes := make(map[float64]bool)
	for _, shape := range flattenShapes(layer.Shapes) {
		if shape.Fill != nil && shape.Fill.Color != nil {
			if shape.Fill.Color.Kind == "schemeClr" {
				s.shapeFillTheme++
			} else if shape.Fill.Color.Kind != "" {
				s.shapeFillHard++
			}
		}
		if shape.Text == nil {
			continue
		}
		for _, color := range shape.Text.Colors {
			if color.Kind == "schemeClr" {
				s.textColorTheme++
			} else if color.Kind != "" {
				s.textColorHard++
			}
		}
		for _, font := range shape.Text.Fonts {
			fonts[font.Value] += font.Count
		}
		for _, size := range shape.Text.SizesPt {
			sizes[size.Value] = true
		}
	}

	fontNames := make([]string, 0, len(fonts))
	for name := range fonts {
		fontNames = append(fontNames, name)
	}
	sort.Strings(fontNames)
	fontList := make([]string, 0, len(fontNames))
	for _, name := range fontNames {
		fontList = append(fontList, fmt.Sprintf("%s(%d)", name, fonts[name]))
	}
	s.fonts = "[" + strings.Join(fontList, " ") + "]"

	sizeList := make([]float64, 0, len(sizes))
	for size := range sizes {
		sizeList = append(sizeList, size)
	}
	sort.Float64s(sizeList)
	sizeText := make([]string, 0, len(sizeList))
	for _, size := range sizeList {
		sizeText = append(sizeText, strconv.FormatFloat(size, 'f', -1, 64))
	}
	s.sizes = "{" + strings.Join(sizeText, ", ") + "}"

	s.clrMap = "no"
	if layer.HasClrMap {
		s.clrMap = "yes"
	}
	if layer.HasClrMapOvr {
		s.clrMap = "override"
	}
	return s
}

func flattenShapes(shapes []*Shape) []*Shape {
	var out []*Shape
	for _, shape := range shapes {
		out = append(out, shape)
		if shape.Type == "group" {
			out = append(out, flattenShapes(shape.Children)...)
		}
	}
	return out
}

// FormatFill renders a fill as a short label like "srgb(#FF0000)" or
// "scheme(accent1)".
func FormatFill(fill *Fill) string {
	if fill == nil {
		return "none"
	}
	if fill.Type == "solid" {
		color := fill.Color
		if color == nil {
			return "solid"
		}
		switch color.Kind {
		case "schemeClr":
			return fmt.Sprintf("scheme(%s)", color.Value)
		case "srgbClr":
			return fmt.Sprintf("srgb(#%s)", color.Value)
		case "sysClr":
			suffix := ""
			if color.LastClr != "" {
				suffix = "/" + color.LastClr
			}
			return fmt.Sprintf("sys(%s%s)", color.Value, suffix)
		}
		return fmt.Sprintf("%s(%s)", color.Kind, color.Value)
	}
	if fill.Type == "" {
		return "none"
	}
	return fill.Type
}

func slideHasLocalHardcoded(slide *SlideTree) bool {
	local := slide.Local
	if local == nil {
		return false
	}
	if local.Background != nil && hasHardcodedFill(local.Background.Fill) {
		return true
	}
	for _, shape := range flattenShapes(local.Shapes) {
		if hasHardcodedFill(shape.Fill) {
			return true
		}
		if shape.Text == nil {
			continue
		}
		for _, color := range shape.Text.Colors {
			if color.Kind != "" && color.Kind != "schemeClr" {
				return true
			}
		}
	}
	return false
}

func hasHardcodedFill(fill *Fill) bool {
	if fill == nil {
		return false
	}
	switch fill.Type {
	case "solid":
		return fill.Color != nil && fill.Color.Kind != "" && fill.Color.Kind != "schemeClr"
	case "gradient":
		for _, stop := range fill.Stops {
			if stop.Color != nil && stop.Color.Kind != "" && stop.Color.Kind != "schemeClr" {
				return true
			}
		}
	case "pattern":
		for _, color := range fill.Colors {
			if color.Kind != "" && color.Kind != "schemeClr" {
				return true
			}
		}
	}
	return false
}
