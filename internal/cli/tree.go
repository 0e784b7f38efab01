package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss/tree"

	"github.com/deckforge/deckforge/pkg/report"
)

// renderDumpTree renders the dump as a terminal tree, one root per slide.
func renderDumpTree(dump *report.TreeDump) string {
	blocks := make([]string, 0, len(dump.Slides))
	for _, slide := range dump.Slides {
		root := tree.Root(StyleTitle.Render(fmt.Sprintf("slide %d", slide.Slide)) + " " + StyleDim.Render(slide.Part))
		if slide.Local != nil {
			root.Child(layerNode("local", slide.Local))
			if slide.SlideLayout != nil {
				root.Child(layerNode("slideLayout", slide.SlideLayout))
			}
			if slide.SlideMaster != nil {
				root.Child(layerNode("slideMaster", slide.SlideMaster))
			}
		} else {
			if slide.Background != nil {
				root.Child("bg " + report.FormatFill(slide.Background.Fill))
			}
			for _, shape := range slide.Shapes {
				root.Child(shapeNode(shape))
			}
			if slide.LayoutTree != nil {
				root.Child(layerNode("layout", slide.LayoutTree))
			}
			if slide.MasterTree != nil {
				root.Child(layerNode("master", slide.MasterTree))
			}
		}
		blocks = append(blocks, root.String())
	}
	return strings.Join(blocks, "\n")
}

func layerNode(title string, layer *report.Layer) *tree.Tree {
	label := StyleValue.Render(title)
	if layer.Part != "" {
		label += " " + StyleDim.Render(layer.Part)
	}
	node := tree.Root(label)
	if layer.Background != nil {
		node.Child("bg " + report.FormatFill(layer.Background.Fill))
	}
	for _, shape := range layer.Shapes {
		node.Child(shapeNode(shape))
	}
	return node
}

func shapeNode(shape *report.Shape) any {
	label := shapeLabel(shape)
	if len(shape.Children) == 0 {
		return label
	}
	node := tree.Root(label)
	for _, child := range shape.Children {
		node.Child(shapeNode(child))
	}
	return node
}

func shapeLabel(shape *report.Shape) string {
	parts := []string{shape.Type}
	if shape.Name != "" {
		parts = append(parts, fmt.Sprintf("%q", shape.Name))
	}
	if shape.Placeholder != nil {
		ph := shape.Placeholder.Type
		if ph == "" {
			ph = "body"
		}
		if shape.Placeholder.Idx != "" {
			ph += "#" + shape.Placeholder.Idx
		}
		parts = append(parts, StyleDim.Render("ph:"+ph))
	}
	if shape.Fill != nil {
		parts = append(parts, report.FormatFill(shape.Fill))
	}
	if shape.Embed != "" {
		parts = append(parts, StyleDim.Render("embed="+shape.Embed))
	}
	if shape.Text != nil {
		parts = append(parts, StyleDim.Render(fmt.Sprintf("%dp/%dr", shape.Text.Paragraphs, shape.Text.Runs)))
	}
	return strings.Join(parts, " ")
}
