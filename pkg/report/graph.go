package report

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/deckforge/deckforge/pkg/errors"
	"github.com/deckforge/deckforge/pkg/opc"
)

// GraphNode is one part in the relationship graph.
type GraphNode struct {
	Part string `json:"part"`
	Kind string `json:"kind"`
}

// GraphEdge is one relationship between two parts. External targets
// keep the raw target string in To.
type GraphEdge struct {
	From     string `json:"from"`
	To       string `json:"to"`
	ID       string `json:"id"`
	Type     string `json:"type"`
	External bool   `json:"external,omitempty"`
}

// RelationshipGraph is the part digraph induced by every .rels sidecar
// in the container.
type RelationshipGraph struct {
	Nodes []GraphNode `json:"nodes"`
	Edges []GraphEdge `json:"edges"`
}

// BuildGraph collects every relationship in the package into a digraph.
// Package-level relationships originate from the pseudo-node "/".
func BuildGraph(p *opc.Package) (*RelationshipGraph, error) {
	graph := &RelationshipGraph{}
	seen := make(map[string]bool)

	addNode := func(part string) {
		if seen[part] {
			return
		}
		seen[part] = true
		graph.Nodes = append(graph.Nodes, GraphNode{Part: part, Kind: partKind(part)})
	}

	var relsParts []string
	for _, part := range p.Parts() {
		if strings.HasSuffix(part, ".rels") {
			relsParts = append(relsParts, part)
		}
	}
	sort.Strings(relsParts)

	for _, relsPart := range relsParts {
		source := opc.SourcePartFor(relsPart)
		sourceNode := source
		if sourceNode == "" {
			sourceNode = "/"
		}
		addNode(sourceNode)

		rels, err := opc.Relationships(p, source)
		if err != nil {
			return nil, err
		}
		for _, rel := range rels {
			edge := GraphEdge{
				From: sourceNode,
				ID:   rel.ID,
				Type: relTypeName(rel.Type),
			}
			if rel.IsExternal() {
				edge.To = rel.Target
				edge.External = true
			} else {
				edge.To = opc.ResolveTarget(dirName(source), rel.Target)
				addNode(edge.To)
			}
			graph.Edges = append(graph.Edges, edge)
		}
	}
	return graph, nil
}

// ToDOT converts a relationship graph to Graphviz DOT format. The
// resulting string can be rendered with [RenderSVG].
func ToDOT(graph *RelationshipGraph) string {
	var buf bytes.Buffer
	buf.WriteString("digraph parts {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=11];\n")
	buf.WriteString("\n")

	for _, node := range graph.Nodes {
		attrs := []string{fmt.Sprintf("label=%q", node.Part)}
		if color := kindColor(node.Kind); color != "" {
			attrs = append(attrs, fmt.Sprintf("fillcolor=%q", color))
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", node.Part, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, edge := range graph.Edges {
		attrs := []string{fmt.Sprintf("label=%q", edge.ID)}
		if edge.External {
			attrs = append(attrs, "style=dashed")
		}
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", edge.From, edge.To, strings.Join(attrs, ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "init graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render graph")
	}
	return buf.Bytes(), nil
}

func partKind(part string) string {
	switch {
	case part == "/":
		return "package"
	case part == opc.ContentTypesPart:
		return "contentTypes"
	case strings.HasPrefix(part, "ppt/slides/"):
		return "slide"
	case strings.HasPrefix(part, "ppt/slideLayouts/"):
		return "slideLayout"
	case strings.HasPrefix(part, "ppt/slideMasters/"):
		return "slideMaster"
	case strings.HasPrefix(part, "ppt/theme/"):
		return "theme"
	case strings.HasPrefix(part, "ppt/media/"):
		return "media"
	case part == "ppt/presentation.xml":
		return "presentation"
	}
	return "part"
}

func kindColor(kind string) string {
	switch kind {
	case "slide":
		return "lightblue"
	case "slideLayout":
		return "lightyellow"
	case "slideMaster":
		return "lightpink"
	case "theme":
		return "lightgreen"
	case "media":
		return "lightgrey"
	}
	return ""
}

// relTypeName strips the schema prefix from a relationship type URI.
func relTypeName(relType string) string {
	if i := strings.LastIndex(relType, "/"); i >= 0 {
		return relType[i+1:]
	}
	return relType
}

func dirName(part string) string {
	if i := strings.LastIndex(part, "/"); i >= 0 {
		return part[:i]
	}
	return ""
}
