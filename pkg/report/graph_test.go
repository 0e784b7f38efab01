package report

import (
	"strings"
	"testing"
)

func TestBuildGraph(t *testing.T) {
	p := fixturePackage(t)

	graph, err := BuildGraph(p)
	if err != nil {
		t.Fatalf("BuildGraph: %v", err)
	}

	kinds := make(map[string]string)
	for _, node := range graph.Nodes {
		kinds[node.Part] = node.Kind
	}
	if kinds["/"] != "package" {
		t.Errorf("root node kind = %q", kinds["/"])
	}
	if kinds["ppt/slides/slide1.xml"] != "slide" {
		t.Errorf("slide node kind = %q", kinds["ppt/slides/slide1.xml"])
	}
	if kinds["ppt/slideLayouts/slideLayout1.xml"] != "slideLayout" {
		t.Errorf("layout node kind = %q", kinds["ppt/slideLayouts/slideLayout1.xml"])
	}

	var found bool
	for _, edge := range graph.Edges {
		if edge.From == "ppt/slides/slide1.xml" && edge.To == "ppt/slideLayouts/slideLayout1.xml" {
			found = true
			if edge.Type != "slideLayout" {
				t.Errorf("edge type = %q", edge.Type)
			}
			if edge.External {
				t.Error("internal edge flagged external")
			}
		}
	}
	if !found {
		t.Error("missing slide -> layout edge")
	}
}

func TestBuildGraphExternalTarget(t *testing.T) {
	p := fixturePackage(t)
	p.Write("ppt/slides/_rels/slide2.xml.rels", []byte(relsOpen+
		relXML("rId1", slideLayoutRelType, "../slideLayouts/slideLayout1.xml")+
		`<Relationship Id="rId2" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/hyperlink" Target="https://example.com" TargetMode="External"/>`+
		relsClose))

	graph, err := BuildGraph(p)
	if err != nil {
		t.Fatalf("BuildGraph: %v", err)
	}

	var external *GraphEdge
	for i, edge := range graph.Edges {
		if edge.To == "https://example.com" {
			external = &graph.Edges[i]
		}
	}
	if external == nil {
		t.Fatal("missing external edge")
	}
	if !external.External || external.Type != "hyperlink" {
		t.Errorf("external edge = %+v", external)
	}
	for _, node := range graph.Nodes {
		if node.Part == "https://example.com" {
			t.Error("external target should not become a node")
		}
	}
}

func TestToDOT(t *testing.T) {
	p := fixturePackage(t)

	graph, err := BuildGraph(p)
	if err != nil {
		t.Fatalf("BuildGraph: %v", err)
	}
	dot := ToDOT(graph)

	if !strings.HasPrefix(dot, "digraph parts {") {
		t.Errorf("dot prefix = %q", dot[:min(len(dot), 40)])
	}
	for _, want := range []string{
		`"ppt/slides/slide1.xml" -> "ppt/slideLayouts/slideLayout1.xml" [label="rId1"]`,
		`"ppt/slides/slide1.xml" [label="ppt/slides/slide1.xml", fillcolor="lightblue"]`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("dot missing %q", want)
		}
	}
	if !strings.HasSuffix(strings.TrimSpace(dot), "}") {
		t.Error("dot not terminated")
	}
}
