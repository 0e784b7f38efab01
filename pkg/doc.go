// Package pkg provides the core libraries for Deckforge template editing.
//
// # Overview
//
// Deckforge reads, inspects, and rewrites PowerPoint template packages
// (.potx/.pptx). The pkg directory splits into three layers:
//
//  1. Container - OPC package plumbing ([opc], [xmlnode], [media])
//  2. Domain - theme and slide semantics ([theme], [style], [deck], [report])
//  3. Surface - high-level entry points ([template], [storage], [errors])
//
// # Architecture
//
// The typical data flow through Deckforge:
//
//	.potx bytes (file, mem, redis, mongo, s3)
//	         |
//	    [storage] package (URI backends)
//	         |
//	    [opc] package (zip container, parts, rels, content types)
//	         |
//	    [theme] / [deck] / [style] packages (edits)
//	         |
//	    [report] package (audits, dump trees, graphs)
//	         |
//	    rewritten .potx bytes
//
// # Quick Start
//
// Open a template, recolor it, and save it back:
//
//	import (
//	    "context"
//	    "github.com/deckforge/deckforge/pkg/storage"
//	    "github.com/deckforge/deckforge/pkg/template"
//	    "github.com/deckforge/deckforge/pkg/theme"
//	)
//
//	// 1. Open from any storage URI
//	t, _ := template.Open(ctx, "file:///tmp/brand.potx", storage.Config{})
//
//	// 2. Edit the shared theme
//	th, _ := t.Theme()
//	_ = th.SetColor("accent1", "#1F6BFF")
//	th.SetMajorFont(theme.FontSpec{Latin: "Aptos Display"})
//
//	// 3. Validate and save
//	rep, _ := t.Validate()
//	if rep.OK() {
//	    _ = t.Save(ctx, "file:///tmp/brand-blue.potx", storage.Config{})
//	}
//
// # Main Packages
//
// ## Container
//
// [opc] - Open Packaging Conventions container: zip archive access, part
// paths, relationship sidecars, rId allocation, and [Content_Types].xml
// bookkeeping. Everything above it works through [opc.Package].
//
// [xmlnode] - Order-preserving XML tree used for every part Deckforge
// rewrites. Round-trips attributes and unknown elements untouched.
//
// [media] - Image part ingestion: extension normalization, content type
// registration, and media part naming.
//
// ## Domain
//
// [theme] - theme1.xml editing: the twelve color slots, major and minor
// font schemes, and scheme names. Slot aliases (dark1, followedHyperlink)
// resolve through [theme.CanonicalSlot].
//
// [style] - Run-level formatting across arbitrary parts: palette mapping,
// color and font stripping, font family rewrites, placeholder style
// detection, and master text style updates.
//
// [deck] - Presentation topology: slide, layout, and master enumeration,
// layout cloning and assignment, auto-layout from audit groups, pruning,
// reindexing, sanitize and normalize passes.
//
// [report] - Read-only inspection: per-slide audits with palette grouping,
// dump trees with summaries, and relationship graphs rendered to DOT or
// SVG via Graphviz.
//
// ## Surface
//
// [template] - Facade tying the layers together: open, edit, validate,
// save. Also builds a minimal valid template from scratch.
//
// [storage] - URI-addressed byte storage with file, mem, redis, mongo,
// and s3 backends behind one interface.
//
// [errors] - Coded errors shared by the library, CLI, and server, plus
// slide number selector parsing.
//
// # Common Workflows
//
// Audit a deck and group slides by palette and layout:
//
//	rep, _ := report.Audit(pkg, nil, []string{"p", "l"})
//	for _, g := range rep.Groups {
//	    fmt.Println(g.Label, g.Slides)
//	}
//
// Clone a slide's layout and move slides onto it:
//
//	part, _ := deck.MakeLayoutFromSlide(pkg, 3, "Hero", 1)
//	_ = deck.AssignSlidesToLayout(pkg, []int{3, 4}, part)
//
// Apply a palette file to a single master:
//
//	part, _ := deck.ResolveMasterPart(pkg, "1")
//	_, _ = deck.ApplyPaletteToPart(pkg, part, palette)
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...          # All tests
//	go test ./pkg/opc/...      # Specific package
//	go test -run Example       # Examples only
//
// [opc]: https://pkg.go.dev/github.com/deckforge/deckforge/pkg/opc
// [opc.Package]: https://pkg.go.dev/github.com/deckforge/deckforge/pkg/opc#Package
// [xmlnode]: https://pkg.go.dev/github.com/deckforge/deckforge/pkg/xmlnode
// [media]: https://pkg.go.dev/github.com/deckforge/deckforge/pkg/media
// [theme]: https://pkg.go.dev/github.com/deckforge/deckforge/pkg/theme
// [theme.CanonicalSlot]: https://pkg.go.dev/github.com/deckforge/deckforge/pkg/theme#CanonicalSlot
// [style]: https://pkg.go.dev/github.com/deckforge/deckforge/pkg/style
// [deck]: https://pkg.go.dev/github.com/deckforge/deckforge/pkg/deck
// [report]: https://pkg.go.dev/github.com/deckforge/deckforge/pkg/report
// [template]: https://pkg.go.dev/github.com/deckforge/deckforge/pkg/template
// [storage]: https://pkg.go.dev/github.com/deckforge/deckforge/pkg/storage
// [errors]: https://pkg.go.dev/github.com/deckforge/deckforge/pkg/errors
package pkg
