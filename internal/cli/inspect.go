package cli

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/deckforge/deckforge/pkg/report"
)

// newValidateCmd validates the archive structure.
func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <path>",
		Short: "Validate template structure",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tpl, err := openTemplate(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			vr, err := tpl.Validate()
			if err != nil {
				return err
			}
			if vr.OK() {
				printSuccess("Validation OK")
				for _, w := range vr.Warnings {
					printWarning("%s", w)
				}
				return nil
			}
			printError("Validation failed")
			for _, e := range vr.Errors {
				printDetail("%s", e)
			}
			for _, w := range vr.Warnings {
				printDetail("warning: %s", w)
			}
			return fmt.Errorf("validation failed with %d error(s)", len(vr.Errors))
		},
	}
}

// newAuditCmd runs the color and style census.
func newAuditCmd() *cobra.Command {
	var (
		slides  string
		groupBy string
		output  string
		format  string
		pretty  bool
		summary bool
		details bool
	)
	cmd := &cobra.Command{
		Use:   "audit <path>",
		Short: "Audit slides for hard-coded colors and styles",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			selection, err := slideSet(slides)
			if err != nil {
				return err
			}
			p, err := openPackage(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			rep, err := report.Audit(p, selection, parseGroupByFlag(groupBy))
			if err != nil {
				return err
			}

			if output != "" {
				if err := writeDocument(rep, output, format, pretty); err != nil {
					return err
				}
			}
			if output == "" && !summary {
				if err := writeDocument(rep, "", format, pretty); err != nil {
					return err
				}
			}
			if summary {
				printAuditSummary(rep, details)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&slides, "slides", "", "comma-separated slide numbers or ranges, e.g. 1,3-5")
	cmd.Flags().StringVar(&groupBy, "group-by", "", "grouping keys: p (palette), b (background), l (layout); default p,l")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the report to a file")
	cmd.Flags().StringVar(&format, "format", formatJSON, "output format: json, yaml")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "pretty-print JSON")
	cmd.Flags().BoolVar(&summary, "summary", false, "print a human-readable summary instead of the report")
	cmd.Flags().BoolVar(&details, "details", false, "with --summary, also print per-slide details")
	return cmd
}

// parseGroupByFlag splits "p,l" or compact "pl" into tokens. Validation
// happens in the audit itself.
func parseGroupByFlag(value string) []string {
	if value == "" {
		return nil
	}
	var tokens []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			tokens = append(tokens, item)
		}
	}
	if len(tokens) == 1 && len(tokens[0]) > 1 {
		compact := tokens[0]
		tokens = nil
		for _, r := range compact {
			tokens = append(tokens, string(r))
		}
	}
	return tokens
}

func printAuditSummary(rep *report.AuditReport, details bool) {
	fmt.Println(StyleTitle.Render("Legend"))
	printDetail("srgbClr: hard-coded hex color")
	printDetail("schemeClr: theme-based color slot (accent1, dk1, etc.)")
	printDetail("sysClr: system color (Office-defined)")
	printDetail("clrMapOvr: slide overrides the master color mapping")
	printDetail("custom_bg: slide has a background override")
	printDetail("images: count of pictures or bitmap fills on the slide")
	fmt.Println()

	if rep.Theme != nil {
		fmt.Println(StyleTitle.Render("Theme"))
		printKeyValue("part", rep.Theme.Part)
		printKeyValue("theme name", orUnset(rep.Theme.ThemeName))
		printKeyValue("color scheme", orUnset(rep.Theme.ColorSchemeName))
		printKeyValue("font scheme", orUnset(rep.Theme.FontSchemeName))
		fmt.Println()
	}

	printInfo("Slides audited: %d/%d", rep.SlidesAudited, rep.SlidesTotal)
	printPartAudits("Masters", rep.Masters)
	printPartAudits("Layouts", rep.Layouts)

	if len(rep.Groups) > 0 {
		fmt.Println(StyleTitle.Render(fmt.Sprintf("Groups (group_by=%s)", strings.Join(rep.GroupBy, ","))))
		for _, group := range rep.Groups {
			printInfo("slides: %s", formatSlideRanges(group.Slides))
			if group.LayoutPart != "" {
				printDetail("layout: %s", group.LayoutPart)
			}
			if group.MasterPart != "" {
				printDetail("master: %s", group.MasterPart)
			}
			if group.Background != "" {
				printDetail("background: %s", group.Background)
			}
			if palette := formatPalette(group.Palette); palette != "" {
				printDetail("palette: %s", palette)
			}
			printDetail("hardcoded_total=%d (text=%d, shape=%d)",
				group.HardcodedTotal, group.TextSRGBTotal, group.ShapeSRGBTotal)
			if group.ClrMapOvrSlides > 0 {
				printDetail("clrMapOvr slides: %d", group.ClrMapOvrSlides)
			}
			if group.CustomBgSlides > 0 {
				printDetail("custom_bg slides: %d", group.CustomBgSlides)
			}
			if group.ImageSlides > 0 {
				printDetail("image slides: %d", group.ImageSlides)
			}
		}
		printGroupRecommendations(rep.Groups)
	}

	if details {
		printSlideDetails(rep)
	}
}

func printPartAudits(title string, parts map[string]report.PartAudit) {
	if len(parts) == 0 {
		return
	}
	names := make([]string, 0, len(parts))
	for part := range parts {
		names = append(names, part)
	}
	sort.Strings(names)

	fmt.Println(StyleTitle.Render(title))
	for _, part := range names {
		stats := parts[part]
		printDetail("%s: srgb=%d, scheme=%d, fills=%d/%d/%d, pics=%d",
			part, stats.ColorCounts.SRGB, stats.ColorCounts.Scheme,
			stats.Fills.Solid, stats.Fills.Grad, stats.Fills.Blip, stats.Pictures)
	}
}

func printSlideDetails(rep *report.AuditReport) {
	numbers := make([]int, 0, len(rep.PerSlide))
	for num := range rep.PerSlide {
		numbers = append(numbers, num)
	}
	sort.Ints(numbers)

	for _, num := range numbers {
		data := rep.PerSlide[num]
		var flags []string
		hardcoded := data.ColorCounts.SRGB + data.ColorCounts.SysClr
		if hardcoded > 0 {
			var parts []string
			if data.TextColors.SRGB > 0 {
				parts = append(parts, fmt.Sprintf("text=%d", data.TextColors.SRGB))
			}
			if data.ShapeColors.SRGB > 0 {
				parts = append(parts, fmt.Sprintf("shape=%d", data.ShapeColors.SRGB))
			}
			if len(parts) > 0 {
				flags = append(flags, fmt.Sprintf("hardcoded=%d (%s)", hardcoded, strings.Join(parts, ", ")))
			} else {
				flags = append(flags, fmt.Sprintf("hardcoded=%d", hardcoded))
			}
		}
		if data.HasClrMapOvr {
			flags = append(flags, "clrMapOvr")
		}
		if data.Pictures > 0 || data.Fills.Blip > 0 {
			flags = append(flags, fmt.Sprintf("images=%d", data.Pictures))
		}
		bg := data.Background
		if bg.BgBlip || bg.BgGrad || bg.BgSolid || bg.BgRef {
			flags = append(flags, "custom_bg")
		}

		summary := "no overrides detected"
		if len(flags) > 0 {
			summary = strings.Join(flags, ", ")
		}
		printInfo("slide %d: %s", num, summary)
		if data.SlidePart != "" {
			printDetail("part: %s", data.SlidePart)
		}
		if data.LayoutPart != "" {
			printDetail("layout: %s", data.LayoutPart)
		}
		if data.MasterPart != "" {
			printDetail("master: %s", data.MasterPart)
		}
		if top := formatTopColors(data.TopSRGB); top != "" {
			printDetail("top colors: %s", top)
		}
		if top := formatTopSizes(data.TextStyles.TopSizes); top != "" {
			printDetail("top sizes: %s", top)
		}
	}
}

// printGroupRecommendations flags layouts serving slide groups with
// different palettes, the usual sign that a layout should be split.
func printGroupRecommendations(groups []*report.SlideGroup) {
	byLayout := make(map[string][]*report.SlideGroup)
	var order []string
	for _, group := range groups {
		layout := group.LayoutPart
		if layout == "" {
			layout = "(none)"
		}
		if _, seen := byLayout[layout]; !seen {
			order = append(order, layout)
		}
		byLayout[layout] = append(byLayout[layout], group)
	}

	printed := false
	for _, layout := range order {
		items := byLayout[layout]
		if len(items) < 2 {
			continue
		}
		if !printed {
			fmt.Println(StyleTitle.Render("Recommendations"))
			printed = true
		}
		printWarning("layout %s has %d palettes; consider splitting into separate layouts", layout, len(items))
		for _, group := range items {
			palette := formatPalette(group.Palette)
			if palette == "" {
				palette = "(no palette detected)"
			}
			printDetail("slides %s: %s", formatSlideRanges(group.Slides), palette)
		}
	}
}

func formatTopColors(entries []report.ColorFrequency) string {
	var parts []string
	for _, entry := range entries {
		parts = append(parts, fmt.Sprintf("#%s(%d)", entry.Value, entry.Count))
	}
	return strings.Join(parts, ", ")
}

func formatTopSizes(entries []report.SizeFrequency) string {
	var parts []string
	for _, entry := range entries {
		parts = append(parts, fmt.Sprintf("%gpt(%d)", entry.Pt, entry.Count))
	}
	return strings.Join(parts, ", ")
}

func formatPalette(values []string) string {
	var parts []string
	for _, value := range values {
		parts = append(parts, "#"+value)
	}
	return strings.Join(parts, ", ")
}

func orUnset(value string) string {
	if value == "" {
		return "(unset)"
	}
	return value
}

// newDumpTreeCmd dumps the slide/layout/master shape trees.
func newDumpTreeCmd() *cobra.Command {
	var (
		slides        string
		includeLayout bool
		includeMaster bool
		includeText   bool
		grouped       bool
		summary       bool
		localOnly     bool
		output        string
		format        string
		pretty        bool
	)
	cmd := &cobra.Command{
		Use:   "dump-tree <path>",
		Short: "Dump slide shape trees with fills, colors, and text styles",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			selection, err := slideSet(slides)
			if err != nil {
				return err
			}
			if grouped && !includeLayout && !includeMaster {
				includeLayout = true
				includeMaster = true
			}

			p, err := openPackage(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			dump, err := report.DumpTree(p, selection, report.DumpOptions{
				IncludeLayout: includeLayout,
				IncludeMaster: includeMaster,
				IncludeText:   includeText,
				Grouped:       grouped,
			})
			if err != nil {
				return err
			}

			if summary {
				lines := strings.Join(report.Summarize(dump, localOnly), "\n")
				if output != "" {
					if err := os.WriteFile(output, []byte(lines+"\n"), 0o644); err != nil {
						return err
					}
					printSuccess("Wrote %s", output)
					return nil
				}
				fmt.Println(lines)
				return nil
			}
			if format == formatTree {
				return writeRaw(output, []byte(renderDumpTree(dump)+"\n"))
			}
			return writeDocument(dump, output, format, pretty)
		},
	}
	cmd.Flags().StringVar(&slides, "slides", "", "comma-separated slide numbers or ranges")
	cmd.Flags().BoolVar(&includeLayout, "layout", false, "include each slide's layout tree")
	cmd.Flags().BoolVar(&includeMaster, "master", false, "include each slide's master tree")
	cmd.Flags().BoolVar(&includeText, "text", false, "include text content")
	cmd.Flags().BoolVar(&grouped, "grouped", false, "nest layout and master trees under each slide")
	cmd.Flags().BoolVar(&summary, "summary", false, "print per-layer summary lines instead of JSON")
	cmd.Flags().BoolVar(&localOnly, "local-only", false, "with --summary, only slides with local hard-coded fills")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the document to a file")
	cmd.Flags().StringVar(&format, "format", formatJSON, "output format: json, yaml, tree")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "pretty-print JSON")
	return cmd
}

// newGraphCmd renders the package relationship graph.
func newGraphCmd() *cobra.Command {
	var (
		format string
		output string
		pretty bool
	)
	cmd := &cobra.Command{
		Use:   "graph <path>",
		Short: "Export the part relationship graph as JSON, DOT, or SVG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := openPackage(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			graph, err := report.BuildGraph(p)
			if err != nil {
				return err
			}

			switch format {
			case "", formatJSON, formatYAML:
				return writeDocument(graph, output, format, pretty)
			case "dot":
				return writeRaw(output, []byte(report.ToDOT(graph)))
			case "svg":
				svg, err := report.RenderSVG(report.ToDOT(graph))
				if err != nil {
					return err
				}
				return writeRaw(output, svg)
			default:
				return fmt.Errorf("unknown graph format %q (json, yaml, dot, svg)", format)
			}
		},
	}
	cmd.Flags().StringVar(&format, "format", "dot", "output format: json, yaml, dot, svg")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the graph to a file")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "pretty-print JSON")
	return cmd
}

func writeRaw(output string, data []byte) error {
	if output == "" {
		fmt.Println(string(data))
		return nil
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return err
	}
	printSuccess("Wrote %s", output)
	return nil
}
