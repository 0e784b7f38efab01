package cli

import (
	"sort"

	"github.com/spf13/cobra"

	"github.com/deckforge/deckforge/pkg/deck"
	"github.com/deckforge/deckforge/pkg/report"
)

// newMakeLayoutCmd creates a layout from an existing slide.
func newMakeLayoutCmd() *cobra.Command {
	var (
		input        string
		fromSlide    int
		name         string
		masterIndex  int
		assignSlides string
	)
	cmd := &cobra.Command{
		Use:   "make-layout <output>",
		Short: "Create a slide layout from a slide",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := openOrNewPackage(cmd.Context(), input)
			if err != nil {
				return err
			}
			layoutPart, err := deck.MakeLayoutFromSlide(p, fromSlide, name, masterIndex)
			if err != nil {
				return err
			}
			if assignSlides != "" {
				selection, err := slideSet(assignSlides)
				if err != nil {
					return err
				}
				if err := deck.AssignSlidesToLayout(p, sortedSlideNumbers(selection), layoutPart); err != nil {
					return err
				}
			}
			if err := savePackage(cmd.Context(), p, args[0]); err != nil {
				return err
			}
			printSuccess("Layout created: %s", layoutPart)
			printFile(args[0])
			return nil
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "input archive (default: fresh base template)")
	cmd.Flags().IntVar(&fromSlide, "from-slide", 0, "slide number to copy the layout from")
	cmd.Flags().StringVar(&name, "name", "", "layout display name")
	cmd.Flags().IntVar(&masterIndex, "master", 1, "master index to attach the layout to")
	cmd.Flags().StringVar(&assignSlides, "assign-slides", "", "slides to reassign to the new layout")
	_ = cmd.MarkFlagRequired("from-slide")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

// newAutoLayoutCmd groups slides by formatting and generates one layout
// per group.
func newAutoLayoutCmd() *cobra.Command {
	var (
		groupBy     string
		prefix      string
		masterIndex int
		noAssign    bool
		stripColors bool
		stripFonts  bool
		palette     string
	)
	cmd := &cobra.Command{
		Use:   "auto-layout <input> <output>",
		Short: "Auto-generate layouts by grouping slides",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := openPackage(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			rep, err := report.Audit(p, nil, parseGroupByFlag(groupBy))
			if err != nil {
				return err
			}

			var mapping map[string]string
			if palette != "" {
				if mapping, err = loadJSONMap(palette); err != nil {
					return err
				}
			}
			result, err := deck.AutoLayout(p, report.GroupNumbers(rep.Groups), deck.AutoLayoutOptions{
				Prefix:      prefix,
				MasterIndex: masterIndex,
				Assign:      !noAssign,
				StripColors: stripColors,
				StripFonts:  stripFonts,
				Palette:     mapping,
			})
			if err != nil {
				return err
			}
			if err := savePackage(cmd.Context(), p, args[1]); err != nil {
				return err
			}
			printSuccess("Layouts created: %d", len(result.CreatedLayouts))
			for _, layout := range result.CreatedLayouts {
				printDetail("%s", layout)
			}
			printFile(args[1])
			return nil
		},
	}
	cmd.Flags().StringVar(&groupBy, "group-by", "", "grouping keys: p (palette), b (background), l (layout); default p,l")
	cmd.Flags().StringVar(&prefix, "prefix", "Auto Layout", "name prefix for generated layouts")
	cmd.Flags().IntVar(&masterIndex, "master", 1, "master index to attach layouts to")
	cmd.Flags().BoolVar(&noAssign, "no-assign", false, "do not reassign slides to the generated layouts")
	cmd.Flags().BoolVar(&stripColors, "strip-colors", false, "strip hard-coded colors from grouped slides")
	cmd.Flags().BoolVar(&stripFonts, "strip-fonts", false, "strip font overrides from grouped slides")
	cmd.Flags().StringVar(&palette, "palette", "", "palette JSON to apply to each generated layout")
	return cmd
}

// newPruneLayoutsCmd removes layouts no slide references.
func newPruneLayoutsCmd() *cobra.Command {
	var keep []string
	cmd := &cobra.Command{
		Use:   "prune-layouts <input> <output>",
		Short: "Remove unused slide layouts",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := openPackage(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			keepParts := make(map[string]bool, len(keep))
			for _, selector := range keep {
				part, err := deck.ResolveLayoutPart(p, selector)
				if err != nil {
					return err
				}
				keepParts[part] = true
			}

			result, err := deck.PruneUnusedLayouts(p, keepParts)
			if err != nil {
				return err
			}
			if err := savePackage(cmd.Context(), p, args[1]); err != nil {
				return err
			}
			printSuccess("Layouts removed: %d", len(result.RemovedLayouts))
			for _, layout := range result.RemovedLayouts {
				printDetail("%s", layout)
			}
			printFile(args[1])
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&keep, "keep", nil, "layout selector to keep even when unused (repeatable)")
	return cmd
}

// newReindexLayoutsCmd renumbers layout parts into a continuous sequence.
func newReindexLayoutsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reindex-layouts <input> <output>",
		Short: "Renumber layouts and update slide and master references",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := openPackage(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			result, err := deck.ReindexLayouts(p)
			if err != nil {
				return err
			}
			if err := savePackage(cmd.Context(), p, args[1]); err != nil {
				return err
			}
			printSuccess("Layouts remapped: %d", len(result.LayoutMapping))

			olds := make([]string, 0, len(result.LayoutMapping))
			for old := range result.LayoutMapping {
				olds = append(olds, old)
			}
			sort.Strings(olds)
			for _, old := range olds {
				if renamed := result.LayoutMapping[old]; renamed != old {
					printDetail("%s %s %s", old, iconArrow, renamed)
				}
			}
			printFile(args[1])
			return nil
		},
	}
}
