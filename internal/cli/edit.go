package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/deckforge/deckforge/pkg/deck"
	"github.com/deckforge/deckforge/pkg/errors"
	"github.com/deckforge/deckforge/pkg/opc"
	"github.com/deckforge/deckforge/pkg/style"
	"github.com/deckforge/deckforge/pkg/xmlnode"
)

// newNormalizeCmd replaces hard-coded colors with scheme slots.
func newNormalizeCmd() *cobra.Command {
	var (
		input  string
		slides string
		report string
	)
	cmd := &cobra.Command{
		Use:   "normalize <mapping.json> <output>",
		Short: "Replace hard-coded colors with theme scheme colors",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			mapping, err := loadJSONMap(args[0])
			if err != nil {
				return err
			}
			selection, err := slideSet(slides)
			if err != nil {
				return err
			}
			p, err := openOrNewPackage(cmd.Context(), input)
			if err != nil {
				return err
			}
			result, err := deck.NormalizeSlideColors(p, mapping, selection)
			if err != nil {
				return err
			}
			if err := savePackage(cmd.Context(), p, args[1]); err != nil {
				return err
			}

			printSuccess("Replacements: %d across %d slide(s)", result.Replacements, result.SlidesTouched)
			printFile(args[1])
			numbers := make([]int, 0, len(result.PerSlide))
			for num := range result.PerSlide {
				numbers = append(numbers, num)
			}
			for _, num := range sortedSlideNumbers(toSet(numbers)) {
				printDetail("slide %d: %d", num, result.PerSlide[num])
			}

			if report != "" {
				return writeDocument(result, report, formatJSON, true)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "input archive (default: fresh base template)")
	cmd.Flags().StringVar(&slides, "slides", "", "comma-separated slide numbers or ranges")
	cmd.Flags().StringVar(&report, "report", "", "write a JSON replacement report")
	return cmd
}

func toSet(numbers []int) map[int]bool {
	set := make(map[int]bool, len(numbers))
	for _, n := range numbers {
		set[n] = true
	}
	return set
}

// newSanitizeCmd patches slides so stripped formatting degrades cleanly.
func newSanitizeCmd() *cobra.Command {
	var slides string
	cmd := &cobra.Command{
		Use:   "sanitize <input> <output>",
		Short: "Insert missing clrMapOvr, lstStyle, and background noFill",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			selection, err := slideSet(slides)
			if err != nil {
				return err
			}
			p, err := openPackage(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			result, err := deck.SanitizeSlides(p, selection)
			if err != nil {
				return err
			}
			if err := savePackage(cmd.Context(), p, args[1]); err != nil {
				return err
			}
			printSuccess("Slides updated: %d (clrMapOvr=%d, lstStyle=%d, bgNoFill=%d)",
				result.SlidesUpdated, result.ClrMapAdded, result.LstStyleAdded, result.BgNoFillAdded)
			printFile(args[1])
			return nil
		},
	}
	cmd.Flags().StringVar(&slides, "slides", "", "comma-separated slide numbers or ranges")
	return cmd
}

// newSetMasterCmd edits a slide master's palette or fonts.
func newSetMasterCmd() *cobra.Command {
	var (
		input  string
		master string
		edits  partEditFlags
	)
	cmd := &cobra.Command{
		Use:   "set-master <output>",
		Short: "Update a slide master's palette or fonts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := edits.validate(); err != nil {
				return err
			}
			p, err := openOrNewPackage(cmd.Context(), input)
			if err != nil {
				return err
			}
			masterPart, err := deck.ResolveMasterPart(p, master)
			if err != nil {
				return err
			}
			if err := edits.apply(p, masterPart); err != nil {
				return err
			}
			if err := savePackage(cmd.Context(), p, args[0]); err != nil {
				return err
			}
			printSuccess("Updated %s", masterPart)
			printFile(args[0])
			return nil
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "input archive (default: fresh base template)")
	cmd.Flags().StringVar(&master, "master", "1", "master selector (index or part name)")
	edits.register(cmd)
	return cmd
}

// newSetLayoutCmd edits a layout's palette or fonts.
func newSetLayoutCmd() *cobra.Command {
	var (
		input  string
		layout string
		edits  partEditFlags
	)
	cmd := &cobra.Command{
		Use:   "set-layout <output>",
		Short: "Update a slide layout's palette or fonts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := edits.validate(); err != nil {
				return err
			}
			p, err := openOrNewPackage(cmd.Context(), input)
			if err != nil {
				return err
			}
			layoutPart, err := deck.ResolveLayoutPart(p, layout)
			if err != nil {
				return err
			}
			if err := edits.apply(p, layoutPart); err != nil {
				return err
			}
			if err := savePackage(cmd.Context(), p, args[0]); err != nil {
				return err
			}
			printSuccess("Updated %s", layoutPart)
			printFile(args[0])
			return nil
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "input archive (default: fresh base template)")
	cmd.Flags().StringVar(&layout, "layout", "", "layout selector (index, name, or part name)")
	_ = cmd.MarkFlagRequired("layout")
	edits.register(cmd)
	return cmd
}

// newSetSlideCmd edits slide-level palette/fonts and layout assignment.
func newSetSlideCmd() *cobra.Command {
	var (
		input  string
		slides string
		layout string
		edits  partEditFlags
	)
	cmd := &cobra.Command{
		Use:   "set-slide <output>",
		Short: "Update slide palettes and fonts, optionally reassigning layouts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := edits.validate(); err != nil {
				return err
			}
			if slides == "" {
				return fmt.Errorf("provide --slides")
			}
			selection, err := errors.ParseSlideNumbers(slides)
			if err != nil {
				return err
			}
			p, err := openOrNewPackage(cmd.Context(), input)
			if err != nil {
				return err
			}

			parts := deck.SlideParts(p)
			numbers := sortedSlideNumbers(selection)
			for _, num := range numbers {
				if num < 1 || num > len(parts) {
					return errors.New(errors.ErrCodeOutOfRange, "slide number %d out of range (1-%d)", num, len(parts))
				}
			}
			for _, num := range numbers {
				if err := edits.apply(p, parts[num-1]); err != nil {
					return err
				}
			}
			if layout != "" {
				layoutPart, err := deck.ResolveLayoutPart(p, layout)
				if err != nil {
					return err
				}
				if err := deck.AssignSlidesToLayout(p, numbers, layoutPart); err != nil {
					return err
				}
			}
			if err := savePackage(cmd.Context(), p, args[0]); err != nil {
				return err
			}
			printSuccess("Updated %d slide(s)", len(numbers))
			printFile(args[0])
			return nil
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "input archive (default: fresh base template)")
	cmd.Flags().StringVar(&slides, "slides", "", "comma-separated slide numbers or ranges")
	cmd.Flags().StringVar(&layout, "layout", "", "layout selector to assign the slides to")
	edits.register(cmd)
	return cmd
}

// newSetTextStylesCmd sets title/body sizes and weights on layouts or
// masters, optionally detecting values from an existing slide.
func newSetTextStylesCmd() *cobra.Command {
	var (
		input        string
		layout       string
		master       string
		fromSlide    int
		titleSize    float64
		bodySize     float64
		titleBold    bool
		titleRegular bool
		bodyBold     bool
		bodyRegular  bool
	)
	cmd := &cobra.Command{
		Use:   "set-text-styles <output>",
		Short: "Set title/body text sizes and bold styles on layouts or masters",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if layout == "" && master == "" {
				return fmt.Errorf("provide --layout and/or --master")
			}
			if titleBold && titleRegular {
				return fmt.Errorf("use only one of --title-bold or --title-regular")
			}
			if bodyBold && bodyRegular {
				return fmt.Errorf("use only one of --body-bold or --body-regular")
			}

			update := style.TextStyleUpdate{
				TitleBold: boldFlag(titleBold, titleRegular),
				BodyBold:  boldFlag(bodyBold, bodyRegular),
			}
			if cmd.Flags().Changed("title-size") {
				update.TitleSizePt = &titleSize
			}
			if cmd.Flags().Changed("body-size") {
				update.BodySizePt = &bodySize
			}

			p, err := openOrNewPackage(cmd.Context(), input)
			if err != nil {
				return err
			}
			if fromSlide > 0 {
				if err := fillStylesFromSlide(p, fromSlide, &update); err != nil {
					return err
				}
			}

			if layout != "" {
				layoutPart, err := deck.ResolveLayoutPart(p, layout)
				if err != nil {
					return err
				}
				if _, err := deck.SetLayoutTextStyles(p, layoutPart, update); err != nil {
					return err
				}
			}
			if master != "" {
				masterPart, err := deck.ResolveMasterPart(p, master)
				if err != nil {
					return err
				}
				if _, err := deck.SetMasterTextStyles(p, masterPart, update); err != nil {
					return err
				}
			}
			if err := savePackage(cmd.Context(), p, args[0]); err != nil {
				return err
			}
			printSuccess("Text styles updated")
			printFile(args[0])
			return nil
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "input archive (default: fresh base template)")
	cmd.Flags().StringVar(&layout, "layout", "", "layout selector")
	cmd.Flags().StringVar(&master, "master", "", "master selector")
	cmd.Flags().IntVar(&fromSlide, "from-slide", 0, "detect missing values from this slide's placeholders")
	cmd.Flags().Float64Var(&titleSize, "title-size", 0, "title size in points")
	cmd.Flags().Float64Var(&bodySize, "body-size", 0, "body size in points")
	cmd.Flags().BoolVar(&titleBold, "title-bold", false, "set titles bold")
	cmd.Flags().BoolVar(&titleRegular, "title-regular", false, "set titles regular weight")
	cmd.Flags().BoolVar(&bodyBold, "body-bold", false, "set body text bold")
	cmd.Flags().BoolVar(&bodyRegular, "body-regular", false, "set body text regular weight")
	return cmd
}

func boldFlag(bold, regular bool) *bool {
	if bold {
		v := true
		return &v
	}
	if regular {
		v := false
		return &v
	}
	return nil
}

// fillStylesFromSlide fills unset update fields from the placeholder
// styles detected on the given slide.
func fillStylesFromSlide(p *opc.Package, slideNumber int, update *style.TextStyleUpdate) error {
	parts := deck.SlideParts(p)
	if slideNumber < 1 || slideNumber > len(parts) {
		return errors.New(errors.ErrCodeOutOfRange, "slide number %d out of range (1-%d)", slideNumber, len(parts))
	}
	data, err := p.Read(parts[slideNumber-1])
	if err != nil {
		return err
	}
	root, err := xmlnode.Parse(data)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPart, err, "parse %s", parts[slideNumber-1])
	}

	detected := style.DetectPlaceholderStyles(root)
	if title, ok := detected["title"]; ok {
		if update.TitleSizePt == nil && title.SizePt != nil {
			update.TitleSizePt = title.SizePt
		}
		if update.TitleBold == nil && title.Bold != nil {
			update.TitleBold = title.Bold
		}
	}
	if body, ok := detected["body"]; ok {
		if update.BodySizePt == nil && body.SizePt != nil {
			update.BodySizePt = body.SizePt
		}
		if update.BodyBold == nil && body.Bold != nil {
			update.BodyBold = body.Bold
		}
	}
	return nil
}

// newSetLayoutBgCmd sets a layout's background image.
func newSetLayoutBgCmd() *cobra.Command {
	var (
		input  string
		layout string
		image  string
	)
	cmd := &cobra.Command{
		Use:   "set-layout-bg <output>",
		Short: "Set a layout background image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, ext, err := readImageFile(image)
			if err != nil {
				return err
			}
			p, err := openOrNewPackage(cmd.Context(), input)
			if err != nil {
				return err
			}
			layoutPart, err := deck.ResolveLayoutPart(p, layout)
			if err != nil {
				return err
			}
			if err := deck.SetLayoutBackgroundImage(p, layoutPart, data, ext); err != nil {
				return err
			}
			if err := savePackage(cmd.Context(), p, args[0]); err != nil {
				return err
			}
			printSuccess("Set background on %s", layoutPart)
			printFile(args[0])
			return nil
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "input archive (default: fresh base template)")
	cmd.Flags().StringVar(&layout, "layout", "", "layout selector")
	cmd.Flags().StringVar(&image, "image", "", "image file (png, jpg, gif, bmp)")
	_ = cmd.MarkFlagRequired("layout")
	_ = cmd.MarkFlagRequired("image")
	return cmd
}

// newSetLayoutImageCmd adds a positioned image shape to a layout.
func newSetLayoutImageCmd() *cobra.Command {
	var (
		input      string
		layout     string
		image      string
		x, y, w, h float64
		units      string
		name       string
	)
	cmd := &cobra.Command{
		Use:   "set-layout-image <output>",
		Short: "Add an image layer to a layout",
		Long:  "Add an image layer to a layout. Coordinates are in inches unless --units emu.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, ext, err := readImageFile(image)
			if err != nil {
				return err
			}
			p, err := openOrNewPackage(cmd.Context(), input)
			if err != nil {
				return err
			}
			layoutPart, err := deck.ResolveLayoutPart(p, layout)
			if err != nil {
				return err
			}

			slideCx, slideCy := deck.SlideSize(p)
			xEmu, yEmu, cx, cy := resolveImageBox(cmd, units, x, y, w, h, slideCx, slideCy)
			if err := deck.AddLayoutImageShape(p, layoutPart, data, ext, xEmu, yEmu, cx, cy, name); err != nil {
				return err
			}
			if err := savePackage(cmd.Context(), p, args[0]); err != nil {
				return err
			}
			printSuccess("Added image to %s", layoutPart)
			printFile(args[0])
			return nil
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "input archive (default: fresh base template)")
	cmd.Flags().StringVar(&layout, "layout", "", "layout selector")
	cmd.Flags().StringVar(&image, "image", "", "image file (png, jpg, gif, bmp)")
	cmd.Flags().Float64Var(&x, "x", 0, "left offset")
	cmd.Flags().Float64Var(&y, "y", 0, "top offset")
	cmd.Flags().Float64Var(&w, "w", 0, "width (default: slide width)")
	cmd.Flags().Float64Var(&h, "h", 0, "height (default: slide height)")
	cmd.Flags().StringVar(&units, "units", "in", "coordinate units: in, emu")
	cmd.Flags().StringVar(&name, "name", "", "shape name")
	_ = cmd.MarkFlagRequired("layout")
	_ = cmd.MarkFlagRequired("image")
	return cmd
}

const emuPerInch = 914400

// resolveImageBox converts the flag values to EMU, defaulting width and
// height to the slide size.
func resolveImageBox(cmd *cobra.Command, units string, x, y, w, h float64, slideCx, slideCy int64) (int64, int64, int64, int64) {
	wSet := cmd.Flags().Changed("w")
	hSet := cmd.Flags().Changed("h")

	if units == "emu" {
		cx, cy := slideCx, slideCy
		if wSet {
			cx = int64(w)
		}
		if hSet {
			cy = int64(h)
		}
		return int64(x), int64(y), cx, cy
	}

	cx, cy := slideCx, slideCy
	if wSet {
		cx = int64(w * emuPerInch)
	}
	if hSet {
		cy = int64(h * emuPerInch)
	}
	return int64(x * emuPerInch), int64(y * emuPerInch), cx, cy
}

// readImageFile loads a local image and derives the extension from the
// file name.
func readImageFile(path string) ([]byte, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", errors.Wrap(errors.ErrCodeInvalidInput, err, "reading image %s", path)
	}
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return nil, "", errors.New(errors.ErrCodeInvalidInput, "image %s has no file extension", path)
	}
	return data, ext, nil
}
