package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/deckforge/deckforge/pkg/theme"
)

// newInfoCmd shows theme colors, fonts, and the validation report.
func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <path>",
		Short: "Show theme info and validation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tpl, err := openTemplate(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			th, err := tpl.Theme()
			if err != nil {
				return err
			}

			fmt.Println(StyleTitle.Render("Theme colors"))
			colors := th.Colors()
			for _, slot := range theme.ColorSlots {
				printKeyValue(slot, colors[slot])
			}

			fmt.Println()
			fmt.Println(StyleTitle.Render("Theme fonts"))
			if major := th.MajorFont(); major != nil {
				printKeyValue("major", major.Latin)
			}
			if minor := th.MinorFont(); minor != nil {
				printKeyValue("minor", minor.Latin)
			}

			report, err := tpl.Validate()
			if err != nil {
				return err
			}
			fmt.Println()
			if report.OK() {
				printSuccess("Validation OK")
			} else {
				printError("Validation failed")
			}
			for _, e := range report.Errors {
				printDetail("error: %s", e)
			}
			for _, w := range report.Warnings {
				printDetail("warning: %s", w)
			}
			if !report.OK() {
				return fmt.Errorf("validation failed with %d error(s)", len(report.Errors))
			}
			return nil
		},
	}
}

// newNewCmd writes a fresh base template.
func newNewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "new <output>",
		Short: "Create a minimal valid template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tpl, err := openTemplate(cmd.Context(), "")
			if err != nil {
				return err
			}
			if err := saveTemplate(cmd.Context(), tpl, args[0]); err != nil {
				return err
			}
			printSuccess("Wrote template")
			printFile(args[0])
			return nil
		},
	}
}

// newDumpThemeCmd dumps theme colors and fonts as a document.
func newDumpThemeCmd() *cobra.Command {
	var (
		output string
		format string
		pretty bool
	)
	cmd := &cobra.Command{
		Use:   "dump-theme <path>",
		Short: "Dump theme colors and fonts as JSON or YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tpl, err := openTemplate(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			th, err := tpl.Theme()
			if err != nil {
				return err
			}
			payload := th.Colors()
			if major := th.MajorFont(); major != nil {
				payload["majorFont"] = major.Latin
			}
			if minor := th.MinorFont(); minor != nil {
				payload["minorFont"] = minor.Latin
			}
			return writeDocument(payload, output, format, pretty)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the document to a file instead of stdout")
	cmd.Flags().StringVar(&format, "format", formatJSON, "output format: json, yaml")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "pretty-print JSON")
	return cmd
}

// colorSlotFlags covers every settable scheme slot, including the
// friendly aliases (dark1 for dk1, etc.).
var colorSlotFlags = []string{
	"dark1", "light1", "dark2", "light2",
	"accent1", "accent2", "accent3", "accent4", "accent5", "accent6",
	"hlink", "folHlink",
}

// newSetColorsCmd sets theme color slots from flags.
func newSetColorsCmd() *cobra.Command {
	var input string
	values := make(map[string]*string, len(colorSlotFlags))

	cmd := &cobra.Command{
		Use:   "set-colors <output>",
		Short: "Set theme colors",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tpl, err := openTemplate(cmd.Context(), input)
			if err != nil {
				return err
			}
			th, err := tpl.Theme()
			if err != nil {
				return err
			}

			updates := 0
			for _, name := range colorSlotFlags {
				value := *values[name]
				if value == "" {
					continue
				}
				if err := th.SetColor(theme.CanonicalSlot(name), value); err != nil {
					return err
				}
				updates++
			}
			if updates == 0 {
				return fmt.Errorf("no colors specified, use --accent1, --dark1, etc")
			}

			if err := saveTemplate(cmd.Context(), tpl, args[0]); err != nil {
				return err
			}
			printSuccess("Set %d color(s)", updates)
			printFile(args[0])
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "input template (default: fresh base template)")
	for _, name := range colorSlotFlags {
		values[name] = cmd.Flags().String(name, "", "hex color for "+theme.CanonicalSlot(name))
	}
	return cmd
}

// newSetFontsCmd sets the major/minor theme fonts.
func newSetFontsCmd() *cobra.Command {
	var input, major, minor string

	cmd := &cobra.Command{
		Use:   "set-fonts <output>",
		Short: "Set theme fonts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if major == "" && minor == "" {
				return fmt.Errorf("no fonts specified, use --major and/or --minor")
			}
			tpl, err := openTemplate(cmd.Context(), input)
			if err != nil {
				return err
			}
			th, err := tpl.Theme()
			if err != nil {
				return err
			}
			if major != "" {
				th.SetMajorFont(theme.FontSpec{Latin: major})
			}
			if minor != "" {
				th.SetMinorFont(theme.FontSpec{Latin: minor})
			}
			if err := saveTemplate(cmd.Context(), tpl, args[0]); err != nil {
				return err
			}
			printSuccess("Set fonts")
			printFile(args[0])
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "input template (default: fresh base template)")
	cmd.Flags().StringVar(&major, "major", "", "major font (Latin)")
	cmd.Flags().StringVar(&minor, "minor", "", "minor font (Latin)")
	return cmd
}

// newSetThemeNamesCmd sets the names PowerPoint shows in its theme UI.
func newSetThemeNamesCmd() *cobra.Command {
	var input, themeName, colorsName, fontsName string

	cmd := &cobra.Command{
		Use:   "set-theme-names <output>",
		Short: "Set theme, color scheme, and font scheme names",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if themeName == "" && colorsName == "" && fontsName == "" {
				return fmt.Errorf("no names specified, use --theme, --colors, and/or --fonts")
			}
			tpl, err := openTemplate(cmd.Context(), input)
			if err != nil {
				return err
			}
			th, err := tpl.Theme()
			if err != nil {
				return err
			}
			if themeName != "" {
				th.SetName(themeName)
			}
			if colorsName != "" {
				th.SetColorSchemeName(colorsName)
			}
			if fontsName != "" {
				th.SetFontSchemeName(fontsName)
			}
			if err := saveTemplate(cmd.Context(), tpl, args[0]); err != nil {
				return err
			}
			printSuccess("Set names")
			printFile(args[0])
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "input template (default: fresh base template)")
	cmd.Flags().StringVar(&themeName, "theme", "", "theme name (slide master UI)")
	cmd.Flags().StringVar(&colorsName, "colors", "", "color scheme name")
	cmd.Flags().StringVar(&fontsName, "fonts", "", "font scheme name")
	return cmd
}

// newApplyPaletteCmd applies a palette JSON file (slots plus optional
// majorFont/minorFont) to a template in one step.
func newApplyPaletteCmd() *cobra.Command {
	var input string

	cmd := &cobra.Command{
		Use:   "apply-palette <palette.json> <output>",
		Short: "Apply a palette JSON to a template",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			palette, err := loadJSONMap(args[0])
			if err != nil {
				return err
			}
			tpl, err := openTemplate(cmd.Context(), input)
			if err != nil {
				return err
			}
			th, err := tpl.Theme()
			if err != nil {
				return err
			}

			keys := make([]string, 0, len(palette))
			for key := range palette {
				keys = append(keys, key)
			}
			sort.Strings(keys)
			for _, key := range keys {
				switch key {
				case "majorFont":
					th.SetMajorFont(theme.FontSpec{Latin: palette[key]})
				case "minorFont":
					th.SetMinorFont(theme.FontSpec{Latin: palette[key]})
				default:
					slot := theme.CanonicalSlot(key)
					if slot == "" {
						return fmt.Errorf("unknown palette key %q", key)
					}
					if err := th.SetColor(slot, palette[key]); err != nil {
						return err
					}
				}
			}

			if err := saveTemplate(cmd.Context(), tpl, args[1]); err != nil {
				return err
			}
			printSuccess("Applied palette")
			printFile(args[1])
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "input template (default: fresh base template)")
	return cmd
}

// examplePalette is the starter palette emitted by palette-template.
var examplePalette = map[string]string{
	"dark1":     "#FFFFFF",
	"light1":    "#0B0B0E",
	"dark2":     "#2C2C34",
	"light2":    "#E9ECF2",
	"accent1":   "#1F6BFF",
	"accent2":   "#E0328C",
	"accent3":   "#F6A225",
	"accent4":   "#6B3AF6",
	"accent5":   "#38D3FF",
	"accent6":   "#FF4D6D",
	"hlink":     "#1F6BFF",
	"folHlink":  "#C0186B",
	"majorFont": "Aptos Display",
	"minorFont": "Aptos",
}

// newPaletteTemplateCmd emits an example palette JSON to copy from.
func newPaletteTemplateCmd() *cobra.Command {
	var (
		output string
		format string
		pretty bool
	)
	cmd := &cobra.Command{
		Use:   "palette-template",
		Short: "Print an example palette JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeDocument(examplePalette, output, format, pretty)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the document to a file instead of stdout")
	cmd.Flags().StringVar(&format, "format", formatJSON, "output format: json, yaml")
	cmd.Flags().BoolVar(&pretty, "pretty", true, "pretty-print JSON")
	return cmd
}
