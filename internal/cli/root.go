package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	version = "dev" // semantic version (e.g., "v1.2.3")
	commit  string  // git commit SHA
	date    string  // build timestamp
)

// SetVersion sets the version information displayed by --version.
// This is typically called by the main package during initialization with
// values injected via ldflags at build time.
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// Execute runs the deckforge CLI and returns an error if any command fails.
// This is the main entry point for the CLI application.
//
// The function sets up the root command with all subcommands, configures
// logging based on the --verbose flag, loads the TOML config, and executes
// the command tree. The logger and config are attached to the context and
// accessible to all commands via loggerFromContext and configFromContext.
func Execute() error {
	var (
		verbose    bool
		configPath string
	)

	root := &cobra.Command{
		Use:          appName,
		Short:        "Deckforge inspects and edits PowerPoint template archives",
		Long:         `Deckforge is a CLI tool for working with PowerPoint template archives: editing theme colors and fonts, auditing slides for hard-coded formatting, generating slide layouts, and validating package structure. Paths accept storage URIs (file, mem, redis, mongodb, s3) in addition to local files.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := charmlog.InfoLevel
			if verbose {
				level = charmlog.DebugLevel
			}
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			ctx := withLogger(cmd.Context(), newLogger(os.Stderr, level))
			cmd.SetContext(withConfig(ctx, cfg))
			return nil
		},
	}

	root.SetVersionTemplate(fmt.Sprintf("%s %s\ncommit: %s\nbuilt: %s\n", appName, version, commit, date))
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.config/deckforge/config.toml)")

	for _, cmd := range commands() {
		root.AddCommand(cmd)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	return root.ExecuteContext(ctx)
}

// commands builds every subcommand.
func commands() []*cobra.Command {
	return []*cobra.Command{
		newInfoCmd(),
		newNewCmd(),
		newValidateCmd(),
		newAuditCmd(),
		newDumpTreeCmd(),
		newGraphCmd(),
		newDumpThemeCmd(),
		newSetColorsCmd(),
		newSetFontsCmd(),
		newSetThemeNamesCmd(),
		newApplyPaletteCmd(),
		newPaletteTemplateCmd(),
		newNormalizeCmd(),
		newSanitizeCmd(),
		newSetMasterCmd(),
		newSetLayoutCmd(),
		newSetSlideCmd(),
		newSetTextStylesCmd(),
		newSetLayoutBgCmd(),
		newSetLayoutImageCmd(),
		newMakeLayoutCmd(),
		newAutoLayoutCmd(),
		newPruneLayoutsCmd(),
		newReindexLayoutsCmd(),
		newServeCmd(),
	}
}
