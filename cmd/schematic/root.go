package schematic

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/schematic-dev/schematic/internal/version"
	"github.com/schematic-dev/schematic/pkg/config"
	"github.com/schematic-dev/schematic/pkg/core"
	"github.com/schematic-dev/schematic/pkg/logging"
	"github.com/schematic-dev/schematic/pkg/paths"
)

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	// Initialize custom template formatting functions
	initTemplateFormatting()

	var verbosity int

	rootCmd := &cobra.Command{
		Use:     "schematic",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Setup logging based on verbosity
			logging.SetupLogger(verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// If we get here, no subcommand was provided
			_ = cmd.Help()
			return fmt.Errorf("no command specified")
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	// Global flags
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", MsgFlagVerbose)
	rootCmd.PersistentFlags().Bool("dry-run", false, MsgFlagDryRun)
	rootCmd.PersistentFlags().String("project-root", "", MsgFlagProjectRoot)

	// Define command groups
	rootCmd.AddGroup(&cobra.Group{
		ID:    "core",
		Title: "COMMANDS:",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "config",
		Title: "CONFIG:",
	})

	rootCmd.AddCommand(newApplyCmd())
	rootCmd.AddCommand(newGenConfigCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func newApplyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "apply [blueprints...]",
		Short:   MsgApplyShort,
		Long:    MsgApplyLong,
		Example: MsgApplyExample,
		GroupID: "core",
		RunE: func(cmd *cobra.Command, args []string) error {
			dryRun, _ := cmd.Root().PersistentFlags().GetBool("dry-run")
			projectRoot, _ := cmd.Root().PersistentFlags().GetString("project-root")
			contextPath, _ := cmd.Flags().GetString("context")
			packageManager, _ := cmd.Flags().GetString("package-manager")

			overrides := map[string]interface{}{}
			if packageManager != "" {
				overrides["engine.package_manager"] = packageManager
			}

			result, err := core.Apply(core.ApplyOptions{
				ProjectRoot:     projectRoot,
				BlueprintPaths:  args,
				ContextPath:     contextPath,
				DryRun:          dryRun,
				ConfigOverrides: overrides,
			})
			if err != nil {
				return fmt.Errorf(MsgErrApply, err)
			}

			out := cmd.OutOrStdout()
			for _, res := range result.Results {
				if res.Success {
					fmt.Fprintf(out, MsgBlueprintOK, res.Blueprint, len(res.Results))
					continue
				}
				fmt.Fprintf(out, MsgBlueprintFail, res.Blueprint)
				for _, msg := range res.Errors {
					fmt.Fprintf(out, MsgErrorItem, msg)
				}
			}

			if len(result.Files) == 0 {
				fmt.Fprintln(out, MsgNoFilesWritten)
			} else {
				fmt.Fprintf(out, MsgFilesFormat, len(result.Files))
				for _, f := range result.Files {
					fmt.Fprintf(out, MsgFileItem, f)
				}
			}

			if dryRun {
				fmt.Fprintln(out, MsgDryRunNotice)
			}

			if !result.Success {
				return fmt.Errorf(MsgErrBlueprintsFail)
			}
			return nil
		},
	}

	cmd.Flags().String("context", "", MsgFlagContext)
	cmd.Flags().String("package-manager", "", MsgFlagPackageManager)

	return cmd
}

func newGenConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "gen-config",
		Short:   MsgGenConfigShort,
		Long:    MsgGenConfigLong,
		GroupID: "config",
		RunE: func(cmd *cobra.Command, args []string) error {
			content := config.GenerateConfigContent()

			write, _ := cmd.Flags().GetBool("write")
			if !write {
				fmt.Fprintln(cmd.OutOrStdout(), content)
				return nil
			}

			projectRoot, _ := cmd.Root().PersistentFlags().GetString("project-root")
			p, err := paths.New(projectRoot)
			if err != nil {
				return err
			}

			target := filepath.Join(p.ProjectRoot(), config.ConfigFileName)
			if _, err := os.Stat(target); err == nil {
				return fmt.Errorf(MsgErrConfigExists, target)
			}
			if err := os.WriteFile(target, []byte(content+"\n"), 0644); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", target)
			return nil
		},
	}

	cmd.Flags().BoolP("write", "w", false, MsgFlagWrite)

	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Short:   MsgVersionShort,
		GroupID: "config",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "schematic version %s\n", version.Version)
			fmt.Fprintf(out, "  commit: %s\n", version.Commit)
			fmt.Fprintf(out, "  built:  %s\n", version.Date)
		},
	}
}
