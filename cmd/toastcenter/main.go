// Command toastcenter captures notifications into a per-user database and
// browses them grouped by app or space.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/nhle/toastcenter/internal/model"
)

var version = "dev"

var (
	configPath string
	noColor    bool

	// cfg is loaded before any subcommand runs.
	cfg *model.AppConfig
)

var rootCmd = &cobra.Command{
	Use:           "toastcenter",
	Short:         "Capture, group and prioritise desktop notifications",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := model.LoadConfig(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(cmd, runOptions{})
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", model.DefaultConfigPath(), "path to the config file")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", os.Getenv("NO_COLOR") != "", "disable colored output")

	rootCmd.AddCommand(runCmd, captureCmd)
	rootCmd.AddCommand(notificationsCmd, dismissCmd, appsCmd, spacesCmd, priorityCmd, classifyCmd, dndCmd, mailCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		printError("%v", err)
		os.Exit(1)
	}
}
