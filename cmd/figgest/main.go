// Package main is the entry point for the figgest CLI.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dgallion1/figgest/internal/config"
)

// version is set at build time via ldflags.
var version = "dev"

// v holds configuration shared by every subcommand.
var v = config.New()

var rootCmd = &cobra.Command{
	Use:   "figgest",
	Short: "Extract figures from assessment question markup",
	Long: `figgest turns assessment question pages into structured records. Every
figure (equation, graph, table, inline math image) is replaced in the text by
a {{FIG_n}} placeholder and described by a typed figure record.

Run a single extraction with "extract", rebuild text from records with
"rebuild", or serve the HTTP API with "serve".`,
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./figgest.yaml or ~/.config/figgest/config.yaml)")
	rootCmd.PersistentFlags().Bool("verbose", false, "enable debug logging")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("figgest")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "figgest"))
		}
	}

	if err := v.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", v.ConfigFileUsed())
	} else if _, ok := err.(viper.ConfigFileNotFoundError); !ok && cfgFile != "" {
		fmt.Fprintln(os.Stderr, "config:", err)
	}
}

// newLogger returns the CLI logger. Commands write results to stdout, so logs
// go to stderr.
func newLogger(cmd *cobra.Command, json bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if json {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version of figgest",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("figgest %s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
