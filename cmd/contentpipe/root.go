package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile    string
	quiet      bool
	logFormat  string
	appVersion string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "contentpipe",
	Short: "Agent pipeline for product content generation",
	Long: `contentpipe runs a dependency-ordered agent pipeline that turns raw
product data into content pages: an FAQ page, a product description
page, a comparison page, and the question set behind them.

Pages are printed as a run summary and can be persisted to a file
directory, SQLite, MySQL, or PostgreSQL store.`,
	SilenceUsage: true,

	Run: func(cmd *cobra.Command, args []string) {
		if v, _ := cmd.Flags().GetBool("version"); v {
			fmt.Printf("contentpipe v%s\n", appVersion)
			return
		}
		// If no subcommand, show help
		cmd.Help()
	},
}

// Execute runs the CLI.
func Execute(v string) error {
	appVersion = v

	// Initialize the root command explicitly (avoiding init())
	initializeRootCommand()

	return rootCmd.Execute()
}

// initializeRootCommand sets up the root command and its flags.
// This replaces the init() function to make initialization explicit and testable.
func initializeRootCommand() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: contentpipe.yaml in the working directory)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress pipeline event output")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "pipeline event format (text, json)")

	rootCmd.Flags().Bool("version", false, "Print version information and quit")

	// Add subcommands
	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newWatchCmd())
	rootCmd.AddCommand(newValidateCmd())
}

func initConfig() {
	if cfgFile != "" {
		// Use config file from flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Search for contentpipe.yaml in the working directory
		viper.AddConfigPath(".")
		viper.SetConfigName("contentpipe")
		viper.SetConfigType("yaml")
	}

	// Read in environment variables (CONTENTPIPE_STORE, CONTENTPIPE_DSN, ...)
	viper.SetEnvPrefix("CONTENTPIPE")
	viper.AutomaticEnv()

	// A missing config file is fine; flags and env cover everything.
	_ = viper.ReadInConfig()
}

// Helper functions

func printSuccess(message string) {
	fmt.Printf("%s %s\n", color.GreenString("[contentpipe]"), message)
}

func printError(message string) {
	fmt.Fprintf(os.Stderr, "%s %s\n", color.RedString("[contentpipe]"), message)
}

func printInfo(message string) {
	if quiet {
		return
	}
	fmt.Printf("%s %s\n", color.CyanString("[contentpipe]"), message)
}

func printWarning(message string) {
	fmt.Printf("%s %s\n", color.YellowString("[contentpipe]"), message)
}
