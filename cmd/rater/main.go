package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/anime-shed/ratemylooks/internal/config"
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "rater",
		Short: "AI-powered photo attractiveness rating",
		Long: `rater sends a photo to the configured vision model and prints a scored
breakdown with strengths, style advice and an improvement plan.

The provider is selected with AI_PROVIDER (grok, openai, gemini) and the key
is read from the matching {PROVIDER}_API_KEY variable.`,
		SilenceUsage: true,
	}

	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(
		newAnalyzeCmd(),
		newTestAICmd(),
		newVersionCmd(),
	)

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "rater version %s\n", config.Version)
		},
	}
}
