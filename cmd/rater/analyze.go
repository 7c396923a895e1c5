package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/anime-shed/ratemylooks/internal/config"
	"github.com/anime-shed/ratemylooks/internal/container"
	apperrors "github.com/anime-shed/ratemylooks/internal/errors"
	"github.com/anime-shed/ratemylooks/internal/formatter"
	"github.com/anime-shed/ratemylooks/internal/logger"
	"github.com/anime-shed/ratemylooks/internal/service"
	"github.com/anime-shed/ratemylooks/pkg/models"
)

type analyzeFlags struct {
	focusAreas   []string
	analysisType string
	outputFormat string
	verbose      bool
}

func newAnalyzeCmd() *cobra.Command {
	flags := &analyzeFlags{}
	cmd := &cobra.Command{
		Use:   "analyze PHOTO",
		Short: "Rate a local photo",
		Long: `Rate a local JPEG, PNG or WebP photo.

Examples:
  # Human readable report
  rater analyze me.jpg

  # Emphasize some areas
  rater analyze me.jpg --focus eyes,hair

  # Machine readable output
  rater analyze me.jpg -o json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, args[0], flags)
		},
	}

	cmd.Flags().StringSliceVar(&flags.focusAreas, "focus", nil, "Areas to emphasize (e.g. eyes,hair)")
	cmd.Flags().StringVarP(&flags.analysisType, "type", "t", models.AnalysisTypeComprehensive, "Analysis type (comprehensive, quick, detailed)")
	cmd.Flags().StringVarP(&flags.outputFormat, "output", "o", formatter.FormatHuman, "Output format (human, json, yaml)")
	cmd.Flags().BoolVarP(&flags.verbose, "verbose", "v", false, "Log pipeline steps to stderr")

	return cmd
}

func runAnalyze(cmd *cobra.Command, path string, flags *analyzeFlags) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read photo: %w", err)
	}

	svc, err := newService(flags.verbose)
	if err != nil {
		return err
	}

	human := flags.outputFormat == formatter.FormatHuman
	s := spinner.New(spinner.CharSets[11], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	if human {
		printHeader(filepath.Base(path), svc.Provider())
		s.Suffix = " Analyzing with AI..."
		s.Start()
	}

	img := &models.UploadedImage{
		Data:     data,
		Filename: filepath.Base(path),
		Size:     int64(len(data)),
	}
	opts := models.AnalysisOptions{FocusAreas: flags.focusAreas, AnalysisType: flags.analysisType}

	result, err := svc.AnalyzeUpload(context.Background(), img, opts)
	s.Stop()
	if err != nil {
		return describeFailure(err)
	}
	if human {
		printSuccess("Analysis complete")
	}

	return formatter.DisplayResults(cmd.OutOrStdout(), result, flags.outputFormat)
}

func newTestAICmd() *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "test-ai",
		Short: "Check connectivity to the configured AI provider",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newService(verbose)
			if err != nil {
				return err
			}

			s := spinner.New(spinner.CharSets[11], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
			s.Suffix = " Contacting " + svc.Provider() + "..."
			s.Start()
			result := svc.TestConnection(context.Background())
			s.Stop()

			if !result.Connected {
				return fmt.Errorf("%s is not reachable: %s", svc.Provider(), result.Error)
			}
			printSuccess(fmt.Sprintf("Connected to %s (%s)", svc.Provider(), result.Model))
			fmt.Fprintf(cmd.OutOrStdout(), "   %s\n", result.Response)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log requests to stderr")
	return cmd
}

// newService builds the same pipeline the HTTP server uses, with logs kept off stdout
func newService(verbose bool) (service.AnalysisService, error) {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, err
	}
	logger.SetOutput(os.Stderr)
	cfg.LogLevel = "error"
	if verbose {
		cfg.LogLevel = "debug"
	}

	c, err := container.NewContainer(cfg)
	if err != nil {
		return nil, err
	}
	return c.AnalysisService(), nil
}

func describeFailure(err error) error {
	appErr, ok := apperrors.As(err)
	if !ok {
		return fmt.Errorf("analysis failed: %w", err)
	}
	msg := appErr.Message
	if len(appErr.Details) > 1 {
		msg = strings.Join(appErr.Details, "; ")
	}
	return fmt.Errorf("analysis failed [%s]: %s", appErr.Code, msg)
}

func printHeader(photo, provider string) {
	cyan := color.New(color.FgCyan, color.Bold)
	fmt.Fprintln(os.Stderr)
	cyan.Fprintf(os.Stderr, "🔍 Rating %s with %s\n", photo, provider)
	fmt.Fprintln(os.Stderr, strings.Repeat("─", 80))
}

func printSuccess(msg string) {
	green := color.New(color.FgGreen)
	green.Fprintf(os.Stderr, "✓ %s\n", msg)
}
