package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/anime-shed/ratemylooks/internal/config"
	apperrors "github.com/anime-shed/ratemylooks/internal/errors"
)

func TestVersionCommand(t *testing.T) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})

	if err := root.Execute(); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got := out.String(); got != "rater version "+config.Version+"\n" {
		t.Errorf("Unexpected output %q", got)
	}
}

func TestAnalyzeCommand_RequiresPhoto(t *testing.T) {
	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"analyze"})

	if err := root.Execute(); err == nil {
		t.Error("Expected an argument error")
	}
}

func TestAnalyzeCommand_MissingFile(t *testing.T) {
	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"analyze", "does-not-exist.jpg"})

	err := root.Execute()
	if err == nil || !strings.Contains(err.Error(), "failed to read photo") {
		t.Errorf("Expected read error, got %v", err)
	}
}

func TestDescribeFailure(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "single message",
			err:  apperrors.NewConfigurationError(apperrors.CodeAINotConfigured, "API key not configured", nil),
			want: "analysis failed [AI_NOT_CONFIGURED]: API key not configured",
		},
		{
			name: "joined details",
			err: apperrors.NewValidationError(apperrors.CodeInvalidFormat, "x", nil).
				WithDetails("Invalid file format", "File must be an image"),
			want: "analysis failed [INVALID_FORMAT]: Invalid file format; File must be an image",
		},
		{
			name: "plain error",
			err:  errors.New("boom"),
			want: "analysis failed: boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := describeFailure(tt.err).Error(); got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}
