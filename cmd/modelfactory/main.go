package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/modelfactory", "cmd")

const (
	defaultConfigDir = "config"
	defaultLogLevel  = "error"
)

var labelStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("212")).
	Bold(true)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "modelfactory",
		Short:         "Configure and verify local LLM models",
		Long:          `modelfactory resolves model configurations from the provider and model registries, creates model clients, and regenerates the model registry from a running Ollama server.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			level, _ := cmd.Flags().GetString("log-level")
			return setLogLevel(level)
		},
	}

	cmd.PersistentFlags().String("log-level", defaultLogLevel, "Log level: critical, error, warning, notice, info, debug, trace")

	cmd.AddCommand(
		newSyncCmd(),
		newChatCmd(),
		newModelsCmd(),
		newResolveCmd(),
	)
	return cmd
}

func setLogLevel(level string) error {
	switch strings.ToLower(level) {
	case "critical":
		xlog.SetGlobalLogLevel(xlog.CRITICAL)
	case "error", "":
		xlog.SetGlobalLogLevel(xlog.ERROR)
	case "warning", "warn":
		xlog.SetGlobalLogLevel(xlog.WARNING)
	case "notice":
		xlog.SetGlobalLogLevel(xlog.NOTICE)
	case "info":
		xlog.SetGlobalLogLevel(xlog.INFO)
	case "debug":
		xlog.SetGlobalLogLevel(xlog.DEBUG)
	case "trace":
		xlog.SetGlobalLogLevel(xlog.TRACE)
	default:
		return errors.Newf("invalid log level: %s", level)
	}
	return nil
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func renderLabel(s string) string {
	return labelStyle.Render(s)
}

func main() {
	xlog.SetFormatter(xlog.NewStringFormatter(os.Stderr))

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err.Error())
		os.Exit(1)
	}
}
