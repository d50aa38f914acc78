package main

import (
	"fmt"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/modelfactory/pkg/llmfactory"
	"github.com/effective-security/modelfactory/pkg/llms/ollama"
	"github.com/effective-security/modelfactory/pkg/modelsync"
	"github.com/effective-security/x/values"
	"github.com/spf13/cobra"
)

const defaultSyncOutput = "config/models_ollama_synced.yaml"

func newSyncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Regenerate the model registry from the models installed on Ollama",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ollamaURL, _ := cmd.Flags().GetString("ollama-url")
			output, _ := cmd.Flags().GetString("output")
			provider, _ := cmd.Flags().GetString("provider")
			return runSync(cmd, ollamaURL, output, provider)
		},
	}
	cmd.Flags().String("ollama-url", "", "Ollama server URL, defaults to OLLAMA_HOST or "+ollama.DefaultBaseURL)
	cmd.Flags().StringP("output", "o", defaultSyncOutput, "Output file for the generated model registry")
	cmd.Flags().String("provider", llmfactory.Ollama, "Provider id written into the generated entries")
	return cmd
}

func runSync(cmd *cobra.Command, ollamaURL, output, provider string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	serverURL := values.StringsCoalesce(ollamaURL, os.Getenv("OLLAMA_HOST"), ollama.DefaultBaseURL)

	lister, err := modelsync.NewOllamaLister(serverURL, nil)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, "Fetching models from Ollama...")
	g := modelsync.New(modelsync.WithProvider(provider))
	res, err := g.Sync(ctx, lister)
	if err != nil {
		return errors.Wrapf(err, "please ensure Ollama is running on %s", serverURL)
	}

	fmt.Fprintf(out, "Saving new configuration to %s...\n", output)
	if err = modelsync.Save(output, res.Document); err != nil {
		return err
	}

	fmt.Fprintln(out)
	res.WriteSummary(out)
	return nil
}
