package main

import (
	"fmt"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/modelfactory/pkg/chat"
	"github.com/effective-security/modelfactory/pkg/llmfactory"
	"github.com/effective-security/modelfactory/store"
	"github.com/effective-security/x/values"
	"github.com/effective-security/xlog"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

const redisPrefix = "modelfactory"

type chatFlags struct {
	configDir string
	history   bool
	redisURL  string
	sessionID string
	system    string
	stream    bool
}

func newChatCmd() *cobra.Command {
	f := new(chatFlags)
	cmd := &cobra.Command{
		Use:   "chat [MODEL]",
		Short: "Load a model, verify it responds, then chat interactively",
		Long:  `Loads the model, or the default model, sends a verification prompt, then reads prompts from stdin until 'quit' or 'exit'.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var name string
			if len(args) > 0 {
				name = args[0]
			}
			return runChat(cmd, f, name, llmfactory.DefaultRegistry())
		},
	}
	cmd.Flags().StringVarP(&f.configDir, "config", "c", defaultConfigDir, "Folder with providers.yaml and models.yaml")
	cmd.Flags().BoolVar(&f.history, "history", false, "Send the previous messages of the session with each prompt")
	cmd.Flags().StringVar(&f.redisURL, "redis-url", "", "Redis URL to persist the history, in memory if empty")
	cmd.Flags().StringVar(&f.sessionID, "session", "", "Session ID of the history, a new session if empty")
	cmd.Flags().StringVar(&f.system, "system", "", "System prompt sent with each prompt")
	cmd.Flags().BoolVar(&f.stream, "stream", isTerminal(os.Stdout), "Print responses as they are generated")
	return cmd
}

func runChat(cmd *cobra.Command, f *chatFlags, name string, registry *llmfactory.Registry) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	cfg, err := llmfactory.Load(f.configDir)
	if err != nil {
		return err
	}
	factory := llmfactory.New(cfg, llmfactory.WithRegistry(registry))

	fmt.Fprintf(out, "Loading model: %s\n", values.StringsCoalesce(name, "default"))
	inst, err := factory.Create(name, false)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Successfully loaded %s using %s provider\n", inst.ModelName, inst.Provider)

	opts := []chat.Option{
		chat.WithInput(cmd.InOrStdin()),
		chat.WithOutput(out),
		chat.WithStreaming(f.stream),
		chat.WithSystemPrompt(f.system),
	}
	if isTerminal(os.Stdout) {
		opts = append(opts, chat.WithLabelRenderer(renderLabel))
	}

	if f.history {
		st, err := newStore(f.redisURL)
		if err != nil {
			return err
		}
		sessionID := values.StringsCoalesce(f.sessionID, inst.Name+"-"+uuid.NewString())
		opts = append(opts, chat.WithHistory(st, sessionID))

		logger.KV(xlog.INFO,
			"status", "history",
			"session", sessionID,
			"redis", f.redisURL != "")
	}

	return chat.New(inst.Model, opts...).Run(ctx)
}

func newStore(redisURL string) (store.MessageStore, error) {
	if redisURL == "" {
		return store.NewMemoryStore(), nil
	}
	o, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, errors.Wrap(err, "invalid redis url")
	}
	return store.NewRedisStore(redis.NewClient(o), redisPrefix), nil
}

