// Package chat provides an interactive prompt loop to verify a configured model.
package chat

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/modelfactory/pkg/llms"
	"github.com/effective-security/modelfactory/pkg/metricskey"
	"github.com/effective-security/modelfactory/store"
	"github.com/effective-security/xlog"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/modelfactory", "chat")

// VerificationPrompt is sent when the session starts
const VerificationPrompt = "Give me a one-word response to verify you're working."

// MaxPromptSize is the longest input line accepted as a prompt
const MaxPromptSize = 16 * 1024 * 1024

// Session is an interactive chat with a model
type Session struct {
	model     llms.Model
	in        io.Reader
	out       io.Writer
	store     store.MessageStore
	sessionID string
	system    string
	stream    bool
	label     func(string) string
}

// Option configures the Session
type Option func(*Session)

// WithInput specifies the reader of user prompts, os.Stdin by default
func WithInput(r io.Reader) Option {
	return func(s *Session) {
		s.in = r
	}
}

// WithOutput specifies the writer for responses, os.Stdout by default
func WithOutput(w io.Writer) Option {
	return func(s *Session) {
		s.out = w
	}
}

// WithHistory sends the previous messages of the session with each prompt,
// and records the exchange in the store.
func WithHistory(st store.MessageStore, sessionID string) Option {
	return func(s *Session) {
		s.store = st
		s.sessionID = sessionID
	}
}

// WithSystemPrompt specifies the system message sent with each prompt
func WithSystemPrompt(prompt string) Option {
	return func(s *Session) {
		s.system = prompt
	}
}

// WithStreaming prints the response as it is generated
func WithStreaming(stream bool) Option {
	return func(s *Session) {
		s.stream = stream
	}
}

// WithLabelRenderer specifies how labels such as "Response:" are rendered
func WithLabelRenderer(fn func(string) string) Option {
	return func(s *Session) {
		s.label = fn
	}
}

// New returns a chat Session for the model.
// The system prompt and streaming are dropped when the provider does not
// support them.
func New(model llms.Model, opts ...Option) *Session {
	s := &Session{
		model: model,
		in:    os.Stdin,
		out:   os.Stdout,
		label: func(s string) string { return s },
	}
	for _, opt := range opts {
		opt(s)
	}

	pt := model.GetProviderType()
	if s.system != "" && !pt.Supports(llms.CapabilitySystemPrompt) {
		logger.KV(xlog.WARNING,
			"reason", "system_prompt_not_supported",
			"provider", pt)
		s.system = ""
	}
	if s.stream && !pt.Supports(llms.CapabilityStreaming) {
		logger.KV(xlog.NOTICE,
			"reason", "streaming_not_supported",
			"provider", pt)
		s.stream = false
	}
	return s
}

// IsQuit returns true if the input ends the session
func IsQuit(input string) bool {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "quit", "exit":
		return true
	}
	return false
}

// Verify sends the verification prompt, without history
func (s *Session) Verify(ctx context.Context) (string, error) {
	return s.generate(ctx, []llms.Message{llms.MessageFromTextParts(llms.RoleHuman, VerificationPrompt)})
}

// Send sends the prompt, with the session history if configured
func (s *Session) Send(ctx context.Context, prompt string) (string, error) {
	var msgs []llms.Message
	if s.system != "" {
		msgs = append(msgs, llms.MessageFromTextParts(llms.RoleSystem, s.system))
	}
	if s.store != nil {
		history, err := s.store.Messages(ctx, s.sessionID)
		if err != nil {
			return "", err
		}
		msgs = append(msgs, history...)
	}
	human := llms.MessageFromTextParts(llms.RoleHuman, prompt)
	msgs = append(msgs, human)

	resp, err := s.generate(ctx, msgs)
	if err != nil {
		return "", err
	}

	if s.store != nil {
		err = s.store.Add(ctx, s.sessionID, human, llms.MessageFromTextParts(llms.RoleAI, resp))
		if err != nil {
			return "", err
		}
	}
	return resp, nil
}

func (s *Session) generate(ctx context.Context, msgs []llms.Message) (string, error) {
	name := s.model.Name()
	started := time.Now()
	defer metricskey.PerfChatPrompt.MeasureSince(started, name)
	metricskey.StatsChatPrompts.IncrCounter(1, name)

	var opts []llms.CallOption
	if s.stream {
		opts = append(opts, llms.WithStreamingFunc(func(_ context.Context, chunk []byte) error {
			_, err := s.out.Write(chunk)
			return err
		}))
	}

	resp, err := s.model.GenerateContent(ctx, msgs, opts...)
	if err != nil {
		metricskey.StatsChatFailures.IncrCounter(1, name)
		logger.ContextKV(ctx, xlog.ERROR,
			"reason", "generate",
			"model", name,
			"err", err.Error())
		return "", err
	}
	if len(resp.Choices) == 0 {
		metricskey.StatsChatFailures.IncrCounter(1, name)
		return "", llms.ErrEmptyResponse
	}
	return resp.Choices[0].Content, nil
}

// Run verifies the model, then sends each input line as a prompt
// until "quit" or "exit" is entered, or the input ends.
func (s *Session) Run(ctx context.Context) error {
	fmt.Fprintln(s.out, "\nSending test prompt...")
	if err := s.respond(ctx, s.Verify); err != nil {
		return err
	}

	fmt.Fprintln(s.out, "\nEntering interactive mode (type 'quit' to exit)")
	scanner := bufio.NewScanner(s.in)
	scanner.Buffer(make([]byte, 0, 64*1024), MaxPromptSize)
	for {
		fmt.Fprintf(s.out, "\n%s ", s.label("Prompt:"))
		if !scanner.Scan() {
			fmt.Fprintln(s.out)
			return errors.WithStack(scanner.Err())
		}
		input := scanner.Text()
		if IsQuit(input) {
			return nil
		}
		if strings.TrimSpace(input) == "" {
			continue
		}

		fmt.Fprintln(s.out)
		err := s.respond(ctx, func(ctx context.Context) (string, error) {
			return s.Send(ctx, input)
		})
		if err != nil {
			return err
		}
	}
}

func (s *Session) respond(ctx context.Context, fn func(context.Context) (string, error)) error {
	fmt.Fprintf(s.out, "%s ", s.label("Response:"))
	resp, err := fn(ctx)
	if err != nil {
		fmt.Fprintln(s.out)
		return err
	}
	if !s.stream {
		fmt.Fprint(s.out, resp)
	}
	fmt.Fprintln(s.out)
	return nil
}
