// Package ollama implements llms.Model for a local Ollama server.
package ollama

import (
	"context"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/modelfactory/pkg/llms"
	"github.com/effective-security/x/values"
	"github.com/effective-security/xlog"
	"github.com/ollama/ollama/api"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/modelfactory/pkg/llms", "ollama")

// ErrEmptyModel is returned when no model name is configured.
var ErrEmptyModel = errors.New("ollama: model name is required")

// registry param names that differ from the Ollama option names
var optionNames = map[string]string{
	llms.ParamContextLength: "num_ctx",
	llms.ParamStopSequences: "stop",
	llms.ParamMaxTokens:     "num_predict",
}

// LLM is an Ollama chat model.
type LLM struct {
	client    *api.Client
	model     string
	params    llms.Params
	keepAlive *api.Duration
}

var _ llms.Model = (*LLM)(nil)

// New returns a new Ollama LLM.
func New(opts ...Option) (*LLM, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.model == "" {
		return nil, ErrEmptyModel
	}

	client, err := NewClient(o.baseURL, o.httpClient)
	if err != nil {
		return nil, err
	}

	llm := &LLM{
		client: client,
		model:  o.model,
		params: o.params,
	}
	if o.keepAlive != "" {
		d, err := time.ParseDuration(o.keepAlive)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid keep alive: %s", o.keepAlive)
		}
		llm.keepAlive = &api.Duration{Duration: d}
	}
	return llm, nil
}

// NewClient returns the Ollama API client for the base URL,
// OLLAMA_HOST or the default local server is used when baseURL is empty.
func NewClient(baseURL string, httpClient *http.Client) (*api.Client, error) {
	base := values.StringsCoalesce(baseURL, os.Getenv(hostEnvVarName), DefaultBaseURL)
	if !strings.Contains(base, "://") {
		base = "http://" + base
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid ollama base url: %s", base)
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return api.NewClient(u, httpClient), nil
}

// GetProviderType implements the Model interface.
func (o *LLM) GetProviderType() llms.ProviderType {
	return llms.ProviderOllama
}

// Name implements the Model interface.
func (o *LLM) Name() string {
	return o.model
}

// Params returns a copy of the configured inference parameters.
func (o *LLM) Params() llms.Params {
	return o.params.Clone()
}

// GenerateContent implements the Model interface.
func (o *LLM) GenerateContent(ctx context.Context, messages []llms.Message, options ...llms.CallOption) (*llms.ContentResponse, error) {
	opts := llms.NewCallOptions(options...)

	chatMsgs := make([]api.Message, 0, len(messages))
	for _, mc := range messages {
		msg := api.Message{Content: mc.GetContent()}
		switch mc.Role {
		case llms.RoleSystem:
			msg.Role = "system"
		case llms.RoleAI:
			msg.Role = "assistant"
		case llms.RoleHuman, llms.RoleGeneric:
			msg.Role = "user"
		default:
			return nil, errors.Errorf("role %v not supported", mc.Role)
		}
		chatMsgs = append(chatMsgs, msg)
	}

	stream := opts.StreamingFunc != nil
	req := &api.ChatRequest{
		Model:     values.StringsCoalesce(opts.Model, o.model),
		Messages:  chatMsgs,
		Stream:    &stream,
		Options:   RequestOptions(o.params, opts),
		KeepAlive: o.keepAlive,
	}

	var (
		content strings.Builder
		last    api.ChatResponse
	)
	fn := func(resp api.ChatResponse) error {
		content.WriteString(resp.Message.Content)
		if stream && resp.Message.Content != "" {
			if err := opts.StreamingFunc(ctx, []byte(resp.Message.Content)); err != nil {
				return err
			}
		}
		if resp.Done {
			last = resp
		}
		return nil
	}

	if err := o.client.Chat(ctx, req, fn); err != nil {
		return nil, errors.Wrap(err, "ollama chat request failed")
	}

	if content.Len() == 0 && !last.Done {
		return nil, llms.ErrEmptyResponse
	}

	logger.KV(xlog.DEBUG,
		"status", "chat_completed",
		"model", req.Model,
		"prompt_tokens", last.PromptEvalCount,
		"completion_tokens", last.EvalCount)

	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{
			{
				Content:    content.String(),
				StopReason: last.DoneReason,
				GenerationInfo: map[string]any{
					"PromptTokens":     last.PromptEvalCount,
					"CompletionTokens": last.EvalCount,
					"TotalTokens":      last.PromptEvalCount + last.EvalCount,
				},
			},
		},
	}, nil
}

// RequestOptions converts the registry params and the call options into Ollama
// request options. Call options take precedence over the params.
func RequestOptions(params llms.Params, opts llms.CallOptions) map[string]any {
	res := make(map[string]any, len(params))
	for k, v := range params {
		name := k
		if mapped, ok := optionNames[k]; ok {
			name = mapped
		}
		res[name] = v
	}
	if stop, ok := params.Strings(llms.ParamStopSequences); ok {
		res["stop"] = stop
	}

	if opts.Temperature != 0 {
		res["temperature"] = opts.Temperature
	}
	if opts.TopP != 0 {
		res["top_p"] = opts.TopP
	}
	if opts.TopK != 0 {
		res["top_k"] = opts.TopK
	}
	if opts.Seed != 0 {
		res["seed"] = opts.Seed
	}
	if opts.MaxTokens != 0 {
		res["num_predict"] = opts.MaxTokens
	}
	if opts.RepetitionPenalty != 0 {
		res["repeat_penalty"] = opts.RepetitionPenalty
	}
	if opts.FrequencyPenalty != 0 {
		res["frequency_penalty"] = opts.FrequencyPenalty
	}
	if opts.PresencePenalty != 0 {
		res["presence_penalty"] = opts.PresencePenalty
	}
	if len(opts.StopWords) > 0 {
		res["stop"] = opts.StopWords
	}
	return res
}
