// Package openai implements llms.Model for OpenAI compatible chat completion endpoints,
// such as LM Studio or the OpenAI API.
package openai

import (
	"context"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/modelfactory/pkg/llms"
	"github.com/effective-security/x/values"
	"github.com/effective-security/xlog"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/modelfactory/pkg/llms", "openai")

// ErrEmptyModel is returned when no model name is configured.
var ErrEmptyModel = errors.New("openai: model name is required")

// params understood by the chat completions API
var supportedParams = map[string]bool{
	llms.ParamTemperature:      true,
	llms.ParamTopP:             true,
	llms.ParamPresencePenalty:  true,
	llms.ParamFrequencyPenalty: true,
	llms.ParamStopSequences:    true,
	llms.ParamMaxTokens:        true,
	llms.ParamSeed:             true,
}

// LLM is an OpenAI compatible chat model.
type LLM struct {
	client   openai.Client
	model    string
	provider llms.ProviderType
	baseURL  string
	params   llms.Params
}

var _ llms.Model = (*LLM)(nil)

// New returns a new OpenAI LLM.
func New(opts ...Option) (*LLM, error) {
	o := &options{
		provider:   llms.ProviderOpenAI,
		maxRetries: -1,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.model == "" {
		return nil, ErrEmptyModel
	}

	token := values.StringsCoalesce(o.token, os.Getenv(tokenEnvVarName))
	if token == "" {
		return nil, errors.Errorf("openai: missing API token, set %s", tokenEnvVarName)
	}
	baseURL := strings.TrimSuffix(values.StringsCoalesce(o.baseURL, os.Getenv(baseURLEnvVarName), DefaultBaseURL), "/")

	reqOpts := []option.RequestOption{
		option.WithAPIKey(token),
		option.WithBaseURL(baseURL),
	}
	if o.httpClient != nil {
		reqOpts = append(reqOpts, option.WithHTTPClient(o.httpClient))
	}
	if o.maxRetries >= 0 {
		reqOpts = append(reqOpts, option.WithMaxRetries(o.maxRetries))
	}

	for k := range o.params {
		if !supportedParams[k] {
			logger.KV(xlog.DEBUG,
				"status", "ignored_param",
				"provider", o.provider,
				"model", o.model,
				"param", k)
		}
	}

	return &LLM{
		client:   openai.NewClient(reqOpts...),
		model:    o.model,
		provider: o.provider,
		baseURL:  baseURL,
		params:   o.params,
	}, nil
}

// GetProviderType implements the Model interface.
func (o *LLM) GetProviderType() llms.ProviderType {
	return o.provider
}

// Name implements the Model interface.
func (o *LLM) Name() string {
	return o.model
}

// BaseURL returns the endpoint the client talks to.
func (o *LLM) BaseURL() string {
	return o.baseURL
}

// Params returns a copy of the configured inference parameters.
func (o *LLM) Params() llms.Params {
	return o.params.Clone()
}

// GenerateContent implements the Model interface.
func (o *LLM) GenerateContent(ctx context.Context, messages []llms.Message, options ...llms.CallOption) (*llms.ContentResponse, error) {
	opts := llms.NewCallOptions(options...)

	chatMsgs := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, mc := range messages {
		content := mc.GetContent()
		switch mc.Role {
		case llms.RoleSystem:
			chatMsgs = append(chatMsgs, openai.SystemMessage(content))
		case llms.RoleAI:
			chatMsgs = append(chatMsgs, openai.AssistantMessage(content))
		case llms.RoleHuman, llms.RoleGeneric:
			chatMsgs = append(chatMsgs, openai.UserMessage(content))
		default:
			return nil, errors.Errorf("role %v not supported", mc.Role)
		}
	}

	req := newRequest(values.StringsCoalesce(opts.Model, o.model), o.params, opts)
	req.Messages = chatMsgs

	if opts.StreamingFunc != nil {
		return o.stream(ctx, req, opts.StreamingFunc)
	}

	result, err := o.client.Chat.Completions.New(ctx, req)
	if err != nil {
		return nil, errors.Wrap(err, "openai chat request failed")
	}
	if len(result.Choices) == 0 {
		return nil, llms.ErrEmptyResponse
	}

	choices := make([]*llms.ContentChoice, len(result.Choices))
	for i, c := range result.Choices {
		choices[i] = &llms.ContentChoice{
			Content:    c.Message.Content,
			StopReason: c.FinishReason,
			GenerationInfo: map[string]any{
				"CompletionTokens": result.Usage.CompletionTokens,
				"PromptTokens":     result.Usage.PromptTokens,
				"TotalTokens":      result.Usage.TotalTokens,
			},
		}
	}
	return &llms.ContentResponse{Choices: choices}, nil
}

func (o *LLM) stream(ctx context.Context, req openai.ChatCompletionNewParams, fn func(ctx context.Context, chunk []byte) error) (*llms.ContentResponse, error) {
	s := o.client.Chat.Completions.NewStreaming(ctx, req)
	defer s.Close()

	acc := openai.ChatCompletionAccumulator{}
	for s.Next() {
		chunk := s.Current()
		acc.AddChunk(chunk)
		if len(chunk.Choices) > 0 && chunk.Choices[0].Delta.Content != "" {
			if err := fn(ctx, []byte(chunk.Choices[0].Delta.Content)); err != nil {
				return nil, err
			}
		}
	}
	if err := s.Err(); err != nil {
		return nil, errors.Wrap(err, "openai stream failed")
	}
	if len(acc.Choices) == 0 {
		return nil, llms.ErrEmptyResponse
	}
	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{
			{
				Content:    acc.Choices[0].Message.Content,
				StopReason: acc.Choices[0].FinishReason,
			},
		},
	}, nil
}

// newRequest maps the registry params and the call options onto the request,
// call options take precedence over the params.
func newRequest(model string, params llms.Params, opts llms.CallOptions) openai.ChatCompletionNewParams {
	req := openai.ChatCompletionNewParams{
		Model: model,
	}

	if v, ok := params.Float(llms.ParamTemperature); ok {
		req.Temperature = openai.Float(v)
	}
	if v, ok := params.Float(llms.ParamTopP); ok {
		req.TopP = openai.Float(v)
	}
	if v, ok := params.Float(llms.ParamPresencePenalty); ok {
		req.PresencePenalty = openai.Float(v)
	}
	if v, ok := params.Float(llms.ParamFrequencyPenalty); ok {
		req.FrequencyPenalty = openai.Float(v)
	}
	if v, ok := params.Int(llms.ParamMaxTokens); ok {
		req.MaxTokens = openai.Int(int64(v))
	}
	if v, ok := params.Int(llms.ParamSeed); ok {
		req.Seed = openai.Int(int64(v))
	}
	stop, _ := params.Strings(llms.ParamStopSequences)

	if opts.Temperature != 0 {
		req.Temperature = openai.Float(opts.Temperature)
	}
	if opts.TopP != 0 {
		req.TopP = openai.Float(opts.TopP)
	}
	if opts.PresencePenalty != 0 {
		req.PresencePenalty = openai.Float(opts.PresencePenalty)
	}
	if opts.FrequencyPenalty != 0 {
		req.FrequencyPenalty = openai.Float(opts.FrequencyPenalty)
	}
	if opts.MaxTokens != 0 {
		req.MaxTokens = openai.Int(int64(opts.MaxTokens))
	}
	if opts.Seed != 0 {
		req.Seed = openai.Int(int64(opts.Seed))
	}
	if len(opts.StopWords) > 0 {
		stop = opts.StopWords
	}
	if len(stop) > 0 {
		req.Stop = openai.ChatCompletionNewParamsStopUnion{
			OfStringArray: stop,
		}
	}
	return req
}
