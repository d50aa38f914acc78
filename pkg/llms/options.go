package llms

import (
	"context"
)

// CallOption overrides a request setting for a single GenerateContent call.
type CallOption func(*CallOptions)

// CallOptions are the per-call overrides. A zero value leaves the setting to
// the model params resolved from the registry.
type CallOptions struct {
	// Model overrides the provider model name.
	Model string
	// MaxTokens limits the generated tokens.
	MaxTokens int
	// Temperature overrides the sampling temperature.
	Temperature float64
	// StopWords replace the configured stop sequences.
	StopWords []string
	// StreamingFunc receives each chunk of the response as it arrives,
	// an error stops the stream.
	StreamingFunc func(ctx context.Context, chunk []byte) error
	TopK          int
	TopP          float64
	Seed          int
	// RepetitionPenalty maps to repeat_penalty.
	RepetitionPenalty float64
	FrequencyPenalty  float64
	PresencePenalty   float64
}

// NewCallOptions returns the overrides set by options.
func NewCallOptions(options ...CallOption) CallOptions {
	var opts CallOptions
	for _, opt := range options {
		opt(&opts)
	}
	return opts
}

// WithModel overrides the provider model name.
func WithModel(model string) CallOption {
	return func(o *CallOptions) { o.Model = model }
}

// WithMaxTokens limits the number of generated tokens.
func WithMaxTokens(maxTokens int) CallOption {
	return func(o *CallOptions) { o.MaxTokens = maxTokens }
}

// WithTemperature overrides the sampling temperature.
func WithTemperature(temperature float64) CallOption {
	return func(o *CallOptions) { o.Temperature = temperature }
}

// WithStopWords replaces the configured stop sequences.
func WithStopWords(stopWords []string) CallOption {
	return func(o *CallOptions) { o.StopWords = stopWords }
}

// WithStreamingFunc enables streaming, fn is called for every chunk.
func WithStreamingFunc(fn func(ctx context.Context, chunk []byte) error) CallOption {
	return func(o *CallOptions) { o.StreamingFunc = fn }
}

// WithTopK overrides top_k.
func WithTopK(topK int) CallOption {
	return func(o *CallOptions) { o.TopK = topK }
}

// WithTopP overrides top_p.
func WithTopP(topP float64) CallOption {
	return func(o *CallOptions) { o.TopP = topP }
}

// WithSeed sets the sampling seed.
func WithSeed(seed int) CallOption {
	return func(o *CallOptions) { o.Seed = seed }
}

// WithRepetitionPenalty overrides repeat_penalty.
func WithRepetitionPenalty(penalty float64) CallOption {
	return func(o *CallOptions) { o.RepetitionPenalty = penalty }
}

// WithFrequencyPenalty overrides frequency_penalty.
func WithFrequencyPenalty(penalty float64) CallOption {
	return func(o *CallOptions) { o.FrequencyPenalty = penalty }
}

// WithPresencePenalty overrides presence_penalty.
func WithPresencePenalty(penalty float64) CallOption {
	return func(o *CallOptions) { o.PresencePenalty = penalty }
}
