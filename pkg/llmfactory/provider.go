package llmfactory

import (
	"slices"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/modelfactory/pkg/llms"
	"github.com/effective-security/modelfactory/pkg/llms/ollama"
	"github.com/effective-security/modelfactory/pkg/llms/openai"
	"github.com/effective-security/x/values"
)

// Built-in provider ids
const (
	Ollama   = "ollama"
	LMStudio = "lmstudio"
	OpenAI   = "openai"
)

// LMStudioAPIKey is used when the lmstudio provider has no api_key configured,
// the local server accepts any token.
const LMStudioAPIKey = "not-needed"

// ProviderFactory creates a model client for a provider.
type ProviderFactory interface {
	CreateModel(cfg *ProviderConfig, modelName string, params llms.Params) (llms.Model, error)
}

// ProviderFactoryFunc is an adapter to use a function as ProviderFactory.
type ProviderFactoryFunc func(cfg *ProviderConfig, modelName string, params llms.Params) (llms.Model, error)

// CreateModel implements ProviderFactory
func (f ProviderFactoryFunc) CreateModel(cfg *ProviderConfig, modelName string, params llms.Params) (llms.Model, error) {
	return f(cfg, modelName, params)
}

// Registry maps provider ids to their factories.
type Registry struct {
	factories map[string]ProviderFactory
	lock      sync.RWMutex
}

// NewRegistry returns an empty registry
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]ProviderFactory),
	}
}

// DefaultRegistry returns a registry with the built-in providers
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(Ollama, ProviderFactoryFunc(NewOllama))
	r.Register(LMStudio, ProviderFactoryFunc(NewLMStudio))
	r.Register(OpenAI, ProviderFactoryFunc(NewOpenAI))
	return r
}

// Register adds or replaces the factory for the provider id
func (r *Registry) Register(name string, f ProviderFactory) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.factories[name] = f
}

// Get returns the factory for the provider id
func (r *Registry) Get(name string) (ProviderFactory, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	f, ok := r.factories[name]
	if !ok {
		return nil, errors.Mark(
			errors.Newf("unknown provider: %s, available: %s", name, strings.Join(r.names(), ", ")),
			ErrUnknownProvider)
	}
	return f, nil
}

// Names returns the sorted provider ids
func (r *Registry) Names() []string {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return r.names()
}

func (r *Registry) names() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// NewOllama creates a client for an Ollama server
func NewOllama(cfg *ProviderConfig, modelName string, params llms.Params) (llms.Model, error) {
	return ollama.New(
		ollama.WithBaseURL(cfg.BaseURL),
		ollama.WithModel(modelName),
		ollama.WithParams(params),
	)
}

// NewLMStudio creates a client for the OpenAI compatible LM Studio server
func NewLMStudio(cfg *ProviderConfig, modelName string, params llms.Params) (llms.Model, error) {
	return openai.New(
		openai.WithProvider(llms.ProviderLMStudio),
		openai.WithBaseURL(cfg.BaseURL),
		openai.WithToken(values.StringsCoalesce(cfg.APIKey, LMStudioAPIKey)),
		openai.WithModel(modelName),
		openai.WithParams(params),
	)
}

// NewOpenAI creates a client for the OpenAI API,
// OPENAI_API_KEY is used when api_key is not configured
func NewOpenAI(cfg *ProviderConfig, modelName string, params llms.Params) (llms.Model, error) {
	opts := []openai.Option{
		openai.WithProvider(llms.ProviderOpenAI),
		openai.WithModel(modelName),
		openai.WithParams(params),
	}
	if cfg.APIKey != "" {
		opts = append(opts, openai.WithToken(cfg.APIKey))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}
	return openai.New(opts...)
}
