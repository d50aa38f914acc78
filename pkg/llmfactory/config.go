package llmfactory

import (
	"path/filepath"
	"slices"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/modelfactory/pkg/llms"
	"github.com/effective-security/x/configloader"
)

const (
	// ProvidersFileName is the provider registry document in a config folder
	ProvidersFileName = "providers.yaml"
	// ModelsFileName is the model registry document in a config folder
	ModelsFileName = "models.yaml"
)

var (
	// ErrUnknownProvider is returned when a provider id is not configured
	ErrUnknownProvider = errors.New("unknown provider")
	// ErrUnknownModel is returned when a model id is not configured
	ErrUnknownModel = errors.New("unknown model")
)

// ProviderConfig specifies the endpoint and default parameters of a provider.
type ProviderConfig struct {
	BaseURL string `json:"base_url" yaml:"base_url"`
	// APIKey is optional, local servers do not require it
	APIKey        string      `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	DefaultParams llms.Params `json:"default_params,omitempty" yaml:"default_params,omitempty"`
}

// ModelConfig specifies a model entry of the model registry.
type ModelConfig struct {
	ModelName string `json:"model_name" yaml:"model_name"`
	Provider  string `json:"provider" yaml:"provider"`
	// Family and Variant are informational, written by the sync tool
	Family  string      `json:"family,omitempty" yaml:"family,omitempty"`
	Variant string      `json:"variant,omitempty" yaml:"variant,omitempty"`
	Params  llms.Params `json:"params,omitempty" yaml:"params,omitempty"`
}

// ModelRegistry is the model registry document.
type ModelRegistry struct {
	DefaultModel string                  `json:"default_model" yaml:"default_model"`
	Models       map[string]*ModelConfig `json:"models" yaml:"models"`
}

// ProviderRegistry is the provider registry document, keyed by provider id.
type ProviderRegistry map[string]*ProviderConfig

// ResolvedModelConfig is a model entry with the provider defaults applied.
type ResolvedModelConfig struct {
	// ID is the model id in the registry
	ID        string      `json:"id" yaml:"id"`
	ModelName string      `json:"model_name" yaml:"model_name"`
	Provider  string      `json:"provider" yaml:"provider"`
	Family    string      `json:"family,omitempty" yaml:"family,omitempty"`
	Variant   string      `json:"variant,omitempty" yaml:"variant,omitempty"`
	Params    llms.Params `json:"params" yaml:"params"`
}

// Key returns the cache key of the model instance
func (r *ResolvedModelConfig) Key() string {
	return r.Provider + "-" + r.ModelName
}

// Config is the loaded configuration
type Config struct {
	Providers ProviderRegistry
	Models    *ModelRegistry
}

// Load returns the configuration from the providers.yaml and models.yaml
// documents in the folder
func Load(dir string) (*Config, error) {
	return LoadConfig(filepath.Join(dir, ProvidersFileName), filepath.Join(dir, ModelsFileName))
}

// LoadConfig from the provider and model registry files
func LoadConfig(providersFile, modelsFile string) (*Config, error) {
	var providers ProviderRegistry
	err := configloader.UnmarshalAndExpand(providersFile, &providers)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load providers: %s", providersFile)
	}

	models := new(ModelRegistry)
	err = configloader.UnmarshalAndExpand(modelsFile, models)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load models: %s", modelsFile)
	}

	cfg := &Config{
		Providers: providers,
		Models:    models,
	}
	cfg.normalize()
	return cfg, nil
}

func (c *Config) normalize() {
	if c.Providers == nil {
		c.Providers = ProviderRegistry{}
	}
	if c.Models == nil {
		c.Models = new(ModelRegistry)
	}
	if c.Models.Models == nil {
		c.Models.Models = map[string]*ModelConfig{}
	}
	for name, p := range c.Providers {
		if p == nil {
			p = new(ProviderConfig)
			c.Providers[name] = p
		}
		p.DefaultParams.Normalize()
	}
	for name, m := range c.Models.Models {
		if m == nil {
			m = new(ModelConfig)
			c.Models.Models[name] = m
		}
		m.Params.Normalize()
	}
}

// ProviderConfig returns the provider configuration by its id
func (c *Config) ProviderConfig(name string) (*ProviderConfig, error) {
	p, ok := c.Providers[name]
	if !ok {
		return nil, errors.Mark(errors.Newf("unknown provider: %s", name), ErrUnknownProvider)
	}
	return p, nil
}

// DefaultModel returns the id of the default model
func (c *Config) DefaultModel() string {
	return c.Models.DefaultModel
}

// ModelNames returns the sorted model ids
func (c *Config) ModelNames() []string {
	names := make([]string, 0, len(c.Models.Models))
	for name := range c.Models.Models {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// ModelConfig returns the model configuration with the provider default
// params applied, the model params take precedence.
// If name is empty, the default model is returned.
func (c *Config) ModelConfig(name string) (*ResolvedModelConfig, error) {
	if name == "" {
		name = c.Models.DefaultModel
	}
	m, ok := c.Models.Models[name]
	if !ok {
		return nil, errors.Mark(errors.Newf("unknown model: %s", name), ErrUnknownModel)
	}
	p, err := c.ProviderConfig(m.Provider)
	if err != nil {
		return nil, err
	}

	return &ResolvedModelConfig{
		ID:        name,
		ModelName: m.ModelName,
		Provider:  m.Provider,
		Family:    m.Family,
		Variant:   m.Variant,
		Params:    p.DefaultParams.Merge(m.Params),
	}, nil
}
