package llmfactory

import (
	"slices"
	"sync"

	"github.com/effective-security/modelfactory/pkg/llms"
	"github.com/effective-security/modelfactory/pkg/metricskey"
	"github.com/effective-security/xlog"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/modelfactory", "llmfactory")

// ModelInstance is a model client created by the factory
type ModelInstance struct {
	// Name is the model id in the registry
	Name      string
	ModelName string
	Provider  string
	Params    llms.Params
	Model     llms.Model
}

// Key returns the cache key of the instance
func (m *ModelInstance) Key() string {
	return m.Provider + "-" + m.ModelName
}

// Factory is the interface for creating and caching LLM models.
type Factory interface {
	// Create returns the model client for the model id,
	// if modelName is empty, the default model is used.
	// Clients are cached by provider and model name,
	// forceNew creates a new client and replaces the cached one.
	Create(modelName string, forceNew bool) (*ModelInstance, error)
	// ListActiveModels returns the cache keys of the created models,
	// in the order they were first created.
	ListActiveModels() []string
	// Config returns the configuration
	Config() *Config
}

// Option configures the factory
type Option func(*factory)

// WithRegistry specifies the provider registry,
// by default the built-in providers are used.
func WithRegistry(r *Registry) Option {
	return func(f *factory) {
		f.registry = r
	}
}

type factory struct {
	cfg      *Config
	registry *Registry
	cache    map[string]*ModelInstance
	order    []string
	lock     sync.Mutex
}

// LoadFactory returns the factory for the configuration folder
func LoadFactory(dir string, opts ...Option) (Factory, error) {
	cfg, err := Load(dir)
	if err != nil {
		return nil, err
	}
	return New(cfg, opts...), nil
}

// New creates a new LLM factory
func New(cfg *Config, opts ...Option) Factory {
	f := &factory{
		cfg:   cfg,
		cache: make(map[string]*ModelInstance),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.registry == nil {
		f.registry = DefaultRegistry()
	}
	return f
}

func (f *factory) Config() *Config {
	return f.cfg
}

func (f *factory) Create(modelName string, forceNew bool) (*ModelInstance, error) {
	mc, err := f.cfg.ModelConfig(modelName)
	if err != nil {
		return nil, err
	}
	key := mc.Key()

	f.lock.Lock()
	defer f.lock.Unlock()

	if !forceNew {
		if inst, ok := f.cache[key]; ok {
			metricskey.StatsModelCacheHits.IncrCounter(1, mc.Provider, mc.ModelName)
			return inst, nil
		}
	}

	pc, err := f.cfg.ProviderConfig(mc.Provider)
	if err != nil {
		return nil, err
	}
	pf, err := f.registry.Get(mc.Provider)
	if err != nil {
		return nil, err
	}

	model, err := pf.CreateModel(pc, mc.ModelName, mc.Params)
	if err != nil {
		logger.KV(xlog.ERROR,
			"reason", "create_model",
			"provider", mc.Provider,
			"model", mc.ModelName,
			"err", err.Error())
		return nil, err
	}

	inst := &ModelInstance{
		Name:      mc.ID,
		ModelName: mc.ModelName,
		Provider:  mc.Provider,
		Params:    mc.Params,
		Model:     model,
	}
	if _, ok := f.cache[key]; !ok {
		f.order = append(f.order, key)
	}
	f.cache[key] = inst

	logger.KV(xlog.DEBUG,
		"status", "created_model",
		"key", key,
		"provider", mc.Provider,
		"model", mc.ModelName,
		"force_new", forceNew)

	metricskey.StatsModelsCreated.IncrCounter(1, mc.Provider, mc.ModelName)
	return inst, nil
}

func (f *factory) ListActiveModels() []string {
	f.lock.Lock()
	defer f.lock.Unlock()
	return slices.Clone(f.order)
}
