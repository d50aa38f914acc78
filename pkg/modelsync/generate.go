package modelsync

import (
	"context"
	"slices"
	"time"

	"github.com/effective-security/modelfactory/pkg/llmfactory"
	"github.com/effective-security/modelfactory/pkg/llms"
	"github.com/effective-security/modelfactory/pkg/metricskey"
	"github.com/effective-security/modelfactory/pkg/modelfamily"
	"github.com/effective-security/xlog"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/modelfactory", "modelsync")

// DefaultPreferredFamilies is the order in which families are considered
// for the default model
var DefaultPreferredFamilies = []string{
	modelfamily.Mistral,
	modelfamily.Llama,
	modelfamily.Gemma,
	modelfamily.DeepSeek,
}

// Models is the models section of a generated document,
// keeps the order of the server listing
type Models = orderedmap.OrderedMap[string, *llmfactory.ModelConfig]

// Document is the generated model registry document
type Document struct {
	DefaultModel string  `json:"default_model" yaml:"default_model"`
	Models       *Models `json:"models" yaml:"models"`
}

// Result is the outcome of a sync
type Result struct {
	Document *Document
	// Families maps detected families to their sorted variants
	Families map[string][]string
	// Unmatched lists models configured with the default params
	Unmatched []string
	// DefaultParams are the params applied to the unmatched models
	DefaultParams llms.Params
}

// ModelNames returns the model ids in document order
func (r *Result) ModelNames() []string {
	names := make([]string, 0, r.Document.Models.Len())
	for pair := r.Document.Models.Oldest(); pair != nil; pair = pair.Next() {
		names = append(names, pair.Key)
	}
	return names
}

// FamilyNames returns the sorted detected families
func (r *Result) FamilyNames() []string {
	names := make([]string, 0, len(r.Families))
	for name := range r.Families {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Option configures the Generator
type Option func(*Generator)

// WithProvider specifies the provider id written into the generated entries
func WithProvider(provider string) Option {
	return func(g *Generator) {
		g.provider = provider
	}
}

// WithClassifier specifies the family classifier
func WithClassifier(c *modelfamily.Classifier) Option {
	return func(g *Generator) {
		g.classifier = c
	}
}

// WithPreferredFamilies specifies the family order for the default model
func WithPreferredFamilies(families ...string) Option {
	return func(g *Generator) {
		g.preferred = families
	}
}

// Generator builds model registry documents from model listings
type Generator struct {
	provider   string
	classifier *modelfamily.Classifier
	preferred  []string
}

// New returns a Generator
func New(opts ...Option) *Generator {
	g := &Generator{
		provider:   llmfactory.Ollama,
		classifier: modelfamily.Default(),
		preferred:  DefaultPreferredFamilies,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate builds the model registry document with the default Generator
func Generate(names []string) *Result {
	return New().Generate(names)
}

// Generate builds the model registry document for the model names,
// each model is classified and gets the params of its family and variant.
func (g *Generator) Generate(names []string) *Result {
	models := orderedmap.New[string, *llmfactory.ModelConfig]()
	families := map[string]map[string]bool{}
	var unmatched []string

	for _, name := range names {
		c := g.classifier.Classify(name)
		mc := &llmfactory.ModelConfig{
			ModelName: name,
			Provider:  g.provider,
			Family:    c.Family,
			Variant:   c.Variant,
			Params:    c.Params,
		}
		if c.Matched() {
			if families[c.Family] == nil {
				families[c.Family] = map[string]bool{}
			}
			if c.Variant != "" {
				families[c.Family][c.Variant] = true
			}
		} else {
			unmatched = append(unmatched, name)
		}
		models.Set(name, mc)
	}

	res := &Result{
		Document: &Document{
			DefaultModel: g.defaultModel(models, families),
			Models:       models,
		},
		Families:      make(map[string][]string, len(families)),
		Unmatched:     unmatched,
		DefaultParams: g.classifier.Params("", ""),
	}
	for family, variants := range families {
		list := make([]string, 0, len(variants))
		for v := range variants {
			list = append(list, v)
		}
		slices.Sort(list)
		res.Families[family] = list
	}
	return res
}

// defaultModel returns the first model without a variant of the first
// preferred family found, or the first model.
func (g *Generator) defaultModel(models *Models, families map[string]map[string]bool) string {
	for _, family := range g.preferred {
		if _, ok := families[family]; !ok {
			continue
		}
		for pair := models.Oldest(); pair != nil; pair = pair.Next() {
			if pair.Value.Family == family && pair.Value.Variant == "" {
				return pair.Key
			}
		}
	}
	if first := models.Oldest(); first != nil {
		return first.Key
	}
	return ""
}

// Sync lists the models from the server and generates the document
func (g *Generator) Sync(ctx context.Context, lister ModelLister) (*Result, error) {
	started := time.Now()
	defer metricskey.PerfSyncRun.MeasureSince(started, g.provider)

	names, err := lister.ListModels(ctx)
	if err != nil {
		logger.ContextKV(ctx, xlog.ERROR,
			"reason", "list_models",
			"provider", g.provider,
			"err", err.Error())
		return nil, err
	}

	res := g.Generate(names)
	metricskey.StatsSyncRuns.IncrCounter(1, g.provider)

	logger.ContextKV(ctx, xlog.DEBUG,
		"status", "synced",
		"provider", g.provider,
		"models", len(names),
		"default", res.Document.DefaultModel,
		"unmatched", len(res.Unmatched))
	return res, nil
}
