package modelfamily

import (
	"strings"

	"github.com/effective-security/modelfactory/pkg/llms"
	"github.com/effective-security/modelfactory/pkg/metricskey"
	"github.com/effective-security/x/values"
	"github.com/effective-security/xlog"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/modelfactory", "modelfamily")

// Classification is the result of classifying a model name.
// Family and Variant are empty when not detected.
type Classification struct {
	Family  string
	Variant string
	Params  llms.Params
}

// Matched returns true if a family was detected
func (c Classification) Matched() bool {
	return c.Family != ""
}

// Classifier detects model families
type Classifier struct {
	families []*Family
	defaults llms.Params
}

// New returns a classifier for the families, in matching order
func New(families ...*Family) *Classifier {
	return &Classifier{
		families: families,
		defaults: DefaultParams(),
	}
}

var builtin = New(BuiltinFamilies()...)

// Default returns the classifier with the built-in families
func Default() *Classifier {
	return builtin
}

// Families returns the family names, in matching order
func (c *Classifier) Families() []string {
	names := make([]string, len(c.families))
	for i, f := range c.families {
		names[i] = f.Name
	}
	return names
}

// Family returns the family by name
func (c *Classifier) Family(name string) (*Family, bool) {
	for _, f := range c.families {
		if f.Name == name {
			return f, true
		}
	}
	return nil, false
}

// Detect returns the family and variant of the model name,
// or empty values if not detected.
func (c *Classifier) Detect(modelName string) (family string, variant string) {
	name := strings.ToLower(modelName)
	for _, f := range c.families {
		if !f.Matches(name) {
			continue
		}
		if len(f.Variants) > 0 {
			variant = detectVariant(f, name)
		}
		return f.Name, variant
	}
	return "", ""
}

func detectVariant(f *Family, name string) string {
	switch {
	case strings.Contains(name, "code"):
		// "coder" contains "code"
		if f.HasVariant(VariantCode) {
			return VariantCode
		}
		return VariantCoder
	case strings.Contains(name, VariantChat):
		return VariantChat
	case strings.Contains(name, VariantInstruct):
		return VariantInstruct
	}
	return ""
}

// Params returns a copy of the params for the family and variant.
// Unknown families get the default params; an unknown variant
// gets the family base params.
func (c *Classifier) Params(family, variant string) llms.Params {
	f, ok := c.Family(family)
	if !ok {
		return c.defaults.Clone()
	}
	if vp, ok := f.Variants[variant]; ok && variant != "" {
		return f.BaseParams.Merge(vp)
	}
	return f.BaseParams.Clone()
}

// Classify returns the family, variant and params of the model name
func (c *Classifier) Classify(modelName string) Classification {
	family, variant := c.Detect(modelName)
	res := Classification{
		Family:  family,
		Variant: variant,
		Params:  c.Params(family, variant),
	}

	logger.KV(xlog.DEBUG,
		"status", "classified",
		"model", modelName,
		"family", family,
		"variant", variant)

	metricskey.StatsModelsClassified.IncrCounter(1, values.StringsCoalesce(family, "unknown"))
	return res
}

// Detect returns the family and variant of the model name
// with the built-in families
func Detect(modelName string) (family string, variant string) {
	return builtin.Detect(modelName)
}

// Params returns the params for the family and variant
// with the built-in families
func Params(family, variant string) llms.Params {
	return builtin.Params(family, variant)
}

// Classify returns the classification of the model name
// with the built-in families
func Classify(modelName string) Classification {
	return builtin.Classify(modelName)
}
