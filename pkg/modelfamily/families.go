package modelfamily

import (
	"regexp"

	"github.com/effective-security/modelfactory/pkg/llms"
)

// Family names
const (
	Llama    = "llama"
	Mistral  = "mistral"
	Gemma    = "gemma"
	DeepSeek = "deepseek"
)

// Variant names
const (
	VariantCode     = "code"
	VariantCoder    = "coder"
	VariantChat     = "chat"
	VariantInstruct = "instruct"
)

// Family describes how to recognize a model family and its parameters.
type Family struct {
	Name       string
	Patterns   []*regexp.Regexp
	BaseParams llms.Params
	// Variants are param overrides applied on top of BaseParams
	Variants map[string]llms.Params
}

// NewFamily returns a family, patterns are compiled as case-insensitive
// regular expressions.
func NewFamily(name string, patterns []string, base llms.Params, variants map[string]llms.Params) *Family {
	f := &Family{
		Name:       name,
		BaseParams: base,
		Variants:   variants,
	}
	for _, p := range patterns {
		f.Patterns = append(f.Patterns, regexp.MustCompile("(?i)"+p))
	}
	return f
}

// Matches returns true if any pattern matches the model name
func (f *Family) Matches(name string) bool {
	for _, re := range f.Patterns {
		if re.MatchString(name) {
			return true
		}
	}
	return false
}

// HasVariant returns true if the family defines the variant
func (f *Family) HasVariant(variant string) bool {
	_, ok := f.Variants[variant]
	return ok
}

var stopCode = []string{"\n\n", "```"}

// defaultParams are used for models that match no family
var defaultParams = llms.Params{
	llms.ParamTemperature:   0.7,
	llms.ParamTopP:          0.9,
	llms.ParamContextLength: 4096,
}

// DefaultParams returns a copy of the params for unmatched models
func DefaultParams() llms.Params {
	return defaultParams.Clone()
}

// BuiltinFamilies returns the built-in family table, in matching order
func BuiltinFamilies() []*Family {
	return []*Family{
		NewFamily(Llama,
			[]string{`llama\d*`, `wizard-cobra`, `neural-chat`},
			llms.Params{
				llms.ParamContextLength:    4096,
				llms.ParamTemperature:      0.7,
				llms.ParamTopP:             0.9,
				llms.ParamRepeatPenalty:    1.1,
				llms.ParamTopK:             40,
				llms.ParamPresencePenalty:  0,
				llms.ParamFrequencyPenalty: 0,
			},
			map[string]llms.Params{
				VariantCode: {
					llms.ParamTemperature:   0.3,
					llms.ParamRepeatPenalty: 1.2,
					llms.ParamTopP:          0.95,
					llms.ParamStopSequences: stopCode,
				},
				VariantChat: {
					llms.ParamTemperature:      0.7,
					llms.ParamPresencePenalty:  0.2,
					llms.ParamFrequencyPenalty: 0.2,
				},
			}),
		NewFamily(Mistral,
			[]string{`mistral\d*`, `mixtral\d*`},
			llms.Params{
				llms.ParamContextLength:    8192,
				llms.ParamTemperature:      0.7,
				llms.ParamTopP:             0.9,
				llms.ParamRepeatPenalty:    1.1,
				llms.ParamTopK:             50,
				llms.ParamPresencePenalty:  0,
				llms.ParamFrequencyPenalty: 0,
			},
			map[string]llms.Params{
				VariantInstruct: {
					llms.ParamTemperature: 0.6,
					llms.ParamTopP:        0.95,
				},
			}),
		NewFamily(Gemma,
			[]string{`gemma\d*`},
			llms.Params{
				llms.ParamContextLength:    8192,
				llms.ParamTemperature:      0.7,
				llms.ParamTopP:             0.9,
				llms.ParamRepeatPenalty:    1.1,
				llms.ParamTopK:             40,
				llms.ParamPresencePenalty:  0,
				llms.ParamFrequencyPenalty: 0,
			},
			nil),
		NewFamily(DeepSeek,
			[]string{`deepseek`},
			llms.Params{
				llms.ParamContextLength: 4096,
				llms.ParamTemperature:   0.5,
				llms.ParamTopP:          0.95,
				llms.ParamRepeatPenalty: 1.1,
				llms.ParamMirostat:      2,
				llms.ParamMirostatEta:   0.1,
			},
			map[string]llms.Params{
				VariantCoder: {
					llms.ParamTemperature:   0.3,
					llms.ParamRepeatPenalty: 1.2,
					llms.ParamTopP:          0.95,
					llms.ParamStopSequences: stopCode,
				},
			}),
	}
}
