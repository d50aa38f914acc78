package modelfamily_test

import (
	"testing"

	"github.com/effective-security/modelfactory/pkg/llms"
	"github.com/effective-security/modelfactory/pkg/modelfamily"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetect(t *testing.T) {
	t.Parallel()

	tcases := []struct {
		name    string
		family  string
		variant string
	}{
		{"llama2", "llama", ""},
		{"llama2:13b", "llama", ""},
		{"Llama3-Chat", "llama", "chat"},
		{"llama2-chat", "llama", "chat"},
		{"codellama:7b", "llama", "code"},
		{"codellama-instruct", "llama", "code"},
		{"llama3-instruct", "llama", "instruct"},
		{"wizard-cobra", "llama", ""},
		{"neural-chat:7b", "llama", "chat"},
		{"tinyllama", "llama", ""},
		{"mistral", "mistral", ""},
		{"mistral:7b-instruct", "mistral", "instruct"},
		{"mistral-chat", "mistral", "chat"},
		{"mixtral:8x7b", "mistral", ""},
		{"gemma2:9b", "gemma", ""},
		{"gemma-instruct", "gemma", ""},
		{"deepseek-coder:6.7b", "deepseek", "coder"},
		{"deepseek-code", "deepseek", "coder"},
		{"deepseek-llm", "deepseek", ""},
		{"deepseek-chat", "deepseek", "chat"},
		{"phi3", "", ""},
		{"qwen2.5-coder", "", ""},
		{"", "", ""},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			family, variant := modelfamily.Detect(tc.name)
			assert.Equal(t, tc.family, family)
			assert.Equal(t, tc.variant, variant)
		})
	}
}

func TestParams(t *testing.T) {
	t.Parallel()

	t.Run("llama chat", func(t *testing.T) {
		p := modelfamily.Params("llama", "chat")
		assert.Equal(t, llms.Params{
			"context_length":    4096,
			"temperature":       0.7,
			"top_p":             0.9,
			"repeat_penalty":    1.1,
			"top_k":             40,
			"presence_penalty":  0.2,
			"frequency_penalty": 0.2,
		}, p)
	})

	t.Run("llama code", func(t *testing.T) {
		p := modelfamily.Params("llama", "code")
		assert.Equal(t, 0.3, p["temperature"])
		assert.Equal(t, 1.2, p["repeat_penalty"])
		assert.Equal(t, 0.95, p["top_p"])
		assert.Equal(t, 40, p["top_k"])
		stop, ok := p.Strings("stop_sequences")
		require.True(t, ok)
		assert.Equal(t, []string{"\n\n", "```"}, stop)
	})

	t.Run("mistral instruct", func(t *testing.T) {
		p := modelfamily.Params("mistral", "instruct")
		assert.Equal(t, 0.6, p["temperature"])
		assert.Equal(t, 0.95, p["top_p"])
		assert.Equal(t, 8192, p["context_length"])
		assert.Equal(t, 50, p["top_k"])
	})

	t.Run("undefined variant gets base", func(t *testing.T) {
		assert.Equal(t, modelfamily.Params("mistral", ""), modelfamily.Params("mistral", "chat"))
		assert.Equal(t, modelfamily.Params("deepseek", ""), modelfamily.Params("deepseek", "code"))
	})

	t.Run("deepseek coder", func(t *testing.T) {
		p := modelfamily.Params("deepseek", "coder")
		assert.Equal(t, 0.3, p["temperature"])
		assert.Equal(t, 2, p["mirostat"])
		assert.Equal(t, 0.1, p["mirostat_eta"])
		assert.Equal(t, 4096, p["context_length"])
	})

	t.Run("unknown family", func(t *testing.T) {
		p := modelfamily.Params("phi", "chat")
		assert.Equal(t, llms.Params{"temperature": 0.7, "top_p": 0.9, "context_length": 4096}, p)
		assert.Equal(t, modelfamily.DefaultParams(), p)
	})

	t.Run("copies", func(t *testing.T) {
		p := modelfamily.Params("llama", "code")
		p["temperature"] = 2.0
		p["stop_sequences"].([]string)[0] = "x"

		p2 := modelfamily.Params("llama", "code")
		assert.Equal(t, 0.3, p2["temperature"])
		stop, _ := p2.Strings("stop_sequences")
		assert.Equal(t, "\n\n", stop[0])

		d := modelfamily.DefaultParams()
		d["top_p"] = 1.0
		assert.Equal(t, 0.9, modelfamily.DefaultParams()["top_p"])
	})
}

func TestClassify(t *testing.T) {
	t.Parallel()

	c := modelfamily.Classify("llama2-chat")
	assert.True(t, c.Matched())
	assert.Equal(t, "llama", c.Family)
	assert.Equal(t, "chat", c.Variant)
	assert.Equal(t, 0.2, c.Params["presence_penalty"])
	assert.Equal(t, 0.2, c.Params["frequency_penalty"])

	c = modelfamily.Classify("unknown-model")
	assert.False(t, c.Matched())
	assert.Empty(t, c.Variant)
	assert.Equal(t, modelfamily.DefaultParams(), c.Params)
}

func TestClassifier(t *testing.T) {
	t.Parallel()

	def := modelfamily.Default()
	assert.Equal(t, []string{"llama", "mistral", "gemma", "deepseek"}, def.Families())

	f, ok := def.Family("deepseek")
	require.True(t, ok)
	assert.True(t, f.HasVariant("coder"))
	assert.False(t, f.HasVariant("code"))
	_, ok = def.Family("phi")
	assert.False(t, ok)

	// registration order decides between overlapping patterns
	custom := modelfamily.New(
		modelfamily.NewFamily("phi", []string{`^phi\d*`}, llms.Params{"temperature": 0.4}, map[string]llms.Params{
			"code": {"temperature": 0.2},
		}),
		modelfamily.NewFamily("llama", []string{`llama`}, llms.Params{"temperature": 0.7}, nil),
	)
	family, variant := custom.Detect("phi-llama-coder")
	assert.Equal(t, "phi", family)
	assert.Equal(t, "code", variant)
	assert.Equal(t, llms.Params{"temperature": 0.2}, custom.Params(family, variant))

	family, variant = custom.Detect("codellama")
	assert.Equal(t, "llama", family)
	assert.Empty(t, variant, "family without variants")
}
