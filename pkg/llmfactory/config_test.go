package llmfactory_test

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/modelfactory/pkg/llmfactory"
	"github.com/effective-security/modelfactory/pkg/llms"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_LoadConfig(t *testing.T) {
	cfg, err := llmfactory.Load("testdata")
	require.NoError(t, err)
	require.Len(t, cfg.Providers, 2)
	assert.Equal(t, "llama2", cfg.DefaultModel())
	assert.Equal(t, []string{"llama2", "llama2-alias", "llama2-chat", "local-mistral", "orphan"}, cfg.ModelNames())

	p, err := cfg.ProviderConfig("lmstudio")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:1234/v1", p.BaseURL)
	assert.Empty(t, p.APIKey)
	assert.Equal(t, llms.Params{"temperature": 0.7, "max_tokens": 1024}, p.DefaultParams)

	_, err = llmfactory.LoadConfig("testdata/missing.yaml", "testdata/models.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load providers")

	_, err = llmfactory.LoadConfig("testdata/providers.yaml", "testdata/invalid.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load models")

	_, err = llmfactory.Load("testdata/nodir")
	require.Error(t, err)
}

func Test_ModelConfig(t *testing.T) {
	cfg, err := llmfactory.Load("testdata")
	require.NoError(t, err)

	t.Run("default", func(t *testing.T) {
		mc, err := cfg.ModelConfig("")
		require.NoError(t, err)
		assert.Equal(t, "llama2", mc.ID)
		assert.Equal(t, "llama2", mc.ModelName)
		assert.Equal(t, "ollama", mc.Provider)
		assert.Equal(t, "ollama-llama2", mc.Key())
		assert.Equal(t, llms.Params{
			"temperature":    0.5,
			"top_p":          0.9,
			"context_length": 4096,
		}, mc.Params)
	})

	t.Run("overrides", func(t *testing.T) {
		mc, err := cfg.ModelConfig("llama2-chat")
		require.NoError(t, err)
		assert.Equal(t, "llama2-chat:13b", mc.ModelName)
		assert.Equal(t, "llama", mc.Family)
		assert.Equal(t, "chat", mc.Variant)
		assert.Equal(t, llms.Params{
			"temperature":       0.7,
			"top_p":             0.9,
			"context_length":    4096,
			"presence_penalty":  0.2,
			"frequency_penalty": 0.2,
			"stop_sequences":    []any{"\n\n", "```"},
		}, mc.Params)
	})

	t.Run("no model params", func(t *testing.T) {
		mc, err := cfg.ModelConfig("local-mistral")
		require.NoError(t, err)
		assert.Equal(t, "lmstudio", mc.Provider)
		assert.Equal(t, llms.Params{"temperature": 0.7, "max_tokens": 1024}, mc.Params)
	})

	t.Run("resolved params are copies", func(t *testing.T) {
		mc, err := cfg.ModelConfig("llama2")
		require.NoError(t, err)
		mc.Params["temperature"] = 1.5

		p, err := cfg.ProviderConfig("ollama")
		require.NoError(t, err)
		assert.Equal(t, 0.7, p.DefaultParams["temperature"])
		assert.Equal(t, 0.5, cfg.Models.Models["llama2"].Params["temperature"])
	})

	t.Run("unknown model", func(t *testing.T) {
		_, err := cfg.ModelConfig("gpt-5")
		require.Error(t, err)
		assert.True(t, errors.Is(err, llmfactory.ErrUnknownModel))
		assert.EqualError(t, err, "unknown model: gpt-5")
	})

	t.Run("unknown provider", func(t *testing.T) {
		_, err := cfg.ModelConfig("orphan")
		require.Error(t, err)
		assert.True(t, errors.Is(err, llmfactory.ErrUnknownProvider))
		assert.EqualError(t, err, "unknown provider: vllm")

		_, err = cfg.ProviderConfig("vllm")
		assert.True(t, errors.Is(err, llmfactory.ErrUnknownProvider))
	})
}
