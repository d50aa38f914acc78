package llms

import (
	"context"
)

//go:generate mockgen -destination=../../mocks/mockllms/llm_mock.gen.go -package mockllms github.com/effective-security/modelfactory/pkg/llms Model

// ProviderType is the type of provider.
type ProviderType string

const (
	// ProviderOllama is a local Ollama inference server.
	ProviderOllama ProviderType = "OLLAMA"
	// ProviderLMStudio is a local LM Studio server with an OpenAI compatible API.
	ProviderLMStudio ProviderType = "LMSTUDIO"
	// ProviderOpenAI is the OpenAI API, or any other OpenAI compatible endpoint.
	ProviderOpenAI ProviderType = "OPENAI"
)

// Model is an interface the provider clients implement.
type Model interface {
	// GetProviderType returns the type of provider.
	GetProviderType() ProviderType
	// Name returns the model name the client was created for.
	Name() string
	// GenerateContent asks the model to generate content from a sequence of
	// messages.
	GenerateContent(ctx context.Context, messages []Message, options ...CallOption) (*ContentResponse, error)
}

// Capability is a bitmask indicating supported features of an LLM provider.
type Capability uint64

const (
	// Basic text or chat generation
	CapabilityText Capability = 1 << iota
	// Streaming of partial responses
	CapabilityStreaming
	// Open weight models / self-hosted
	CapabilitySelfHosted
	// System prompt support
	CapabilitySystemPrompt
)

var providerCapabilities = map[ProviderType]Capability{
	ProviderOllama: CapabilityText |
		CapabilityStreaming |
		CapabilitySelfHosted |
		CapabilitySystemPrompt,

	ProviderLMStudio: CapabilityText |
		CapabilityStreaming |
		CapabilitySelfHosted |
		CapabilitySystemPrompt,

	ProviderOpenAI: CapabilityText |
		CapabilityStreaming |
		CapabilitySystemPrompt,
}

// ProviderCapabilities returns the capabilities of the provider type.
func ProviderCapabilities(pt ProviderType) Capability {
	return providerCapabilities[pt]
}

// Supports returns true if the provider type has the capability.
func (p ProviderType) Supports(c Capability) bool {
	return ProviderCapabilities(p)&c != 0
}

