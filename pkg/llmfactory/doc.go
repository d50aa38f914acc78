// Package llmfactory loads the provider and model registry documents,
// resolves the inference parameters for a model and creates cached model
// clients through a registry of provider factories.
package llmfactory
