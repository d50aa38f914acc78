package modelsync

import (
	"context"
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/modelfactory/pkg/llms/ollama"
	"github.com/ollama/ollama/api"
)

//go:generate mockgen -destination=../../mocks/mockmodelsync/lister_mock.gen.go -package mockmodelsync github.com/effective-security/modelfactory/pkg/modelsync ModelLister

// ModelLister returns the names of the models available on an inference server
type ModelLister interface {
	ListModels(ctx context.Context) ([]string, error)
}

// OllamaLister lists the models installed on an Ollama server
type OllamaLister struct {
	client *api.Client
}

// NewOllamaLister returns a lister for the Ollama server at baseURL
func NewOllamaLister(baseURL string, httpClient *http.Client) (*OllamaLister, error) {
	client, err := ollama.NewClient(baseURL, httpClient)
	if err != nil {
		return nil, err
	}
	return &OllamaLister{client: client}, nil
}

// ListModels returns the model names in the order reported by the server
func (l *OllamaLister) ListModels(ctx context.Context) ([]string, error) {
	resp, err := l.client.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list ollama models")
	}
	names := make([]string, 0, len(resp.Models))
	for _, m := range resp.Models {
		names = append(names, m.Name)
	}
	return names, nil
}
