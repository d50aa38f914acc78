package ollama

import (
	"net/http"

	"github.com/effective-security/modelfactory/pkg/llms"
)

const (
	// DefaultBaseURL is the address of a local Ollama server.
	DefaultBaseURL = "http://localhost:11434"

	hostEnvVarName = "OLLAMA_HOST" //nolint:gosec
)

type options struct {
	baseURL    string
	model      string
	httpClient *http.Client
	params     llms.Params
	keepAlive  string
}

// Option is a functional option for the Ollama client.
type Option func(*options)

// WithBaseURL passes the Ollama server url to the client. If not set, the url
// is read from the OLLAMA_HOST environment variable. If still not set,
// DefaultBaseURL is used.
func WithBaseURL(baseURL string) Option {
	return func(opts *options) {
		opts.baseURL = baseURL
	}
}

// WithModel passes the model name to the client.
func WithModel(model string) Option {
	return func(opts *options) {
		opts.model = model
	}
}

// WithHTTPClient allows setting a custom HTTP client. If not set, the default value
// is http.DefaultClient.
func WithHTTPClient(client *http.Client) Option {
	return func(opts *options) {
		opts.httpClient = client
	}
}

// WithParams sets the inference parameters sent with every request.
func WithParams(params llms.Params) Option {
	return func(opts *options) {
		opts.params = params.Clone()
	}
}

// WithKeepAlive controls how long the model stays loaded after a request,
// e.g. "5m".
func WithKeepAlive(keepAlive string) Option {
	return func(opts *options) {
		opts.keepAlive = keepAlive
	}
}
