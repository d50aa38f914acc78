package openai

import (
	"net/http"

	"github.com/effective-security/modelfactory/pkg/llms"
)

const (
	tokenEnvVarName   = "OPENAI_API_KEY"  //nolint:gosec
	baseURLEnvVarName = "OPENAI_BASE_URL" //nolint:gosec
)

// DefaultBaseURL is the OpenAI API endpoint.
const DefaultBaseURL = "https://api.openai.com/v1"

type options struct {
	token      string
	model      string
	baseURL    string
	provider   llms.ProviderType
	httpClient *http.Client
	params     llms.Params
	maxRetries int
}

// Option is a functional option for the OpenAI client.
type Option func(*options)

// WithToken passes the OpenAI API token to the client. If not set, the token
// is read from the OPENAI_API_KEY environment variable.
func WithToken(token string) Option {
	return func(opts *options) {
		opts.token = token
	}
}

// WithModel passes the model name to the client.
func WithModel(model string) Option {
	return func(opts *options) {
		opts.model = model
	}
}

// WithBaseURL passes the OpenAI base url to the client. If not set, the base url
// is read from the OPENAI_BASE_URL environment variable. If still not set in ENV
// VAR OPENAI_BASE_URL, then the default value is https://api.openai.com/v1 is used.
func WithBaseURL(baseURL string) Option {
	return func(opts *options) {
		opts.baseURL = baseURL
	}
}

// WithProvider passes the provider type reported by the client. If not set,
// the default value is llms.ProviderOpenAI.
func WithProvider(provider llms.ProviderType) Option {
	return func(opts *options) {
		opts.provider = provider
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

// WithMaxRetries sets the number of retries of the underlying SDK,
// a negative value keeps the SDK default.
func WithMaxRetries(retries int) Option {
	return func(opts *options) {
		opts.maxRetries = retries
	}
}
