// Package llms provides the model abstraction shared by all providers configured through the factory.
//
// Each subpackage wraps one provider library behind the Model interface.
// The `llms.go` file contains the Model interface and provider types,
// `options.go` the per-call options and `params.go` the declarative
// parameter sets loaded from the registry documents.
package llms
