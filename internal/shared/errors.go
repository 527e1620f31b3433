package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Authentication errors
	ErrAuthFailed       = fmt.Errorf("authentication failed")
	ErrNotAuthenticated = fmt.Errorf("not authenticated")

	// Pipeline errors
	ErrValidation = fmt.Errorf("invalid request")
	ErrGeneration = fmt.Errorf("generation failed")

	// Catalog lookup errors. ErrCatalogNotFound and ErrCatalogTransient both
	// wrap ErrCatalogLookup so callers can match on the family or the kind.
	ErrCatalogLookup    = fmt.Errorf("catalog lookup failed")
	ErrCatalogNotFound  = fmt.Errorf("%w: no results", ErrCatalogLookup)
	ErrCatalogTransient = fmt.Errorf("%w: transient failure", ErrCatalogLookup)

	// Entity and lifecycle errors
	ErrNotFound     = fmt.Errorf("not found")
	ErrUnauthorized = fmt.Errorf("caller does not own this resource")
	ErrInvalidState = fmt.Errorf("operation invalid for current state")

	// Provider errors
	ErrProviderPublish    = fmt.Errorf("provider publish failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
)
