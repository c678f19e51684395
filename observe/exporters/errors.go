package exporters

import "errors"

// ErrEndpointNotConfigured indicates a required endpoint environment
// variable is not set.
var ErrEndpointNotConfigured = errors.New("exporters: endpoint not configured")
