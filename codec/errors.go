package codec

import "errors"

var (
	// ErrMissingIdentity indicates the codec was built without a structure
	// identity service.
	ErrMissingIdentity = errors.New("codec: identity service is required")

	// ErrUnknownStructure indicates a packet references a structure ID this
	// codec has never encoded.
	ErrUnknownStructure = errors.New("codec: unknown structure id")
)
