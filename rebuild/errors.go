package rebuild

import "errors"

var (
	// ErrValueCount indicates the shape consumed fewer or more leaves than
	// the value sequence supplied. This is a contract violation and is never
	// silently padded or truncated.
	ErrValueCount = errors.New("rebuild: value count does not match shape")

	// ErrNilShape indicates a nil shape node was supplied.
	ErrNilShape = errors.New("rebuild: shape is nil")

	// ErrUnknownStrategy indicates a strategy name the package does not know.
	ErrUnknownStrategy = errors.New("rebuild: unknown strategy")

	// ErrPlanBuild indicates a reconstruction plan could not be compiled for
	// a shape. Planned reconstruction recovers from it by falling back.
	ErrPlanBuild = errors.New("rebuild: cannot compile plan for shape")
)
