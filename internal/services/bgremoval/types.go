package bgremoval

import "context"

// ServiceNone marks an outcome where every provider was skipped or failed and
// the original image was passed through unchanged.
const ServiceNone = "none"

// Outcome is the result of one background-removal run. Succeeded is true even
// on total provider failure: the degrade-to-identity path returns the input
// bytes with ServiceUsed set to "none", because background removal is a
// quality enhancement, not a correctness requirement.
type Outcome struct {
	Succeeded      bool
	ProcessedImage []byte
	ServiceUsed    string
	ErrorDetail    string
}

// Provider is one external background-removal service. Implementations
// normalize their own request/response shapes; the chain only sees bytes.
type Provider interface {
	Name() string
	Configured() bool
	Remove(ctx context.Context, image []byte) ([]byte, error)
}
