package overlay

import "github.com/google/uuid"

// IDProvider issues stable identifiers for annotations and overlay items.
type IDProvider interface {
	NewID() string
}

type uuidProvider struct{}

// NewUUIDProvider constructs an IDProvider that issues random UUIDs,
// matching the client-generated annotation hashes the backend expects.
func NewUUIDProvider() IDProvider {
	return &uuidProvider{}
}

func (p *uuidProvider) NewID() string {
	return uuid.NewString()
}
