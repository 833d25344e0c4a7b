package meetings

import (
	"encoding/base64"

	"github.com/google/uuid"
)

// IDProvider issues identifiers for new rows.
type IDProvider interface {
	NewID() (string, error)
}

// LinkProvider issues the public link tokens meetings are shared under.
type LinkProvider interface {
	NewLink() (string, error)
}

type uuidProvider struct{}

// NewUUIDProvider constructs an IDProvider that issues UUIDv7 identifiers.
func NewUUIDProvider() IDProvider {
	return &uuidProvider{}
}

func (p *uuidProvider) NewID() (string, error) {
	value, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return value.String(), nil
}

type randomLinkProvider struct{}

// NewRandomLinkProvider constructs a LinkProvider that issues 22-character
// URL-safe tokens carrying 128 bits of randomness, enough that accidental
// collision across all meetings ever created is negligible.
func NewRandomLinkProvider() LinkProvider {
	return &randomLinkProvider{}
}

func (p *randomLinkProvider) NewLink() (string, error) {
	value, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(value[:]), nil
}
