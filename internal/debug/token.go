package debug

import "github.com/google/uuid"

// TokenGenerator produces report tokens for correlating debug output with
// downstream consumers. Implemented by UUIDv7Generator (production) and
// FixedGenerator (tests).
type TokenGenerator interface {
	Generate() string
}

// UUIDv7Generator issues time-ordered UUIDv7 tokens, so report listings
// sort chronologically.
type UUIDv7Generator struct{}

// Generate returns a new UUIDv7 string, falling back to v4 if the system
// clock source fails.
func (UUIDv7Generator) Generate() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// FixedGenerator returns the same token on every call. For deterministic
// tests and golden files only.
type FixedGenerator struct {
	Token string
}

// Generate returns the fixed token.
func (g FixedGenerator) Generate() string {
	return g.Token
}
