package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/tdenemark/hokieride/internal/models"
)

// ErrUnauthorized is returned for any credential that does not resolve to a
// member of the community.
var ErrUnauthorized = errors.New("unauthorized")

// Verifier turns an opaque request credential into an identity. Implementations
// must not apply community policy; that is the gate's job.
type Verifier interface {
	Verify(ctx context.Context, credential string) (models.Identity, error)
}

// Gate resolves credentials and enforces the community email-domain rule.
// It must run before every mutating operation; discovery stays public.
type Gate struct {
	verifier Verifier
	suffix   string
}

func NewGate(v Verifier, emailSuffix string) *Gate {
	return &Gate{verifier: v, suffix: emailSuffix}
}

// Resolve verifies the credential and checks the resolved email against the
// registered domain suffix. Any failure maps to ErrUnauthorized.
func (g *Gate) Resolve(ctx context.Context, credential string) (models.Identity, error) {
	id, err := g.verifier.Verify(ctx, credential)
	if err != nil {
		return models.Identity{}, ErrUnauthorized
	}
	if !strings.HasSuffix(id.Email, g.suffix) {
		return models.Identity{}, ErrUnauthorized
	}
	return id, nil
}
