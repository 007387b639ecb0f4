package browse

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/hpungsan/tome/internal/errors"
)

// Gate checks the shared admin password. It unlocks editing in the UI and
// is not an authentication model.
type Gate struct {
	hash []byte
}

// NewGate hashes password once. An empty password disables admin mode.
func NewGate(password string) (*Gate, error) {
	if password == "" {
		return &Gate{}, nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	return &Gate{hash: hash}, nil
}

// Enabled reports whether a password is configured.
func (g *Gate) Enabled() bool {
	return g != nil && len(g.hash) > 0
}

// Check returns nil when password matches.
func (g *Gate) Check(password string) error {
	if !g.Enabled() || password == "" {
		return errors.NewUnauthorized()
	}
	if bcrypt.CompareHashAndPassword(g.hash, []byte(password)) != nil {
		return errors.NewUnauthorized()
	}
	return nil
}
