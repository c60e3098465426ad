package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aussiebroadwan/sessiond/internal/session/store"
	"github.com/aussiebroadwan/sessiond/pkg/cryptox"
)

// EnsureSeedAccount registers username unless it already exists. With an
// empty password a random one is generated and returned so the operator can
// log in; created reports whether an account was inserted.
func (s *SessionService) EnsureSeedAccount(ctx context.Context, username, password string) (generated string, created bool, err error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return "", false, ErrMissingFields
	}

	_, err = s.Store.Accounts().Find(ctx, username)
	if err == nil {
		return "", false, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return "", false, fmt.Errorf("service: find seed account: %w", err)
	}

	if password == "" {
		if password, err = cryptox.GeneratePassword(); err != nil {
			return "", false, err
		}
		generated = password
	}

	switch err := s.Register(ctx, username, password); {
	case errors.Is(err, ErrDuplicateUsername):
		// Another instance seeded it first.
		return "", false, nil
	case err != nil:
		return "", false, err
	}
	return generated, true, nil
}
