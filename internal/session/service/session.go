package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/aussiebroadwan/sessiond/internal/session/domain"
	"github.com/aussiebroadwan/sessiond/internal/session/store"
	"github.com/aussiebroadwan/sessiond/pkg/cryptox"
	"github.com/aussiebroadwan/sessiond/pkg/jwtx"
	"github.com/aussiebroadwan/sessiond/pkg/slogx"
)

// SessionService owns the credential lifecycle: registration, login,
// access-token verification, renewal and revocation.
//
// It keeps no per-request state. Everything that must outlive a request lives
// in Store.
type SessionService struct {
	Store      store.Store
	Codec      *jwtx.Codec
	Hasher     *cryptox.Hasher
	AccessTTL  time.Duration
	RenewalTTL time.Duration

	dummyOnce sync.Once
	dummyHash string
}

// Register creates an account. The username is trimmed; the password is used
// verbatim.
func (s *SessionService) Register(ctx context.Context, username, password string) error {
	l := slogx.FromContext(ctx)

	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return ErrMissingFields
	}

	hash, err := s.Hasher.HashPassword(password)
	if err != nil {
		return fmt.Errorf("service: hash password: %w", err)
	}

	err = s.Store.Accounts().Create(ctx, domain.Account{
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    s.now(),
	})
	if errors.Is(err, store.ErrAlreadyExists) {
		l.Info("registration rejected, username taken", slog.String("username", username))
		return ErrDuplicateUsername
	}
	if err != nil {
		return fmt.Errorf("service: create account: %w", err)
	}

	l.Info("account registered", slog.String("username", username))
	return nil
}

// Login checks the credentials and issues a fresh access/renewal pair. An
// unknown username and a wrong password produce the same error and roughly
// the same amount of work.
func (s *SessionService) Login(ctx context.Context, username, password string) (*domain.TokenPair, error) {
	l := slogx.FromContext(ctx)

	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrMissingFields
	}

	acct, err := s.Store.Accounts().Find(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		_ = s.Hasher.VerifyPassword(password, s.dummy())
		l.Info("login failed", slog.String("username", username))
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("service: find account: %w", err)
	}

	if err := s.Hasher.VerifyPassword(password, acct.PasswordHash); err != nil {
		if !errors.Is(err, cryptox.ErrPasswordMismatch) {
			l.Error("stored password hash unreadable", slog.String("username", username), slog.Any("error", err))
		}
		l.Info("login failed", slog.String("username", username))
		return nil, ErrInvalidCredentials
	}

	pair, err := s.issuePair(ctx, acct.Username)
	if err != nil {
		return nil, err
	}

	l.Info("login succeeded", slog.String("username", acct.Username))
	return pair, nil
}

// Authorize verifies an access token and returns its subject. No store lookup
// takes place. Renewal tokens are refused even when validly signed.
func (s *SessionService) Authorize(_ context.Context, accessToken string) (string, error) {
	if accessToken == "" {
		return "", ErrMissingToken
	}

	claims, err := s.Codec.Verify(accessToken)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.IsRefresh() {
		return "", fmt.Errorf("%w: renewal token used as access token", ErrInvalidToken)
	}
	return claims.Subject, nil
}

// Renew exchanges a renewal token for a new access token. The renewal token
// itself is not rotated.
//
// A validly signed token whose JWT expiry has passed still goes through the
// store lookup, so the first presentation after expiry reports
// ErrTokenExpired (and deletes the record) and later ones ErrUnknownToken.
func (s *SessionService) Renew(ctx context.Context, renewalToken string) (string, error) {
	l := slogx.FromContext(ctx)

	if renewalToken == "" {
		return "", ErrMissingToken
	}

	claims, err := s.Codec.VerifyKind(renewalToken, jwtx.KindRefresh)
	jwtExpired := errors.Is(err, jwtx.ErrExpired)
	if err != nil && !jwtExpired {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	fp := cryptox.FingerprintToken(renewalToken)
	rec, err := s.Store.RenewalTokens().Get(ctx, fp)
	if errors.Is(err, store.ErrNotFound) {
		return "", ErrUnknownToken
	}
	if err != nil {
		return "", fmt.Errorf("service: lookup renewal token: %w", err)
	}

	if rec.Username != claims.Subject {
		l.Warn("renewal record subject mismatch", slog.String("subject", claims.Subject))
		return "", ErrUnknownToken
	}

	if jwtExpired || rec.Expired(s.now()) {
		if err := s.Store.RenewalTokens().Delete(ctx, fp); err != nil {
			l.Error("failed to delete expired renewal token", slog.Any("error", err))
		}
		return "", ErrTokenExpired
	}

	access, err := s.Codec.Issue(claims.Subject, "", s.AccessTTL)
	if err != nil {
		return "", fmt.Errorf("service: issue access token: %w", err)
	}
	return access, nil
}

// Profile returns the public view of username. A missing account means the
// token outlived its subject and is reported as ErrInvalidToken.
func (s *SessionService) Profile(ctx context.Context, username string) (domain.Profile, error) {
	acct, err := s.Store.Accounts().Find(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Profile{}, ErrInvalidToken
	}
	if err != nil {
		return domain.Profile{}, fmt.Errorf("service: find account: %w", err)
	}
	return domain.Profile{Username: acct.Username}, nil
}

// Revoke deletes the store record for a renewal token. Expired tokens may be
// revoked; revoking twice is not an error.
func (s *SessionService) Revoke(ctx context.Context, renewalToken string) error {
	if renewalToken == "" {
		return ErrMissingToken
	}

	_, err := s.Codec.VerifyKind(renewalToken, jwtx.KindRefresh)
	if err != nil && !errors.Is(err, jwtx.ErrExpired) {
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if err := s.Store.RenewalTokens().Delete(ctx, cryptox.FingerprintToken(renewalToken)); err != nil {
		return fmt.Errorf("service: delete renewal token: %w", err)
	}
	return nil
}

func (s *SessionService) issuePair(ctx context.Context, username string) (*domain.TokenPair, error) {
	now := s.now()

	access, err := s.Codec.Issue(username, "", s.AccessTTL)
	if err != nil {
		return nil, fmt.Errorf("service: issue access token: %w", err)
	}
	renewal, err := s.Codec.Issue(username, jwtx.KindRefresh, s.RenewalTTL)
	if err != nil {
		return nil, fmt.Errorf("service: issue renewal token: %w", err)
	}

	err = s.Store.RenewalTokens().Put(ctx, domain.RenewalRecord{
		TokenHash: cryptox.FingerprintToken(renewal),
		Username:  username,
		ExpiresAt: now.Add(s.RenewalTTL),
		CreatedAt: now,
	})
	if errors.Is(err, store.ErrAlreadyExists) {
		return nil, ErrDuplicateToken
	}
	if err != nil {
		return nil, fmt.Errorf("service: persist renewal token: %w", err)
	}

	return &domain.TokenPair{AccessToken: access, RefreshToken: renewal}, nil
}

// dummy returns a hash to verify against when the account does not exist.
func (s *SessionService) dummy() string {
	s.dummyOnce.Do(func() {
		h, err := s.Hasher.HashPassword("sessiond-dummy-password")
		if err == nil {
			s.dummyHash = h
		}
	})
	return s.dummyHash
}

func (s *SessionService) now() time.Time {
	if s.Codec != nil && s.Codec.Now != nil {
		return s.Codec.Now()
	}
	return time.Now()
}
