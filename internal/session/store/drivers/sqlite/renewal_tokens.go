package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/sessiond/internal/session/domain"
)

// Times are stored as unix seconds, matching the resolution of JWT exp.
type renewalTokensRepo struct {
	db *sql.DB
}

func (r *renewalTokensRepo) Put(ctx context.Context, rec domain.RenewalRecord) error {
	created := rec.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO renewal_tokens (token_hash, username, expires_at, created_at) VALUES (?, ?, ?, ?)`,
		rec.TokenHash, rec.Username, rec.ExpiresAt.Unix(), created.Unix(),
	)
	return mapConstraint(err)
}

func (r *renewalTokensRepo) Get(ctx context.Context, tokenHash string) (domain.RenewalRecord, error) {
	var (
		rec              domain.RenewalRecord
		expires, created int64
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT token_hash, username, expires_at, created_at FROM renewal_tokens WHERE token_hash = ?`,
		tokenHash,
	).Scan(&rec.TokenHash, &rec.Username, &expires, &created)
	if err != nil {
		return domain.RenewalRecord{}, mapNotFound(err)
	}

	rec.ExpiresAt = time.Unix(expires, 0).UTC()
	rec.CreatedAt = time.Unix(created, 0).UTC()
	return rec, nil
}

func (r *renewalTokensRepo) Delete(ctx context.Context, tokenHash string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM renewal_tokens WHERE token_hash = ?`, tokenHash)
	return err
}

func (r *renewalTokensRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM renewal_tokens WHERE expires_at <= ?`, now.Unix())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
