package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/sessiond/internal/session/domain"
)

type renewalTokensRepo struct {
	db *sql.DB
}

func (r *renewalTokensRepo) Put(ctx context.Context, rec domain.RenewalRecord) error {
	created := rec.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO renewal_tokens (token_hash, username, expires_at, created_at) VALUES ($1, $2, $3, $4)`,
		rec.TokenHash, rec.Username, rec.ExpiresAt.UTC(), created.UTC(),
	)
	return mapConstraint(err)
}

func (r *renewalTokensRepo) Get(ctx context.Context, tokenHash string) (domain.RenewalRecord, error) {
	var rec domain.RenewalRecord
	err := r.db.QueryRowContext(ctx,
		`SELECT token_hash, username, expires_at, created_at FROM renewal_tokens WHERE token_hash = $1`,
		tokenHash,
	).Scan(&rec.TokenHash, &rec.Username, &rec.ExpiresAt, &rec.CreatedAt)
	if err != nil {
		return domain.RenewalRecord{}, mapNotFound(err)
	}

	rec.ExpiresAt = rec.ExpiresAt.UTC()
	rec.CreatedAt = rec.CreatedAt.UTC()
	return rec, nil
}

func (r *renewalTokensRepo) Delete(ctx context.Context, tokenHash string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM renewal_tokens WHERE token_hash = $1`, tokenHash)
	return err
}

func (r *renewalTokensRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM renewal_tokens WHERE expires_at <= $1`, now.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
