package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/sessiond/internal/session/domain"
)

type accountsRepo struct {
	db *sql.DB
}

func (r *accountsRepo) Find(ctx context.Context, username string) (domain.Account, error) {
	var (
		a       domain.Account
		created int64
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT username, password_hash, created_at FROM accounts WHERE username = ?`,
		username,
	).Scan(&a.Username, &a.PasswordHash, &created)
	if err != nil {
		return domain.Account{}, mapNotFound(err)
	}
	a.CreatedAt = time.Unix(created, 0).UTC()
	return a, nil
}

func (r *accountsRepo) Create(ctx context.Context, a domain.Account) error {
	created := a.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO accounts (username, password_hash, created_at) VALUES (?, ?, ?)`,
		a.Username, a.PasswordHash, created.Unix(),
	)
	return mapConstraint(err)
}

func (r *accountsRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM accounts`).Scan(&n)
	return n, err
}
