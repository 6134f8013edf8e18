package auth

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jrsteele09/bot-dashboard/credentials"
	credentialstore "github.com/jrsteele09/bot-dashboard/credentials/pgstore"
	identitystore "github.com/jrsteele09/bot-dashboard/identity/pgstore"
	"github.com/jrsteele09/bot-dashboard/internal/pgdb"
	"github.com/pkg/errors"
)

type pgElevated struct {
	pool *pgxpool.Pool
}

var _ Elevated = (*pgElevated)(nil)

// Rotate runs the password write and the flag update in one transaction.
func (e *pgElevated) Rotate(ctx context.Context, identityID, newSecret string) error {
	tx, err := e.pool.Begin(ctx)
	if err != nil {
		return errors.Wrap(err, "[pgElevated.Rotate] Begin")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := identitystore.NewAdmin(tx).SetPassword(ctx, identityID, newSecret); err != nil {
		return errors.Wrap(err, "[pgElevated.Rotate] SetPassword")
	}
	cleared := false
	if err := credentialstore.NewRepo(tx).Update(ctx, identityID, credentials.Update{UsesDefaultSecret: &cleared}); err != nil {
		return errors.Wrap(err, "[pgElevated.Rotate] Update")
	}
	if err := tx.Commit(ctx); err != nil {
		return errors.Wrap(err, "[pgElevated.Rotate] Commit")
	}
	return nil
}

func (e *pgElevated) Close() {
	e.pool.Close()
}

// PostgresElevatedOpener opens the administrative role from adminDSN on every call.
func PostgresElevatedOpener(adminDSN string, timeout time.Duration) ElevatedOpener {
	return func(ctx context.Context) (Elevated, error) {
		if adminDSN == "" {
			return nil, errors.New("[PostgresElevatedOpener] admin dsn is not configured")
		}
		pool, err := pgdb.Open(ctx, adminDSN, timeout)
		if err != nil {
			return nil, errors.Wrap(err, "[PostgresElevatedOpener] pgdb.Open")
		}
		return &pgElevated{pool: pool}, nil
	}
}
