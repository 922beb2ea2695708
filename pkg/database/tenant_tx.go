package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	// TenantSetting is the variable the row level security policies read.
	TenantSetting = "app.current_tenant_id"

	setTenantSQL    = `SELECT set_config('app.current_tenant_id', $1, true)`
	clearTenantSQL  = `SELECT set_config('app.current_tenant_id', '', false)`
	advisoryLockSQL = `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`
)

// PostgreSQL error codes we branch on
const (
	CodeUniqueViolation     = "23505"
	CodeForeignKeyViolation = "23503"
	CodeExclusionViolation  = "23P01"
	CodeNumericOutOfRange   = "22003"
)

// WithTenantTx runs fn in a single transaction on one pooled connection with
// app.current_tenant_id bound to tenantID for that transaction only.
// fn's error, a panic, or ctx cancellation rolls everything back.
func WithTenantTx(ctx context.Context, db PgxIface, tenantID uuid.UUID, fn func(tx pgx.Tx) error) (err error) {
	if tenantID == uuid.Nil {
		return errors.New("tenant transaction without tenant")
	}

	tx, err := db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tenant tx: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(context.Background())
			panic(p)
		}
		if err != nil {
			// ctx may already be done, rollback must still reach the server
			_ = tx.Rollback(context.Background())
		}
	}()

	if _, err = tx.Exec(ctx, setTenantSQL, tenantID.String()); err != nil {
		return fmt.Errorf("bind tenant %s: %w", tenantID.String(), err)
	}

	if err = fn(tx); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tenant tx: %w", err)
	}

	return nil
}

// LockKey takes a transaction scoped advisory lock; it is released on commit or rollback.
func LockKey(ctx context.Context, q Querier, key string) error {
	if _, err := q.Exec(ctx, advisoryLockSQL, key); err != nil {
		return fmt.Errorf("advisory lock %s: %w", key, err)
	}
	return nil
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func IsExclusionViolation(err error) bool {
	return pgCode(err) == CodeExclusionViolation
}

func IsUniqueViolation(err error) bool {
	return pgCode(err) == CodeUniqueViolation
}

func IsForeignKeyViolation(err error) bool {
	return pgCode(err) == CodeForeignKeyViolation
}

func IsNumericOutOfRange(err error) bool {
	return pgCode(err) == CodeNumericOutOfRange
}
