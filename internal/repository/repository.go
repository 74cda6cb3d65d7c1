package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
)

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrWalletNotFound      = errors.New("wallet not found")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrDepositNotFound     = errors.New("deposit not found")
	ErrDepositNotPending   = errors.New("deposit is not pending")
	ErrWithdrawalNotFound  = errors.New("withdrawal not found")
	ErrWithdrawalNotOpen   = errors.New("withdrawal is already settled")
	ErrPromoCodeExists     = errors.New("promo code already exists")
	ErrPromoCodeExhausted  = errors.New("promo code usage limit reached")
	ErrWelcomeCodeUsed     = errors.New("welcome code already applied")
	ErrMarkerExists        = errors.New("ledger marker already applied")
	ErrMarkerMissing       = errors.New("ledger marker not applied")
	ErrCurrencyMismatch    = errors.New("wallet currency does not match the amount")
	ErrAlreadyBanned       = errors.New("user is already banned")
	ErrNotBanned           = errors.New("user is not banned")
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

type Repository struct {
	db  *sqlx.DB
	ids *snowflake.Node
}

func New(dsn string, nodeID int64) (*Repository, error) {
	db, err := sqlx.Connect("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create txid generator: %w", err)
	}

	return &Repository{db: db, ids: node}, nil
}

// NewWithDB wraps an existing handle. Used by tests and tools that manage the
// connection themselves.
func NewWithDB(db *sqlx.DB, node *snowflake.Node) *Repository {
	return &Repository{db: db, ids: node}
}

func (r *Repository) Close() error {
	return r.db.Close()
}

// withTx runs fn inside a transaction and commits when fn returns nil.
func (r *Repository) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *Repository) nextTxID() string {
	return r.ids.Generate().String()
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func isUniqueViolation(err error) bool {
	return pgCode(err) == pgUniqueViolation
}

func isForeignKeyViolation(err error) bool {
	return pgCode(err) == pgForeignKeyViolation
}

// balance >= 0 is also enforced by a CHECK constraint on wallets
func isCheckViolation(err error) bool {
	return pgCode(err) == pgCheckViolation
}
