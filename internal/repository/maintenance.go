package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/ebetcoin/backend/internal/ledger"
	"github.com/ebetcoin/backend/internal/model"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// MarkerUSDToEBT guards the one-time USD to EBT conversion.
const MarkerUSDToEBT = "usd_to_ebt"

// ConversionReport counts the rows a currency conversion touched.
type ConversionReport struct {
	Wallets      int64 `json:"wallets"`
	Transactions int64 `json:"transactions"`
	Withdrawals  int64 `json:"withdrawals"`
}

// GetMarker returns when a marker was applied, or nil when it was not.
func (r *Repository) GetMarker(ctx context.Context, name string) (*time.Time, error) {
	var appliedAt time.Time
	err := r.db.GetContext(ctx, &appliedAt, "SELECT applied_at FROM ledger_markers WHERE name = $1", name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &appliedAt, nil
}

// ConvertCurrency multiplies every USD amount by rate and relabels it EBT. The
// marker insert and all updates share one transaction, so a second run fails
// with ErrMarkerExists and writes nothing.
func (r *Repository) ConvertCurrency(ctx context.Context, rate decimal.Decimal) (*ConversionReport, error) {
	if !rate.IsPositive() {
		return nil, ledger.ErrNonPositiveRate
	}

	var rep ConversionReport
	err := r.withTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO ledger_markers (name) VALUES ($1)
			ON CONFLICT (name) DO NOTHING`, MarkerUSDToEBT)
		if err != nil {
			return fmt.Errorf("failed to claim conversion marker: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrMarkerExists
		}

		return rescale(ctx, tx, &rep, rate, "*", model.CurrencyUSD, model.CurrencyEBT)
	})
	if err != nil {
		return nil, err
	}
	return &rep, nil
}

// RevertCurrency undoes ConvertCurrency. It only runs while the marker exists
// and removes it, so repeated down runs cannot divide twice.
func (r *Repository) RevertCurrency(ctx context.Context, rate decimal.Decimal) (*ConversionReport, error) {
	if !rate.IsPositive() {
		return nil, ledger.ErrNonPositiveRate
	}

	var rep ConversionReport
	err := r.withTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM ledger_markers WHERE name = $1`, MarkerUSDToEBT)
		if err != nil {
			return fmt.Errorf("failed to release conversion marker: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrMarkerMissing
		}

		return rescale(ctx, tx, &rep, rate, "/", model.CurrencyEBT, model.CurrencyUSD)
	})
	if err != nil {
		return nil, err
	}
	return &rep, nil
}

// rescale applies op rate to the amount columns of every row in currency from.
// op is one of the two literals above, never caller input.
func rescale(ctx context.Context, tx *sqlx.Tx, rep *ConversionReport, rate decimal.Decimal, op, from, to string) error {
	steps := []struct {
		query string
		count *int64
	}{
		{`UPDATE wallets SET balance = ROUND(balance ` + op + ` $1, 2), locked_balance = ROUND(locked_balance ` + op + ` $1, 2),
			currency = $3, updated_at = NOW() WHERE currency = $2`, &rep.Wallets},
		{`UPDATE transactions SET amount = ROUND(amount ` + op + ` $1, 2), balance_after = ROUND(balance_after ` + op + ` $1, 2),
			currency = $3, updated_at = NOW() WHERE currency = $2`, &rep.Transactions},
		{`UPDATE withdrawals SET amount = ROUND(amount ` + op + ` $1, 2),
			currency = $3, updated_at = NOW() WHERE currency = $2`, &rep.Withdrawals},
	}

	for _, s := range steps {
		res, err := tx.ExecContext(ctx, s.query, rate, from, to)
		if err != nil {
			return fmt.Errorf("failed to rescale amounts: %w", err)
		}
		*s.count, _ = res.RowsAffected()
	}
	return nil
}

// DeduplicateWallets merges every user's wallets into the lowest-id one.
// Balances and locked balances are summed, transactions are repointed and
// the extra rows deleted, all in one transaction.
func (r *Repository) DeduplicateWallets(ctx context.Context) ([]ledger.Merge, error) {
	var merges []ledger.Merge

	err := r.withTx(ctx, func(tx *sqlx.Tx) error {
		var wallets []model.Wallet
		err := tx.SelectContext(ctx, &wallets, `
			SELECT * FROM wallets
			WHERE user_id IN (SELECT user_id FROM wallets GROUP BY user_id HAVING COUNT(*) > 1)
			ORDER BY user_id, id
			FOR UPDATE`)
		if err != nil {
			return fmt.Errorf("failed to load duplicate wallets: %w", err)
		}

		groups := ledger.GroupByUser(wallets)
		userIDs := make([]int64, 0, len(groups))
		for userID := range groups {
			userIDs = append(userIDs, userID)
		}
		sort.Slice(userIDs, func(i, j int) bool { return userIDs[i] < userIDs[j] })

		for _, userID := range userIDs {
			m, err := ledger.MergeWallets(groups[userID])
			if err != nil {
				return err
			}
			if err := applyMerge(ctx, tx, m); err != nil {
				return fmt.Errorf("merge wallets of user %d: %w", m.Survivor.UserID, err)
			}
			merges = append(merges, m)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return merges, nil
}

func applyMerge(ctx context.Context, tx *sqlx.Tx, m ledger.Merge) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE wallets SET balance = $1, locked_balance = $2, updated_at = NOW()
		WHERE id = $3`,
		m.Survivor.Balance, m.Survivor.LockedBalance, m.Survivor.ID)
	if err != nil {
		return err
	}

	for _, id := range m.Removed {
		if _, err := tx.ExecContext(ctx, `UPDATE transactions SET wallet_id = $1 WHERE wallet_id = $2`, m.Survivor.ID, id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM wallets WHERE id = $1`, id); err != nil {
			return err
		}
	}
	return nil
}
