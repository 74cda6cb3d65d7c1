// Package events publishes ledger events after their database transaction
// has committed. Delivery is best effort: a failed publish is logged and the
// request that caused it still succeeds.
package events

import (
	"context"
	"time"

	"github.com/ebetcoin/backend/pkg/logger"
	"github.com/shopspring/decimal"
)

// Routing keys
const (
	DepositSubmitted    = "ledger.deposit.submitted"
	DepositApproved     = "ledger.deposit.approved"
	DepositRejected     = "ledger.deposit.rejected"
	WithdrawalSubmitted = "ledger.withdrawal.submitted"
	WithdrawalCompleted = "ledger.withdrawal.completed"
	WithdrawalRejected  = "ledger.withdrawal.rejected"
	CreditBatch         = "ledger.credit.batch"
	WelcomeApplied      = "ledger.welcome.applied"
)

type Event struct {
	Type        string          `json:"type"`
	UserID      int64           `json:"user_id,omitempty"`
	ReferenceID string          `json:"reference_id,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency,omitempty"`
	OccurredAt  time.Time       `json:"occurred_at"`
	Data        map[string]any  `json:"data,omitempty"`
}

type Publisher interface {
	Publish(ctx context.Context, ev Event) error
	Close() error
}

// NopPublisher drops every event. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
func (NopPublisher) Close() error                         { return nil }

// Emit publishes ev and logs instead of returning a failure.
func Emit(ctx context.Context, p Publisher, ev Event) {
	if p == nil {
		return
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}
	if err := p.Publish(ctx, ev); err != nil {
		logger.Warn(ctx).Err(err).
			Str("event", ev.Type).
			Int64("user_id", ev.UserID).
			Msg("failed to publish ledger event")
	}
}
