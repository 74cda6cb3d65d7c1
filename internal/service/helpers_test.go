package service

import (
	"github.com/ebetcoin/backend/internal/service/mocks"
	"github.com/shopspring/decimal"
)

type (
	mockStore = mocks.Store
	recorder  = mocks.Recorder
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func strptr(s string) *string { return &s }
