package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// MonthBalance is the cash view of a month: card-linked transactions are
// excluded and Rollover carries every earlier month's net, negative included.
type MonthBalance struct {
	Year        int             `json:"year"`
	Month       int             `json:"month"`
	Income      decimal.Decimal `json:"income"`
	Expense     decimal.Decimal `json:"expense"`
	Operational decimal.Decimal `json:"operational"`
	Rollover    decimal.Decimal `json:"rollover"`
	Final       decimal.Decimal `json:"final"`
}

// MonthSummary is the economic view of a month, card purchases included.
type MonthSummary struct {
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Net     decimal.Decimal `json:"net"`
}

type BalancePoint struct {
	Date    string          `json:"date"`
	Balance decimal.Decimal `json:"balance"`
}

type CategoryTotal struct {
	Category string          `json:"category"`
	Total    decimal.Decimal `json:"total"`
}

type Dashboard struct {
	Balance       MonthBalance    `json:"balance"`
	MonthToDate   MonthSummary    `json:"monthToDate"`
	History       []BalancePoint  `json:"history"`
	TopCategories []CategoryTotal `json:"topCategories"`
}

// DailyFlow is one row of the storage-side daily flow view.
type DailyFlow struct {
	Date              string          `json:"date"`
	TotalIn           decimal.Decimal `json:"totalIn"`
	TotalOut          decimal.Decimal `json:"totalOut"`
	DayBalance        decimal.Decimal `json:"dayBalance"`
	CumulativeBalance decimal.Decimal `json:"cumulativeBalance"`
}

// SemiannualFlow is one row of the storage-side half-year view. Half is 1 or 2.
type SemiannualFlow struct {
	Year     int             `json:"year"`
	Half     int             `json:"half"`
	TotalIn  decimal.Decimal `json:"totalIn"`
	TotalOut decimal.Decimal `json:"totalOut"`
	Net      decimal.Decimal `json:"net"`
}

type FlowViewRepository interface {
	GetDailyFlow(ctx context.Context, workspaceID int32) ([]*DailyFlow, error)
	GetSemiannualFlow(ctx context.Context, workspaceID int32) ([]*SemiannualFlow, error)
}
