package types

import (
	"time"

	"github.com/rxtech-lab/argo-trading-env/pkg/errors"
)

type PurchaseType string

const (
	PurchaseTypeBuy  PurchaseType = "BUY"
	PurchaseTypeSell PurchaseType = "SELL"
)

// TradeRecord is an executed buy or sell.
type TradeRecord struct {
	ID     string       `yaml:"id" json:"id" csv:"id"`
	Symbol string       `yaml:"symbol" json:"symbol" csv:"symbol"`
	Side   PurchaseType `yaml:"side" json:"side" csv:"side"`
	// Quantity is the executed quantity in units of the asset.
	Quantity float64 `yaml:"quantity" json:"quantity" csv:"quantity"`
	// RequestedPrice is the price the trade was asked for, before slippage.
	RequestedPrice float64 `yaml:"requested_price" json:"requested_price" csv:"requested_price"`
	// ExecutedPrice is the price after slippage.
	ExecutedPrice float64 `yaml:"executed_price" json:"executed_price" csv:"executed_price"`
	// Notional is ExecutedPrice * Quantity, excluding fees.
	Notional float64 `yaml:"notional" json:"notional" csv:"notional"`
	Fee      float64 `yaml:"fee" json:"fee" csv:"fee"`
	// BalanceAfter is the cash balance once the trade settled.
	BalanceAfter float64   `yaml:"balance_after" json:"balance_after" csv:"balance_after"`
	ExecutedAt   time.Time `yaml:"executed_at" json:"executed_at" csv:"executed_at"`
}

// TradeFailure describes a per-asset trade that was skipped during a step.
type TradeFailure struct {
	Symbol   string           `yaml:"symbol" json:"symbol"`
	Side     PurchaseType     `yaml:"side,omitempty" json:"side,omitempty"`
	Quantity float64          `yaml:"quantity" json:"quantity"`
	Code     errors.ErrorCode `yaml:"code" json:"code"`
	Message  string           `yaml:"message" json:"message"`
}

// NewTradeFailure builds a TradeFailure from the error returned by the portfolio.
func NewTradeFailure(symbol string, side PurchaseType, quantity float64, err error) TradeFailure {
	return TradeFailure{
		Symbol:   symbol,
		Side:     side,
		Quantity: quantity,
		Code:     errors.GetCode(err),
		Message:  err.Error(),
	}
}
