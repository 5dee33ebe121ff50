package commission_fee

import "github.com/shopspring/decimal"

// ProportionalCommissionFee charges a fixed fraction of the trade notional.
type ProportionalCommissionFee struct {
	Rate float64
}

// NewProportionalCommissionFee creates a fee model charging rate * price * quantity.
func NewProportionalCommissionFee(rate float64) CommissionFee {
	return &ProportionalCommissionFee{Rate: rate}
}

func (c *ProportionalCommissionFee) Calculate(quantity float64, price float64) float64 {
	if quantity <= 0 || price <= 0 || c.Rate <= 0 {
		return 0
	}

	fee := decimal.NewFromFloat(price).
		Mul(decimal.NewFromFloat(quantity)).
		Mul(decimal.NewFromFloat(c.Rate))

	return fee.InexactFloat64()
}
