package portfolio

import (
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/rxtech-lab/argo-trading-env/internal/types"
	"github.com/rxtech-lab/argo-trading-env/pkg/errors"
	"github.com/shopspring/decimal"
)

// CalculateRisk returns the notional of the trade as a fraction of the balance.
// It is +Inf when the balance is exhausted so that any trade exceeds the risk limit.
func (p *Portfolio) CalculateRisk(price, quantity float64) float64 {
	if p.balance <= 0 {
		return math.Inf(1)
	}

	return price * quantity / p.balance
}

// CanInvestMore reports whether the position in symbol, after buying quantity at price,
// stays within the growth limit of total portfolio value. The traded symbol is valued at
// price, every other holding at its last known price.
func (p *Portfolio) CanInvestMore(symbol string, price, quantity float64) bool {
	newValue := p.holdings[symbol]*price + price*quantity

	total := p.balance
	for held, qty := range p.holdings {
		if held == symbol {
			total += qty * price

			continue
		}

		total += qty * p.lastPrices[held]
	}

	if total <= 0 {
		return false
	}

	return newValue/total <= p.growthLimit
}

// ApplySlippage perturbs price by a uniform factor in [-factor, factor].
func (p *Portfolio) ApplySlippage(price, factor float64) float64 {
	if factor <= 0 {
		return price
	}

	return price * (1 + (p.rng.Float64()*2-1)*factor)
}

func (p *Portfolio) executionPrice(price float64) float64 {
	if p.config.Profile == ProfileBasic {
		return price
	}

	return p.ApplySlippage(price, p.config.SlippageFactor)
}

// Buy purchases quantity units of symbol. A failed buy leaves the portfolio unchanged.
func (p *Portfolio) Buy(symbol string, price, quantity float64) (types.TradeRecord, error) {
	if !p.tradingActive {
		return types.TradeRecord{}, errors.New(errors.ErrCodeTradingHalted, "trading is halted")
	}

	if err := validateOrder(price, quantity); err != nil {
		return types.TradeRecord{}, err
	}

	executed := p.executionPrice(price)

	if p.config.Profile != ProfileBasic {
		if risk := p.CalculateRisk(executed, quantity); risk > p.riskLimit {
			return types.TradeRecord{}, errors.Newf(errors.ErrCodeRiskExceeded,
				"trade risk %.2f%% exceeds risk limit %.2f%%", risk*100, p.riskLimit*100)
		}

		if !p.CanInvestMore(symbol, executed, quantity) {
			return types.TradeRecord{}, errors.Newf(errors.ErrCodeGrowthLimitExceeded,
				"position in %s would exceed growth limit %.2f%%", symbol, p.growthLimit*100)
		}
	}

	notional := decimal.NewFromFloat(executed).Mul(decimal.NewFromFloat(quantity))
	fee := decimal.NewFromFloat(p.commission.Calculate(quantity, executed))
	totalCost := notional.Add(fee)
	balance := decimal.NewFromFloat(p.balance)

	if totalCost.GreaterThan(balance) {
		return types.TradeRecord{}, errors.Newf(errors.ErrCodeInsufficientBalance,
			"total cost %s exceeds balance %s", totalCost.StringFixed(2), balance.StringFixed(2))
	}

	p.balance = balance.Sub(totalCost).InexactFloat64()
	p.holdings[symbol] = decimal.NewFromFloat(p.holdings[symbol]).Add(decimal.NewFromFloat(quantity)).InexactFloat64()
	p.lastPrices[symbol] = price

	return p.record(symbol, types.PurchaseTypeBuy, quantity, price, executed, notional, fee), nil
}

// Sell disposes of quantity units of symbol. A failed sell leaves the portfolio unchanged.
func (p *Portfolio) Sell(symbol string, price, quantity float64) (types.TradeRecord, error) {
	if !p.tradingActive {
		return types.TradeRecord{}, errors.New(errors.ErrCodeTradingHalted, "trading is halted")
	}

	if err := validateOrder(price, quantity); err != nil {
		return types.TradeRecord{}, err
	}

	held := p.holdings[symbol]
	if held < quantity {
		return types.TradeRecord{}, errors.Newf(errors.ErrCodeInsufficientHoldings,
			"cannot sell %v %s, holding %v", quantity, symbol, held)
	}

	executed := p.executionPrice(price)
	notional := decimal.NewFromFloat(executed).Mul(decimal.NewFromFloat(quantity))
	fee := decimal.NewFromFloat(p.commission.Calculate(quantity, executed))
	proceeds := notional.Sub(fee)

	if !proceeds.IsPositive() {
		return types.TradeRecord{}, errors.Newf(errors.ErrCodeInvalidQuantity,
			"sale proceeds %s do not cover the commission", notional.StringFixed(2))
	}

	p.balance = decimal.NewFromFloat(p.balance).Add(proceeds).InexactFloat64()

	remaining := decimal.NewFromFloat(held).Sub(decimal.NewFromFloat(quantity))
	if remaining.IsZero() {
		delete(p.holdings, symbol)
	} else {
		p.holdings[symbol] = remaining.InexactFloat64()
	}

	p.lastPrices[symbol] = price

	return p.record(symbol, types.PurchaseTypeSell, quantity, price, executed, notional, fee), nil
}

func (p *Portfolio) record(symbol string, side types.PurchaseType, quantity, requested, executed float64, notional, fee decimal.Decimal) types.TradeRecord {
	return types.TradeRecord{
		ID:             uuid.New().String(),
		Symbol:         symbol,
		Side:           side,
		Quantity:       quantity,
		RequestedPrice: requested,
		ExecutedPrice:  executed,
		Notional:       notional.InexactFloat64(),
		Fee:            fee.InexactFloat64(),
		BalanceAfter:   p.balance,
		ExecutedAt:     time.Now(),
	}
}

func validateOrder(price, quantity float64) error {
	if math.IsNaN(quantity) || math.IsInf(quantity, 0) || quantity <= 0 {
		return errors.Newf(errors.ErrCodeInvalidQuantity, "quantity must be positive, got %v", quantity)
	}

	if math.IsNaN(price) || math.IsInf(price, 0) || price <= 0 {
		return errors.Newf(errors.ErrCodeInvalidPrice, "price must be positive, got %v", price)
	}

	return nil
}
