// Package pricing converts gas usage into fiat cost and relative savings.
package pricing

import (
	"math/big"

	"mintbench/internal/domain"
)

var weiPerEther = new(big.Rat).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))

// Assumptions are the pricing inputs fixed for the whole run.
type Assumptions struct {
	// UnitGasPrice is the price of one gas unit in wei.
	UnitGasPrice *big.Rat
	// ExchangeRate is the fiat value of one wei.
	ExchangeRate *big.Rat
}

// AssumptionsFromEther builds Assumptions from a gas price in gwei and a
// fiat price per ether.
func AssumptionsFromEther(gasPriceGwei, fiatPerEther *big.Rat) Assumptions {
	a := Assumptions{}
	if gasPriceGwei != nil {
		a.UnitGasPrice = new(big.Rat).Mul(gasPriceGwei, big.NewRat(1_000_000_000, 1))
	}
	if fiatPerEther != nil {
		a.ExchangeRate = new(big.Rat).Quo(fiatPerEther, weiPerEther)
	}
	return a
}

type Model struct {
	assumptions Assumptions
	costPerGas  *big.Rat
}

func NewModel(a Assumptions) (*Model, error) {
	if err := validate("unit_gas_price", a.UnitGasPrice); err != nil {
		return nil, err
	}
	if err := validate("exchange_rate", a.ExchangeRate); err != nil {
		return nil, err
	}
	stored := Assumptions{
		UnitGasPrice: new(big.Rat).Set(a.UnitGasPrice),
		ExchangeRate: new(big.Rat).Set(a.ExchangeRate),
	}
	return &Model{
		assumptions: stored,
		costPerGas:  new(big.Rat).Mul(stored.UnitGasPrice, stored.ExchangeRate),
	}, nil
}

func validate(field string, value *big.Rat) error {
	if value == nil {
		return &domain.InvalidMetricError{Field: field, Value: "missing"}
	}
	if value.Sign() < 0 {
		return &domain.InvalidMetricError{Field: field, Value: value.RatString()}
	}
	return nil
}

// GasPriceGwei returns the unit gas price expressed in gwei.
func (m *Model) GasPriceGwei() *big.Rat {
	return new(big.Rat).Quo(m.assumptions.UnitGasPrice, big.NewRat(1_000_000_000, 1))
}

// FiatPerEther returns the exchange rate expressed per whole ether.
func (m *Model) FiatPerEther() *big.Rat {
	return new(big.Rat).Mul(m.assumptions.ExchangeRate, weiPerEther)
}

// CostOf returns gasUsed × unitGasPrice × exchangeRate.
func (m *Model) CostOf(gasUsed uint64) *big.Rat {
	gas := new(big.Rat).SetInt(new(big.Int).SetUint64(gasUsed))
	return gas.Mul(gas, m.costPerGas)
}

// RelativeReduction returns (1 - candidate/baseline) × 100 at full precision.
func RelativeReduction(baseline, candidate uint64) (float64, error) {
	if baseline == 0 {
		return 0, domain.ErrDivisionByZero
	}
	b := new(big.Int).SetUint64(baseline)
	diff := new(big.Int).Sub(b, new(big.Int).SetUint64(candidate))
	ratio := new(big.Rat).SetFrac(diff.Mul(diff, big.NewInt(100)), b)
	percent, _ := ratio.Float64()
	return percent, nil
}
