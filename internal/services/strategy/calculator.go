package strategy

import (
	"fmt"
	"math"
	"strings"

	"OptionStrat/internal/domain/models"

	"github.com/shopspring/decimal"
)

// Metrics are the per-lot risk/reward figures of one template at a price.
type Metrics struct {
	MaxProfit       models.Amount
	MaxLoss         models.Amount // bounded losses are non-positive
	CapitalRequired float64
	Description     string
}

var (
	lotSize = decimal.NewFromInt(100)
	five    = decimal.NewFromInt(5)
	ten     = decimal.NewFromInt(10)
)

// share is a fraction of one lot's notional, or unlimited.
type share struct {
	pct       decimal.Decimal
	unbounded bool
}

func pct(s string) share { return share{pct: decimal.RequireFromString(s)} }

var unlimited = share{unbounded: true}

func (s share) of(p decimal.Decimal) models.Amount {
	if s.unbounded {
		return models.Unbounded()
	}
	return models.Bounded(p.Mul(s.pct).Mul(lotSize).InexactFloat64())
}

type formula struct {
	profit   share
	loss     share
	capital  share
	describe func(p decimal.Decimal) string
}

var formulas = map[string]formula{
	BullPutSpread: {
		profit: pct("0.05"), loss: pct("0.01"), capital: pct("0.01"),
		describe: func(p decimal.Decimal) string {
			return fmt.Sprintf("Sell 1 put(s) at %s, buy 1 put(s) at %s", usd(p.Sub(five)), usd(p.Sub(ten)))
		},
	},
	IronCondor: {
		profit: pct("0.03"), loss: pct("0.07"), capital: pct("0.07"),
		describe: func(p decimal.Decimal) string {
			return fmt.Sprintf("Iron Condor with profit zone between %s and %s", usd(p.Sub(five)), usd(p.Add(five)))
		},
	},
	CashSecuredPut: {
		profit: pct("0.02"), loss: pct("0.15"), capital: pct("1"),
		describe: func(p decimal.Decimal) string {
			return fmt.Sprintf("Sell 1 put(s) at %s strike, secure with %s cash", usd(p.Sub(five)), usdWhole(p.Mul(lotSize)))
		},
	},
	CoveredCall: {
		profit: pct("0.03"), loss: pct("0.10"), capital: pct("1"),
		describe: func(p decimal.Decimal) string {
			return fmt.Sprintf("Own 100 shares, sell 1 call at %s strike", usd(p.Add(five)))
		},
	},
	BullCallSpread: {
		profit: pct("0.04"), loss: pct("0.02"), capital: pct("0.02"),
		describe: func(p decimal.Decimal) string {
			return fmt.Sprintf("Buy 1 call(s) at %s, sell 1 call(s) at %s", usd(p), usd(p.Add(five)))
		},
	},
	BearPutSpread: {
		profit: pct("0.04"), loss: pct("0.02"), capital: pct("0.02"),
		describe: func(p decimal.Decimal) string {
			return fmt.Sprintf("Buy 1 put(s) at %s, sell 1 put(s) at %s", usd(p), usd(p.Sub(five)))
		},
	},
	LongStraddle: {
		profit: unlimited, loss: pct("0.05"), capital: pct("0.05"),
		describe: func(p decimal.Decimal) string {
			return fmt.Sprintf("Buy 1 call and 1 put both at %s strike", usd(p))
		},
	},
	ShortStrangle: {
		profit: pct("0.04"), loss: unlimited, capital: pct("0.20"),
		describe: func(p decimal.Decimal) string {
			return fmt.Sprintf("Sell 1 call at %s and 1 put at %s", usd(p.Add(ten)), usd(p.Sub(ten)))
		},
	},
}

// Known reports whether name has its own formula.
func Known(name string) bool {
	_, ok := formulas[name]
	return ok
}

// Compute evaluates the named template at price. Names without a formula
// fall back to the Bull Put Spread formula.
func Compute(name string, price float64) Metrics {
	f, ok := formulas[name]
	if !ok {
		f = formulas[BullPutSpread]
	}
	p := decimal.NewFromFloat(price)

	loss := f.loss.of(p)
	if !loss.IsUnbounded() {
		loss = models.Bounded(-math.Abs(loss.Value()))
	}
	return Metrics{
		MaxProfit:       f.profit.of(p),
		MaxLoss:         loss,
		CapitalRequired: f.capital.of(p).Display(price),
		Description:     f.describe(p),
	}
}

// usd formats d as "$1234.56".
func usd(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

// usdWhole formats d as "$17,550" (no decimals, thousands separators).
func usdWhole(d decimal.Decimal) string {
	s := d.StringFixed(0)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	if neg {
		return "-$" + b.String()
	}
	return "$" + b.String()
}
