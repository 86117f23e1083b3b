package statement

import (
	"github.com/SscSPs/finanalysis/internal/core/domain"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// KeyRatios derives headline ratios in the human sign convention: revenue is -sales,
// profit is -netIncome and equity and liabilities are credit balances. A ratio is zero
// when its denominator is not positive.
func KeyRatios(st *domain.ProcessedStatement) domain.KeyRatios {
	revenue := st.Section(domain.BucketSales).Total.Neg()
	assets := st.TotalAssets

	return domain.KeyRatios{
		GrossMarginPct: percent(st.GrossProfit.Neg(), revenue),
		NetMarginPct:   percent(st.NetIncome.Neg(), revenue),
		EquityRatioPct: percent(st.TotalEquity.Neg(), assets),
		DebtRatioPct:   percent(st.TotalLiabilities.Neg(), assets),
		AssetTurnover:  ratio(revenue, assets),
	}
}

func percent(num, denom decimal.Decimal) decimal.Decimal {
	if !denom.IsPositive() {
		return decimal.Zero
	}
	return num.Mul(hundred).Div(denom).Round(2)
}

func ratio(num, denom decimal.Decimal) decimal.Decimal {
	if !denom.IsPositive() {
		return decimal.Zero
	}
	return num.Div(denom).Round(2)
}
