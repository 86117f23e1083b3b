package accounting

import (
	"github.com/shopspring/decimal"
)

// SplitSigned turns a signed amount into debit/credit magnitudes.
// Positive values are debits, negative values credits.
func SplitSigned(amount decimal.Decimal) (debit, credit decimal.Decimal) {
	if amount.IsNegative() {
		return decimal.Zero, amount.Abs()
	}
	return amount, decimal.Zero
}

// NormalizeDebitCredit moves a negative debit to the credit side and a negative credit to the
// debit side, so both results are non-negative and debit-credit is preserved.
func NormalizeDebitCredit(debit, credit decimal.Decimal) (decimal.Decimal, decimal.Decimal) {
	if debit.IsNegative() {
		credit = credit.Add(debit.Abs())
		debit = decimal.Zero
	}
	if credit.IsNegative() {
		debit = debit.Add(credit.Abs())
		credit = decimal.Zero
	}
	return debit, credit
}

// SignedAmount returns debit minus credit.
func SignedAmount(debit, credit decimal.Decimal) decimal.Decimal {
	return debit.Sub(credit)
}

// Sum adds up a list of amounts.
func Sum(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}
