package accounting_test

import (
	"testing"

	"github.com/SscSPs/finanalysis/internal/utils/accounting"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestSplitSigned(t *testing.T) {
	debit, credit := accounting.SplitSigned(d("150"))
	assert.True(t, d("150").Equal(debit))
	assert.True(t, credit.IsZero())

	debit, credit = accounting.SplitSigned(d("-75.5"))
	assert.True(t, debit.IsZero())
	assert.True(t, d("75.5").Equal(credit))
}

func TestNormalizeDebitCredit(t *testing.T) {
	tests := []struct {
		name                  string
		debit, credit         string
		wantDebit, wantCredit string
	}{
		{name: "already normal", debit: "100", credit: "0", wantDebit: "100", wantCredit: "0"},
		{name: "negative debit moves to credit", debit: "-40", credit: "0", wantDebit: "0", wantCredit: "40"},
		{name: "negative credit moves to debit", debit: "0", credit: "-25", wantDebit: "25", wantCredit: "0"},
		{name: "negative debit adds to existing credit", debit: "-10", credit: "5", wantDebit: "0", wantCredit: "15"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			debit, credit := accounting.NormalizeDebitCredit(d(tt.debit), d(tt.credit))
			assert.True(t, d(tt.wantDebit).Equal(debit), "debit %s", debit)
			assert.True(t, d(tt.wantCredit).Equal(credit), "credit %s", credit)
			assert.True(t, accounting.SignedAmount(d(tt.debit), d(tt.credit)).Equal(accounting.SignedAmount(debit, credit)))
		})
	}
}

func TestSum(t *testing.T) {
	assert.True(t, d("3.5").Equal(accounting.Sum(d("1"), d("2.5"))))
	assert.True(t, accounting.Sum().IsZero())
}
