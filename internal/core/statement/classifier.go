// Package statement classifies ledger entries into statement buckets and aggregates them
// into a ProcessedStatement. Everything here is a pure function of its inputs.
package statement

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/SscSPs/finanalysis/internal/core/domain"
)

// Account code boundaries of the Dutch chart of accounts (RGS-style numbering).
const (
	profitAndLossFrom  = 4000
	costOfSalesFrom    = 7000
	salesFrom          = 8000
	equityCodeFrom     = 500
	equityCodeTo       = 1000
	currentAssetsFrom  = 1000
	currentAssetsUntil = 1400
	fallbackCode       = 9999
)

// Facts are the properties of an entry that rules look at.
type Facts struct {
	Code        int
	NumericCode bool
	Description string // lowercased
}

// IsProfitAndLoss reports whether the entry belongs to the P&L branch: codes from 4000,
// non-numeric codes and the 0 and 9999 sentinels.
func (f Facts) IsProfitAndLoss() bool {
	return !f.NumericCode || f.Code >= profitAndLossFrom || f.Code == 0 || f.Code == fallbackCode
}

// IsFallback reports whether the code is the sentinel given to line items without a code.
// Such items skip the sales and cost-of-sales ranges.
func (f Facts) IsFallback() bool {
	return f.NumericCode && f.Code == fallbackCode
}

// FactsOf extracts rule facts from an entry.
func FactsOf(e domain.LedgerEntry) Facts {
	code, err := strconv.Atoi(e.AccountCode)
	return Facts{
		Code:        code,
		NumericCode: err == nil,
		Description: strings.ToLower(e.Description),
	}
}

// Rule is one step of the classification cascade. Rules are evaluated in order and the
// first match decides the bucket.
type Rule struct {
	Name   string
	Bucket domain.Bucket
	Match  func(Facts) bool
}

// Classifier assigns entries to buckets: an override for the exact description wins,
// otherwise the first matching rule does.
type Classifier struct {
	rules []Rule
}

// NewClassifier builds the rule cascade from a keyword vocabulary.
func NewClassifier(kw Keywords) *Classifier {
	return &Classifier{rules: buildRules(kw)}
}

// Rules returns the cascade in evaluation order.
func (c *Classifier) Rules() []Rule {
	return append([]Rule(nil), c.rules...)
}

// Classify returns the bucket of e. It is total: every entry lands in some bucket.
func (c *Classifier) Classify(e domain.LedgerEntry, overrides map[string]domain.Bucket) domain.Bucket {
	if b, ok := overrides[e.Description]; ok && b.IsValid() {
		return b
	}
	f := FactsOf(e)
	for _, r := range c.rules {
		if r.Match(f) {
			return r.Bucket
		}
	}
	return domain.BucketLiabilities
}

func buildRules(kw Keywords) []Rule {
	nonOpWords := wordMatcher(kw.NonOperationalWords)
	pnl := func(match func(Facts) bool) func(Facts) bool {
		return func(f Facts) bool { return f.IsProfitAndLoss() && match(f) }
	}

	return []Rule{
		{
			Name:   "unappropriated-result",
			Bucket: domain.BucketEquity,
			Match:  pnl(func(f Facts) bool { return containsAny(f.Description, kw.Equity) }),
		},
		{
			Name:   "non-operational",
			Bucket: domain.BucketNonOperationalExpenses,
			Match: pnl(func(f Facts) bool {
				return containsAny(f.Description, kw.NonOperational) || matchesWord(nonOpWords, f.Description)
			}),
		},
		{
			Name:   "depreciation",
			Bucket: domain.BucketDepreciation,
			Match:  pnl(func(f Facts) bool { return containsAny(f.Description, kw.Depreciation) }),
		},
		{
			Name:   "sales-range",
			Bucket: domain.BucketSales,
			Match:  pnl(func(f Facts) bool { return !f.IsFallback() && f.Code >= salesFrom }),
		},
		{
			Name:   "cost-of-sales-range",
			Bucket: domain.BucketCOGS,
			Match:  pnl(func(f Facts) bool { return !f.IsFallback() && f.Code >= costOfSalesFrom }),
		},
		{
			Name:   "labor",
			Bucket: domain.BucketLabor,
			Match:  pnl(func(f Facts) bool { return containsAny(f.Description, kw.Labor) }),
		},
		{
			Name:   "results-adjustment",
			Bucket: domain.BucketResultsAdjustments,
			Match:  pnl(func(f Facts) bool { return kw.ResultsAdjustments.Matches(f.Description) }),
		},
		{
			Name:   "other-expenses",
			Bucket: domain.BucketOtherExpenses,
			Match:  pnl(func(Facts) bool { return true }),
		},
		{
			Name:   "asset-range",
			Bucket: domain.BucketAssets,
			Match: func(f Facts) bool {
				return f.Code < equityCodeFrom || (f.Code >= currentAssetsFrom && f.Code < currentAssetsUntil)
			},
		},
		{
			Name:   "equity-range",
			Bucket: domain.BucketEquity,
			Match:  func(f Facts) bool { return f.Code >= equityCodeFrom && f.Code < equityCodeTo },
		},
		{
			Name:   "liabilities",
			Bucket: domain.BucketLiabilities,
			Match:  func(Facts) bool { return true },
		},
	}
}

func matchesWord(re *regexp.Regexp, text string) bool {
	return re != nil && re.MatchString(text)
}
