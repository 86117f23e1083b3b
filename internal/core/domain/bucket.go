package domain

import (
	"fmt"

	"github.com/SscSPs/finanalysis/internal/apperrors"
)

// Bucket identifies one financial-statement section.
type Bucket string

const (
	BucketSales                  Bucket = "sales"
	BucketCOGS                   Bucket = "cogs"
	BucketLabor                  Bucket = "labor"
	BucketOtherExpenses          Bucket = "otherExpenses"
	BucketDepreciation           Bucket = "depreciation"
	BucketNonOperationalExpenses Bucket = "nonOperationalExpenses"
	BucketResultsAdjustments     Bucket = "resultsAdjustments"
	BucketAssets                 Bucket = "assets"
	BucketLiabilities            Bucket = "liabilities"
	BucketEquity                 Bucket = "equity"
)

// Buckets lists every bucket in statement order.
var Buckets = []Bucket{
	BucketSales,
	BucketCOGS,
	BucketLabor,
	BucketOtherExpenses,
	BucketDepreciation,
	BucketNonOperationalExpenses,
	BucketResultsAdjustments,
	BucketAssets,
	BucketLiabilities,
	BucketEquity,
}

// IsValid reports whether b is one of the closed set of buckets.
func (b Bucket) IsValid() bool {
	for _, known := range Buckets {
		if b == known {
			return true
		}
	}
	return false
}

// IsBalanceSheet reports whether b belongs to the balance sheet rather than the P&L.
func (b Bucket) IsBalanceSheet() bool {
	return b == BucketAssets || b == BucketLiabilities || b == BucketEquity
}

// ParseBucket validates a bucket identifier.
func ParseBucket(s string) (Bucket, error) {
	b := Bucket(s)
	if !b.IsValid() {
		return "", fmt.Errorf("%w: unknown bucket %q", apperrors.ErrValidation, s)
	}
	return b, nil
}
