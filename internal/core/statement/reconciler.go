package statement

import (
	"strings"

	"github.com/SscSPs/finanalysis/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ReconciliationTolerance is the absolute difference below which a reported total counts as a match.
var ReconciliationTolerance = decimal.NewFromInt(1)

var reconciliationOrder = []domain.ReconciliationLabel{
	domain.ReconcileAssets,
	domain.ReconcileLiabilities,
	domain.ReconcileEquity,
	domain.ReconcileNetResult,
}

// Reconciler checks computed totals against totals reported in the source file.
type Reconciler struct {
	matchers map[domain.ReconciliationLabel]Matcher
}

// NewReconciler uses the reconciliation matchers of kw.
func NewReconciler(kw Keywords) *Reconciler {
	return &Reconciler{matchers: kw.Reconciliation}
}

// Reconcile annotates the canonical totals of st. A reported total is considered when its
// label matches and, with a year selected, it belongs to that year or carries no year.
// Signs are ignored: |abs(reported) - abs(computed)| < 1 is OK.
func (r *Reconciler) Reconcile(st *domain.ProcessedStatement, reported []domain.ReportedTotal, year string) []domain.Reconciliation {
	computed := map[domain.ReconciliationLabel]decimal.Decimal{
		domain.ReconcileAssets:      st.TotalAssets,
		domain.ReconcileLiabilities: st.TotalLiabilities,
		domain.ReconcileEquity:      st.TotalEquity,
		domain.ReconcileNetResult:   st.NetIncome,
	}

	out := make([]domain.Reconciliation, 0, len(reconciliationOrder))
	for _, label := range reconciliationOrder {
		rec := domain.Reconciliation{Label: label, Computed: computed[label], Status: domain.ReconciliationUnmatched}
		if match, ok := r.find(label, reported, year); ok {
			value := match.Value
			rec.ReportedLabel = match.Label
			rec.Reported = &value
			rec.Difference = value.Abs().Sub(rec.Computed.Abs()).Abs()
			rec.Status = domain.ReconciliationDifference
			if rec.Difference.LessThan(ReconciliationTolerance) {
				rec.Status = domain.ReconciliationOK
			}
		}
		out = append(out, rec)
	}
	return out
}

func (r *Reconciler) find(label domain.ReconciliationLabel, reported []domain.ReportedTotal, year string) (domain.ReportedTotal, bool) {
	m, ok := r.matchers[label]
	if !ok {
		return domain.ReportedTotal{}, false
	}
	for _, t := range reported {
		if year != "" && t.FiscalYear != "" && t.FiscalYear != year {
			continue
		}
		if m.Matches(strings.ToLower(t.Label)) {
			return t, true
		}
	}
	return domain.ReportedTotal{}, false
}
