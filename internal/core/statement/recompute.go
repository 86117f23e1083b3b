package statement

import (
	"github.com/SscSPs/finanalysis/internal/apperrors"
	"github.com/SscSPs/finanalysis/internal/core/domain"
)

// Input is everything one recomputation depends on.
type Input struct {
	Ledger      *domain.Ledger
	Interaction domain.InteractionState
}

// Engine runs the classify, aggregate and reconcile passes. It holds no mutable state and
// is safe for concurrent use.
type Engine struct {
	classifier *Classifier
	reconciler *Reconciler
}

// NewEngine builds an engine for the given vocabulary.
func NewEngine(kw Keywords) *Engine {
	return &Engine{
		classifier: NewClassifier(kw),
		reconciler: NewReconciler(kw),
	}
}

// Classifier exposes the rule cascade used by the engine.
func (e *Engine) Classifier() *Classifier {
	return e.classifier
}

// Recompute builds a complete ProcessedStatement from scratch. Nothing is carried over from
// a previous call: the latest input fully supersedes earlier ones.
func (e *Engine) Recompute(in Input) (*domain.ProcessedStatement, error) {
	if in.Ledger == nil || len(in.Ledger.Entries) == 0 {
		return nil, apperrors.ErrNoStatement
	}
	state := in.Interaction

	filtered := FilterEntries(in.Ledger.Entries, Filter{
		Year:                state.SelectedYear,
		HideImmaterial:      state.HideImmaterial,
		ImmaterialThreshold: state.ImmaterialThreshold,
	})

	st := Aggregate(e.classifier.ClassifyAll(filtered, state.Overrides), state.SortOrder)
	st.KeyRatios = KeyRatios(st)
	st.Reconciliation = e.reconciler.Reconcile(st, in.Ledger.ReportedTotals, state.SelectedYear)

	st.Metadata = in.Ledger.Metadata
	st.FiscalYears = nonNil(in.Ledger.FiscalYears)
	st.SelectedYear = state.SelectedYear
	st.ReportedTotals = in.Ledger.ReportedTotals
	if st.ReportedTotals == nil {
		st.ReportedTotals = []domain.ReportedTotal{}
	}
	st.Version = state.Version
	return st, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
