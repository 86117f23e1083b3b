package services

import (
	"context"
)

// SummarySvc produces a short narrative of a statement.
type SummarySvc interface {
	// Summarize never fails: when the generator is unavailable a fixed localized text is returned.
	Summarize(ctx context.Context, ownerID, sessionID, language string) (string, error)
}

// SummaryGenerator is the text-generation backend behind SummarySvc.
type SummaryGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
