package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/finanalysis/internal/apperrors"
	"github.com/SscSPs/finanalysis/internal/core/domain"
	portssvc "github.com/SscSPs/finanalysis/internal/core/ports/services"
	"github.com/SscSPs/finanalysis/internal/utils"
)

const defaultSummaryTimeout = 20 * time.Second

type summaryTexts struct {
	unavailable string
	failed      string
	empty       string
	language    string
}

var summaryTextsByLanguage = map[string]summaryTexts{
	"nl": {
		unavailable: "AI-analyse niet beschikbaar (API Key ontbreekt).",
		failed:      "Fout bij ophalen van analyse.",
		empty:       "Geen analyse gegenereerd.",
		language:    "Dutch",
	},
	"en": {
		unavailable: "AI analysis unavailable (Missing API Key).",
		failed:      "Error fetching analysis.",
		empty:       "No analysis generated.",
		language:    "English",
	},
}

// summaryService produces narrative summaries of session statements
type summaryService struct {
	BaseService
	statements portssvc.SessionReaderSvc
	generator  portssvc.SummaryGenerator
	timeout    time.Duration
}

// NewSummaryService creates a summary service. A nil generator makes every summary the fixed
// "unavailable" text.
func NewSummaryService(statements portssvc.SessionReaderSvc, generator portssvc.SummaryGenerator, timeout time.Duration) portssvc.SummarySvc {
	if timeout <= 0 {
		timeout = defaultSummaryTimeout
	}
	return &summaryService{statements: statements, generator: generator, timeout: timeout}
}

var _ portssvc.SummarySvc = (*summaryService)(nil)

// Summarize loads the statement of a session and describes it in language ("nl" or "en").
// Generator failures are never returned as errors.
func (s *summaryService) Summarize(ctx context.Context, ownerID, sessionID, language string) (string, error) {
	if language == "" {
		language = "en"
	}
	texts, ok := summaryTextsByLanguage[language]
	if !ok {
		return "", fmt.Errorf("%w: unsupported language %q", apperrors.ErrValidation, language)
	}

	st, err := s.statements.GetStatement(ctx, ownerID, sessionID)
	if err != nil {
		return "", err
	}

	// No API key configured
	if s.generator == nil {
		return texts.unavailable, nil
	}

	genCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	// Failures fall back to fixed text, never to an error response
	text, err := s.generator.Generate(genCtx, BuildSummaryPrompt(st, language))
	if err != nil {
		s.LogError(ctx, err, "Summary generation failed", slog.String("session_id", sessionID))
		return texts.failed, nil
	}
	if text = strings.TrimSpace(text); text == "" {
		return texts.empty, nil
	}
	return text, nil
}

// BuildSummaryPrompt describes a statement in the human sign convention: revenue and costs
// positive, a positive net result is a profit.
func BuildSummaryPrompt(st *domain.ProcessedStatement, language string) string {
	texts, ok := summaryTextsByLanguage[language]
	if !ok {
		texts = summaryTextsByLanguage["en"]
	}
	revenue := st.Section(domain.BucketSales).Total.Abs()
	costs := st.Section(domain.BucketCOGS).Total.Add(st.TotalExpenses)
	netResult := st.NetIncome.Neg()

	var b strings.Builder
	b.WriteString("Act as a senior financial analyst.\n")
	b.WriteString("Analyze the following financial summary data:\n\n")
	fmt.Fprintf(&b, "Total Revenue: %s\n", utils.FormatEuro(revenue, language))
	fmt.Fprintf(&b, "Total Costs: %s\n", utils.FormatEuro(costs, language))
	fmt.Fprintf(&b, "Net Result: %s\n\n", utils.FormatEuro(netResult, language))
	b.WriteString("Context:\n")
	b.WriteString("- If Net Result is positive, the company is making a profit.\n")
	b.WriteString("- If Net Result is negative, the company is making a loss.\n\n")
	fmt.Fprintf(&b, "Language: %s.\n", texts.language)
	b.WriteString("Constraint: Max 2 sentences. Max 20 words total. Business-like and factual tone.\n")
	b.WriteString("Focus on the margin and key result.\n")
	return b.String()
}
