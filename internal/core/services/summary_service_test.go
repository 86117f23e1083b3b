package services_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/SscSPs/finanalysis/internal/apperrors"
	"github.com/SscSPs/finanalysis/internal/core/domain"
	"github.com/SscSPs/finanalysis/internal/core/services"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock SessionReader ---
type MockSessionReader struct {
	mock.Mock
}

func (m *MockSessionReader) GetSession(ctx context.Context, ownerID, sessionID string) (*domain.Session, error) {
	args := m.Called(ctx, ownerID, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Session), args.Error(1)
}

func (m *MockSessionReader) GetStatement(ctx context.Context, ownerID, sessionID string) (*domain.ProcessedStatement, error) {
	args := m.Called(ctx, ownerID, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProcessedStatement), args.Error(1)
}

// --- Mock SummaryGenerator ---
type MockSummaryGenerator struct {
	mock.Mock
}

func (m *MockSummaryGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

// --- Test Suite ---
type SummaryServiceTestSuite struct {
	suite.Suite
	reader    *MockSessionReader
	generator *MockSummaryGenerator
	ctx       context.Context
}

func (suite *SummaryServiceTestSuite) SetupTest() {
	suite.reader = new(MockSessionReader)
	suite.generator = new(MockSummaryGenerator)
	suite.ctx = context.Background()
}

func (suite *SummaryServiceTestSuite) statement() *domain.ProcessedStatement {
	return &domain.ProcessedStatement{
		Sections: map[domain.Bucket]domain.ReportSection{
			domain.BucketSales: {Total: decimal.NewFromInt(-10000)},
			domain.BucketCOGS:  {Total: decimal.NewFromInt(4000)},
		},
		TotalExpenses: decimal.NewFromInt(3500),
		NetIncome:     decimal.NewFromInt(-2500),
	}
}

func (suite *SummaryServiceTestSuite) TestSummarize_UsesGenerator() {
	suite.reader.On("GetStatement", suite.ctx, "owner", "s-1").Return(suite.statement(), nil).Once()
	suite.generator.On("Generate", mock.Anything, mock.MatchedBy(func(prompt string) bool {
		return containsAll(prompt, "Total Revenue: €10,000", "Total Costs: €7,500", "Net Result: €2,500", "Language: English.")
	})).Return("  Healthy margin with a solid profit.  ", nil).Once()
	svc := services.NewSummaryService(suite.reader, suite.generator, time.Second)

	text, err := svc.Summarize(suite.ctx, "owner", "s-1", "")

	suite.Require().NoError(err)
	suite.Equal("Healthy margin with a solid profit.", text)
	suite.reader.AssertExpectations(suite.T())
	suite.generator.AssertExpectations(suite.T())
}

func (suite *SummaryServiceTestSuite) TestSummarize_FixedTexts() {
	suite.Run("no generator configured", func() {
		suite.reader.On("GetStatement", suite.ctx, "owner", "s-1").Return(suite.statement(), nil).Once()
		svc := services.NewSummaryService(suite.reader, nil, time.Second)

		text, err := svc.Summarize(suite.ctx, "owner", "s-1", "nl")

		suite.Require().NoError(err)
		suite.Equal("AI-analyse niet beschikbaar (API Key ontbreekt).", text)
	})

	suite.Run("generator error", func() {
		suite.reader.On("GetStatement", suite.ctx, "owner", "s-1").Return(suite.statement(), nil).Once()
		suite.generator.On("Generate", mock.Anything, mock.Anything).Return("", errors.New("quota exceeded")).Once()
		svc := services.NewSummaryService(suite.reader, suite.generator, time.Second)

		text, err := svc.Summarize(suite.ctx, "owner", "s-1", "en")

		suite.Require().NoError(err)
		suite.Equal("Error fetching analysis.", text)
	})

	suite.Run("empty answer", func() {
		suite.reader.On("GetStatement", suite.ctx, "owner", "s-1").Return(suite.statement(), nil).Once()
		suite.generator.On("Generate", mock.Anything, mock.Anything).Return("   ", nil).Once()
		svc := services.NewSummaryService(suite.reader, suite.generator, time.Second)

		text, err := svc.Summarize(suite.ctx, "owner", "s-1", "nl")

		suite.Require().NoError(err)
		suite.Equal("Geen analyse gegenereerd.", text)
	})
}

func (suite *SummaryServiceTestSuite) TestSummarize_Errors() {
	svc := services.NewSummaryService(suite.reader, suite.generator, time.Second)

	_, err := svc.Summarize(suite.ctx, "owner", "s-1", "fr")
	suite.ErrorIs(err, apperrors.ErrValidation)

	suite.reader.On("GetStatement", suite.ctx, "owner", "s-1").Return(nil, apperrors.ErrNoStatement).Once()
	_, err = svc.Summarize(suite.ctx, "owner", "s-1", "en")
	suite.ErrorIs(err, apperrors.ErrNoStatement)

	suite.generator.AssertNotCalled(suite.T(), "Generate", mock.Anything, mock.Anything)
}

func TestSummaryServiceTestSuite(t *testing.T) {
	suite.Run(t, new(SummaryServiceTestSuite))
}

func TestBuildSummaryPrompt_Dutch(t *testing.T) {
	st := &domain.ProcessedStatement{
		Sections: map[domain.Bucket]domain.ReportSection{
			domain.BucketSales: {Total: decimal.NewFromInt(-5000)},
		},
		TotalExpenses: decimal.NewFromInt(6000),
		NetIncome:     decimal.NewFromInt(1000),
	}

	prompt := services.BuildSummaryPrompt(st, "nl")

	assert.Contains(t, prompt, "Total Revenue: € 5.000")
	assert.Contains(t, prompt, "Net Result: -€ 1.000")
	assert.Contains(t, prompt, "Language: Dutch.")
}

func containsAll(s string, parts ...string) bool {
	for _, p := range parts {
		if !strings.Contains(s, p) {
			return false
		}
	}
	return true
}
