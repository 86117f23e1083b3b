package services_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/SscSPs/finanalysis/internal/apperrors"
	"github.com/SscSPs/finanalysis/internal/core/domain"
	portssvc "github.com/SscSPs/finanalysis/internal/core/ports/services"
	"github.com/SscSPs/finanalysis/internal/core/services"
	"github.com/SscSPs/finanalysis/internal/repositories/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

const multiYearCSV = "Code;Omschrijving;2022;2023\n" +
	"8010;Omzet;-1000;-1200\n" +
	"4000;Huur;300;320\n" +
	"7000;Inkoop;200;250\n"

// --- Mock SessionRepository ---
type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) FindSessionByID(ctx context.Context, sessionID string) (*domain.Session, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Session), args.Error(1)
}

func (m *MockSessionRepository) SaveSession(ctx context.Context, session domain.Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockSessionRepository) UpdateSession(ctx context.Context, session domain.Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockSessionRepository) DeleteSessionsIdleSince(ctx context.Context, cutoff time.Time) (int, error) {
	args := m.Called(ctx, cutoff)
	return args.Int(0), args.Error(1)
}

// --- Test Suite ---
type ReportingServiceTestSuite struct {
	suite.Suite
	repo    *memory.SessionRepository
	service portssvc.ReportingSvcFacade
	now     time.Time
	ids     int
	ctx     context.Context
	owner   string
}

func (suite *ReportingServiceTestSuite) SetupTest() {
	suite.repo = memory.NewSessionRepository()
	suite.now = time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)
	suite.ids = 0
	suite.ctx = context.Background()
	suite.owner = "owner-1"
	suite.service = services.NewReportingService(suite.repo,
		services.WithClock(func() time.Time { return suite.now }),
		services.WithIDGenerator(func() string {
			suite.ids++
			return fmt.Sprintf("session-%d", suite.ids)
		}),
		services.WithSessionTTL(time.Hour),
		services.WithDemoSeed(42),
	)
}

func (suite *ReportingServiceTestSuite) upload() *portssvc.UploadOutcome {
	outcome, err := suite.service.Upload(suite.ctx, suite.owner, "ledger.csv", []byte(multiYearCSV))
	suite.Require().NoError(err)
	return outcome
}

// --- Test Cases ---

func (suite *ReportingServiceTestSuite) TestUpload_Success() {
	outcome := suite.upload()

	suite.Equal("session-1", outcome.Session.SessionID)
	suite.Equal(domain.UploadSucceeded, outcome.Session.State)
	suite.Equal(suite.owner, outcome.Session.CreatedBy)
	suite.NotEmpty(outcome.Session.Fingerprint)
	suite.Equal([]string{"2023", "2022"}, outcome.Statement.FiscalYears)
	suite.Equal("2023", outcome.Statement.SelectedYear, "most recent year is selected by default")
	suite.True(decimal.NewFromInt(-630).Equal(outcome.Statement.NetIncome), "got %s", outcome.Statement.NetIncome)
	suite.Equal(3, outcome.Statement.EntryCount)

	stored, err := suite.repo.FindSessionByID(suite.ctx, "session-1")
	suite.Require().NoError(err)
	suite.Equal(domain.UploadSucceeded, stored.State)
}

func (suite *ReportingServiceTestSuite) TestUpload_FailureStoresFailedSession() {
	outcome, err := suite.service.Upload(suite.ctx, suite.owner, "empty.csv", []byte("Code;Omschrijving;Bedrag\n4000;Huur;0\n"))

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNoValidEntries)
	suite.Require().NotNil(outcome)
	suite.Nil(outcome.Statement)
	suite.Equal(domain.UploadFailed, outcome.Session.State)
	suite.NotEmpty(outcome.Session.FailureReason)

	stored, findErr := suite.repo.FindSessionByID(suite.ctx, outcome.Session.SessionID)
	suite.Require().NoError(findErr)
	suite.Equal(domain.UploadFailed, stored.State)

	_, err = suite.service.GetStatement(suite.ctx, suite.owner, outcome.Session.SessionID)
	suite.ErrorIs(err, apperrors.ErrNoStatement)
}

func (suite *ReportingServiceTestSuite) TestOwnership() {
	outcome := suite.upload()
	id := outcome.Session.SessionID

	_, err := suite.service.GetSession(suite.ctx, "someone-else", id)
	suite.ErrorIs(err, apperrors.ErrForbidden)

	_, err = suite.service.MoveItem(suite.ctx, "someone-else", id, "Huur", "", domain.BucketCOGS)
	suite.ErrorIs(err, apperrors.ErrForbidden)

	_, err = suite.service.GetStatement(suite.ctx, suite.owner, "missing")
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *ReportingServiceTestSuite) TestInteractionCommands() {
	id := suite.upload().Session.SessionID

	st, err := suite.service.MoveItem(suite.ctx, suite.owner, id, "Huur", domain.BucketOtherExpenses, domain.BucketCOGS)
	suite.Require().NoError(err)
	suite.Contains(itemNames(st.Section(domain.BucketCOGS)), "Huur")
	suite.NotContains(itemNames(st.Section(domain.BucketOtherExpenses)), "Huur")
	moveVersion := st.Version

	st, err = suite.service.Reorder(suite.ctx, suite.owner, id, domain.BucketCOGS, []string{"Inkoop", "Huur"})
	suite.Require().NoError(err)
	suite.Equal([]string{"Inkoop", "Huur"}, itemNames(st.Section(domain.BucketCOGS)))
	suite.Greater(st.Version, moveVersion)

	st, err = suite.service.SelectYear(suite.ctx, suite.owner, id, "2022")
	suite.Require().NoError(err)
	suite.Equal("2022", st.SelectedYear)
	suite.True(decimal.NewFromInt(-500).Equal(st.NetIncome), "got %s", st.NetIncome)

	st, err = suite.service.SelectYear(suite.ctx, suite.owner, id, "")
	suite.Require().NoError(err)
	suite.Equal(6, st.EntryCount)

	threshold := decimal.NewFromInt(260)
	st, err = suite.service.SetImmaterialFilter(suite.ctx, suite.owner, id, true, &threshold)
	suite.Require().NoError(err)
	suite.Equal(4, st.EntryCount, "entries below 260 are hidden")

	st, err = suite.service.ResetInteraction(suite.ctx, suite.owner, id)
	suite.Require().NoError(err)
	suite.Equal("2023", st.SelectedYear)
	suite.NotContains(itemNames(st.Section(domain.BucketCOGS)), "Huur")

	session, err := suite.service.GetSession(suite.ctx, suite.owner, id)
	suite.Require().NoError(err)
	suite.Equal(st.Version, session.Interaction.Version, "stored state matches the returned statement")
	suite.Empty(session.Interaction.Overrides)
}

func (suite *ReportingServiceTestSuite) TestInteraction_InvalidCommandKeepsState() {
	id := suite.upload().Session.SessionID
	before, err := suite.service.GetSession(suite.ctx, suite.owner, id)
	suite.Require().NoError(err)

	_, err = suite.service.Reorder(suite.ctx, suite.owner, id, domain.Bucket("marketing"), []string{"a"})
	suite.ErrorIs(err, apperrors.ErrValidation)

	_, err = suite.service.SelectYear(suite.ctx, suite.owner, id, "23")
	suite.ErrorIs(err, apperrors.ErrValidation)

	negative := decimal.NewFromInt(-1)
	_, err = suite.service.SetImmaterialFilter(suite.ctx, suite.owner, id, true, &negative)
	suite.ErrorIs(err, apperrors.ErrValidation)

	after, err := suite.service.GetSession(suite.ctx, suite.owner, id)
	suite.Require().NoError(err)
	suite.Equal(before.Interaction.Version, after.Interaction.Version)
}

func (suite *ReportingServiceTestSuite) TestReupload() {
	id := suite.upload().Session.SessionID
	_, err := suite.service.MoveItem(suite.ctx, suite.owner, id, "Huur", "", domain.BucketCOGS)
	suite.Require().NoError(err)

	suite.Run("identical file keeps interaction", func() {
		outcome, err := suite.service.Reupload(suite.ctx, suite.owner, id, "ledger.csv", []byte(multiYearCSV))
		suite.Require().NoError(err)
		suite.Contains(outcome.Session.Interaction.Overrides, "Huur")
	})

	suite.Run("failed re-upload keeps previous ledger", func() {
		outcome, err := suite.service.Reupload(suite.ctx, suite.owner, id, "broken.csv", []byte(""))
		suite.ErrorIs(err, apperrors.ErrEmptyFile)
		suite.Equal(domain.UploadFailed, outcome.Session.State)

		st, err := suite.service.GetStatement(suite.ctx, suite.owner, id)
		suite.Require().NoError(err)
		suite.Equal(3, st.EntryCount)
	})

	suite.Run("new file resets interaction", func() {
		newFile := "Code;Omschrijving;2024\n8010;Omzet;-900\n"
		outcome, err := suite.service.Reupload(suite.ctx, suite.owner, id, "ledger-2024.csv", []byte(newFile))
		suite.Require().NoError(err)
		suite.Equal(domain.UploadSucceeded, outcome.Session.State)
		suite.Empty(outcome.Session.FailureReason)
		suite.Empty(outcome.Session.Interaction.Overrides)
		suite.Equal("2024", outcome.Statement.SelectedYear)
		suite.Equal("ledger-2024.csv", outcome.Session.SourceName)
	})
}

func (suite *ReportingServiceTestSuite) TestLoadDemo() {
	first, err := suite.service.LoadDemo(suite.ctx, suite.owner, "en")
	suite.Require().NoError(err)
	second, err := suite.service.LoadDemo(suite.ctx, suite.owner, "en")
	suite.Require().NoError(err)

	suite.Equal(first.Session.Ledger.Entries, second.Session.Ledger.Entries, "fixed seed yields the same ledger")
	suite.NotEqual(first.Session.SessionID, second.Session.SessionID)
	suite.Positive(first.Statement.EntryCount)

	_, err = suite.service.LoadDemo(suite.ctx, suite.owner, "de")
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *ReportingServiceTestSuite) TestEvictIdleSessions() {
	id := suite.upload().Session.SessionID

	n, err := suite.service.EvictIdleSessions(suite.ctx)
	suite.Require().NoError(err)
	suite.Equal(0, n)

	suite.now = suite.now.Add(2 * time.Hour)
	n, err = suite.service.EvictIdleSessions(suite.ctx)
	suite.Require().NoError(err)
	suite.Equal(1, n)

	_, err = suite.service.GetSession(suite.ctx, suite.owner, id)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func TestReportingServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ReportingServiceTestSuite))
}

func TestReportingService_RepositoryErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("save failure is returned", func(t *testing.T) {
		repo := new(MockSessionRepository)
		repo.On("SaveSession", ctx, mock.AnythingOfType("domain.Session")).Return(assert.AnError).Once()
		svc := services.NewReportingService(repo)

		outcome, err := svc.Upload(ctx, "owner", "ledger.csv", []byte(multiYearCSV))

		assert.ErrorIs(t, err, assert.AnError)
		assert.Nil(t, outcome)
		repo.AssertExpectations(t)
	})

	t.Run("interaction is not stored when the session has no statement", func(t *testing.T) {
		repo := new(MockSessionRepository)
		failed := &domain.Session{SessionID: "s", OwnerID: "owner", State: domain.UploadFailed}
		repo.On("FindSessionByID", ctx, "s").Return(failed, nil).Once()
		svc := services.NewReportingService(repo)

		_, err := svc.SelectYear(ctx, "owner", "s", "2023")

		assert.ErrorIs(t, err, apperrors.ErrNoStatement)
		repo.AssertNotCalled(t, "UpdateSession", mock.Anything, mock.Anything)
	})

	t.Run("eviction failure is wrapped", func(t *testing.T) {
		repo := new(MockSessionRepository)
		repo.On("DeleteSessionsIdleSince", ctx, mock.AnythingOfType("time.Time")).Return(0, assert.AnError).Once()
		svc := services.NewReportingService(repo)

		_, err := svc.EvictIdleSessions(ctx)

		assert.ErrorIs(t, err, assert.AnError)
	})
}

func itemNames(section domain.ReportSection) []string {
	names := make([]string, len(section.Items))
	for i, item := range section.Items {
		names[i] = item.Name
	}
	return names
}
