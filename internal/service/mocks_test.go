package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/upravdom/problembot/internal/logger"
	"github.com/upravdom/problembot/internal/models"
)

func init() {
	logger.Init("error")
}

type mockProblemStore struct {
	mock.Mock
}

func (m *mockProblemStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Problem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Problem), args.Error(1)
}

func (m *mockProblemStore) GetByListAndNumber(ctx context.Context, listID uuid.UUID, number int) (*models.Problem, error) {
	args := m.Called(ctx, listID, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Problem), args.Error(1)
}

func (m *mockProblemStore) Create(ctx context.Context, p *models.Problem) error {
	args := m.Called(ctx, p)
	if args.Error(0) == nil {
		p.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *mockProblemStore) UpdateImported(ctx context.Context, p *models.Problem) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *mockProblemStore) SetStatus(ctx context.Context, id uuid.UUID, status string, note *string) error {
	args := m.Called(ctx, id, status, note)
	return args.Error(0)
}

func (m *mockProblemStore) SetStatusKeepNote(ctx context.Context, id uuid.UUID, status string) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *mockProblemStore) ListByList(ctx context.Context, listID uuid.UUID) ([]models.Problem, error) {
	args := m.Called(ctx, listID)
	return args.Get(0).([]models.Problem), args.Error(1)
}

type mockListStore struct {
	mock.Mock
}

func (m *mockListStore) GetByID(ctx context.Context, id uuid.UUID) (*models.ProblemList, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ProblemList), args.Error(1)
}

func (m *mockListStore) GetByCode(ctx context.Context, code string) (*models.ProblemList, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ProblemList), args.Error(1)
}

func (m *mockListStore) GetOrCreate(ctx context.Context, code, title string) (*models.ProblemList, error) {
	args := m.Called(ctx, code, title)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ProblemList), args.Error(1)
}

func (m *mockListStore) Close(ctx context.Context, id uuid.UUID, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

func (m *mockListStore) StatusCounts(ctx context.Context, listID uuid.UUID) (map[string]int, error) {
	args := m.Called(ctx, listID)
	return args.Get(0).(map[string]int), args.Error(1)
}

type mockReportStore struct {
	mock.Mock
}

func (m *mockReportStore) Create(ctx context.Context, report *models.Report) error {
	args := m.Called(ctx, report)
	if args.Error(0) == nil {
		report.ID = uuid.New()
		report.Status = models.ReportStatusPending
	}
	return args.Error(0)
}

func (m *mockReportStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Report, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Report), args.Error(1)
}

func (m *mockReportStore) FinalizeWithReview(ctx context.Context, id uuid.UUID, adminID int64, decision, status string, reason *string) (bool, error) {
	args := m.Called(ctx, id, adminID, decision, status, reason)
	return args.Bool(0), args.Error(1)
}

func (m *mockReportStore) RecordApproval(ctx context.Context, id uuid.UUID, adminID int64) ([]models.ReportReview, []models.ReportReview, error) {
	args := m.Called(ctx, id, adminID)
	if args.Error(2) != nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).([]models.ReportReview), args.Get(1).([]models.ReportReview), nil
}

func (m *mockReportStore) ListReviews(ctx context.Context, reportID uuid.UUID) ([]models.ReportReview, error) {
	args := m.Called(ctx, reportID)
	return args.Get(0).([]models.ReportReview), args.Error(1)
}

func (m *mockReportStore) AddMedia(ctx context.Context, media *models.ReportMedia) error {
	args := m.Called(ctx, media)
	return args.Error(0)
}

type mockRoster struct {
	mock.Mock
}

func (m *mockRoster) Partition(ctx context.Context) ([]int64, []int64, error) {
	args := m.Called(ctx)
	return args.Get(0).([]int64), args.Get(1).([]int64), args.Error(2)
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) NotifyUser(ctx context.Context, userID int64, event string, data any) error {
	args := m.Called(ctx, userID, event, data)
	return args.Error(0)
}

type mockLifecycle struct {
	mock.Mock
}

func (m *mockLifecycle) AcceptProblem(ctx context.Context, problemID uuid.UUID) error {
	args := m.Called(ctx, problemID)
	return args.Error(0)
}

func (m *mockLifecycle) RejectProblem(ctx context.Context, problemID uuid.UUID, reason string) error {
	args := m.Called(ctx, problemID, reason)
	return args.Error(0)
}
