package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/upravdom/problembot/internal/models"
)

// StatusCountsSource — агрегаты проблем по статусам.
type StatusCountsSource interface {
	StatusCountsByAssignee(ctx context.Context, assignee int64) (map[string]int, error)
	ListOpenCodesByAssignee(ctx context.Context, assignee int64) ([]string, error)
}

// ListStatsSource — агрегаты и метаданные списка.
type ListStatsSource interface {
	GetByCode(ctx context.Context, code string) (*models.ProblemList, error)
	StatusCounts(ctx context.Context, listID uuid.UUID) (map[string]int, error)
}

// StatusBreakdown — количество задач по каждому статусу.
type StatusBreakdown struct {
	Total      int `json:"total"`
	InProgress int `json:"in_progress"`
	Sent       int `json:"sent"`
	Accepted   int `json:"accepted"`
	Rejected   int `json:"rejected"`
}

// ListStats — сводка по списку проблем.
type ListStats struct {
	Code     string `json:"code"`
	Title    string `json:"title"`
	IsClosed bool   `json:"is_closed"`
	StatusBreakdown
}

// StatsService считает сводки для исполнителей и списков.
// Диаграммы по этим числам рисует внешний потребитель.
type StatsService struct {
	problems StatusCountsSource
	lists    ListStatsSource
}

func NewStatsService(problems StatusCountsSource, lists ListStatsSource) *StatsService {
	return &StatsService{problems: problems, lists: lists}
}

// UserStats — статистика по задачам исполнителя: каждая задача считается
// один раз по текущему статусу.
func (s *StatsService) UserStats(ctx context.Context, assignee int64) (StatusBreakdown, error) {
	counts, err := s.problems.StatusCountsByAssignee(ctx, assignee)
	if err != nil {
		return StatusBreakdown{}, err
	}
	return breakdownFrom(counts), nil
}

// ListStatsByCode — статистика по всем проблемам списка.
func (s *StatsService) ListStatsByCode(ctx context.Context, code string) (ListStats, error) {
	list, err := s.lists.GetByCode(ctx, code)
	if err != nil {
		return ListStats{}, err
	}
	counts, err := s.lists.StatusCounts(ctx, list.ID)
	if err != nil {
		return ListStats{}, err
	}
	return ListStats{
		Code:            list.Code,
		Title:           list.Title,
		IsClosed:        list.IsClosed,
		StatusBreakdown: breakdownFrom(counts),
	}, nil
}

// OpenListsForAssignee — открытые списки, где у исполнителя есть
// непринятые задачи.
func (s *StatsService) OpenListsForAssignee(ctx context.Context, assignee int64) ([]string, error) {
	return s.problems.ListOpenCodesByAssignee(ctx, assignee)
}

func breakdownFrom(counts map[string]int) StatusBreakdown {
	b := StatusBreakdown{
		InProgress: counts[models.ProblemStatusInProgress],
		Sent:       counts[models.ProblemStatusReportSent],
		Accepted:   counts[models.ProblemStatusAccepted],
		Rejected:   counts[models.ProblemStatusRejected],
	}
	b.Total = b.InProgress + b.Sent + b.Accepted + b.Rejected
	return b
}
