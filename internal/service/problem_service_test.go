package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/upravdom/problembot/internal/models"
	"github.com/upravdom/problembot/internal/pkg/apperror"
)

func openList() *models.ProblemList {
	return &models.ProblemList{ID: uuid.New(), Code: "spring-2026", Title: "Весенний обход"}
}

func problemInList(list *models.ProblemList, status string) *models.Problem {
	p := &models.Problem{
		ID:     uuid.New(),
		ListID: list.ID,
		Number: 1,
		Title:  "Протечка в подвале",
		Status: status,
	}
	p.SetAssignees([]int64{100})
	return p
}

func TestProblemService_SubmitReport_NotifiesRegularAdmins(t *testing.T) {
	problems := new(mockProblemStore)
	lists := new(mockListStore)
	reports := new(mockReportStore)
	roster := new(mockRoster)
	notifier := new(mockNotifier)
	svc := NewProblemService(problems, lists, reports, roster, notifier)
	ctx := context.Background()

	list := openList()
	problem := problemInList(list, models.ProblemStatusInProgress)

	problems.On("GetByID", ctx, problem.ID).Return(problem, nil)
	lists.On("GetByID", ctx, list.ID).Return(list, nil)
	reports.On("Create", ctx, mock.AnythingOfType("*models.Report")).Return(nil)
	problems.On("SetStatusKeepNote", ctx, problem.ID, models.ProblemStatusReportSent).Return(nil)
	roster.On("Partition", ctx).Return([]int64{1, 2}, []int64{10}, nil)
	notifier.On("NotifyUser", ctx, int64(1), EventReportSubmitted, mock.Anything).Return(nil)
	notifier.On("NotifyUser", ctx, int64(2), EventReportSubmitted, mock.Anything).Return(nil)

	report, err := svc.SubmitReport(ctx, problem.ID, 100)

	assert.NoError(t, err)
	assert.NotNil(t, report)
	assert.Equal(t, models.ReportStatusPending, report.Status)
	notifier.AssertNumberOfCalls(t, "NotifyUser", 2)
	notifier.AssertNotCalled(t, "NotifyUser", ctx, int64(10), EventReportEscalated, mock.Anything)
}

func TestProblemService_SubmitReport_ClosedList(t *testing.T) {
	problems := new(mockProblemStore)
	lists := new(mockListStore)
	svc := NewProblemService(problems, lists, new(mockReportStore), new(mockRoster), new(mockNotifier))
	ctx := context.Background()

	list := openList()
	list.IsClosed = true
	problem := problemInList(list, models.ProblemStatusAccepted)

	problems.On("GetByID", ctx, problem.ID).Return(problem, nil)
	lists.On("GetByID", ctx, list.ID).Return(list, nil)

	_, err := svc.SubmitReport(ctx, problem.ID, 100)

	assert.ErrorIs(t, err, apperror.ErrListClosed)
}

func TestProblemService_SubmitReport_NoRegularAdminsEscalatesImmediately(t *testing.T) {
	problems := new(mockProblemStore)
	lists := new(mockListStore)
	reports := new(mockReportStore)
	roster := new(mockRoster)
	notifier := new(mockNotifier)
	svc := NewProblemService(problems, lists, reports, roster, notifier)
	ctx := context.Background()

	list := openList()
	problem := problemInList(list, models.ProblemStatusRejected)

	problems.On("GetByID", ctx, problem.ID).Return(problem, nil)
	lists.On("GetByID", ctx, list.ID).Return(list, nil)
	reports.On("Create", ctx, mock.AnythingOfType("*models.Report")).Return(nil)
	problems.On("SetStatusKeepNote", ctx, problem.ID, models.ProblemStatusReportSent).Return(nil)
	// Единогласие пустого множества обычных админов выполнено сразу.
	roster.On("Partition", ctx).Return([]int64{}, []int64{10}, nil)
	notifier.On("NotifyUser", ctx, int64(10), EventReportEscalated, mock.Anything).Return(nil)

	_, err := svc.SubmitReport(ctx, problem.ID, 100)

	assert.NoError(t, err)
	notifier.AssertCalled(t, "NotifyUser", ctx, int64(10), EventReportEscalated, mock.Anything)
}

func TestProblemService_AcceptProblem_ClosesListOnLastAccepted(t *testing.T) {
	problems := new(mockProblemStore)
	lists := new(mockListStore)
	svc := NewProblemService(problems, lists, new(mockReportStore), new(mockRoster), new(mockNotifier))
	ctx := context.Background()

	list := openList()
	problem := problemInList(list, models.ProblemStatusReportSent)

	problems.On("GetByID", ctx, problem.ID).Return(problem, nil)
	problems.On("SetStatus", ctx, problem.ID, models.ProblemStatusAccepted, (*string)(nil)).Return(nil)
	lists.On("StatusCounts", ctx, list.ID).Return(map[string]int{models.ProblemStatusAccepted: 3}, nil)
	lists.On("Close", ctx, list.ID, mock.AnythingOfType("time.Time")).Return(nil)

	err := svc.AcceptProblem(ctx, problem.ID)

	assert.NoError(t, err)
	lists.AssertCalled(t, "Close", ctx, list.ID, mock.AnythingOfType("time.Time"))
}

func TestProblemService_AcceptProblem_ListStaysOpen(t *testing.T) {
	problems := new(mockProblemStore)
	lists := new(mockListStore)
	svc := NewProblemService(problems, lists, new(mockReportStore), new(mockRoster), new(mockNotifier))
	ctx := context.Background()

	list := openList()
	problem := problemInList(list, models.ProblemStatusReportSent)

	problems.On("GetByID", ctx, problem.ID).Return(problem, nil)
	problems.On("SetStatus", ctx, problem.ID, models.ProblemStatusAccepted, (*string)(nil)).Return(nil)
	lists.On("StatusCounts", ctx, list.ID).Return(map[string]int{
		models.ProblemStatusAccepted:   2,
		models.ProblemStatusInProgress: 1,
	}, nil)

	err := svc.AcceptProblem(ctx, problem.ID)

	assert.NoError(t, err)
	lists.AssertNotCalled(t, "Close", mock.Anything, mock.Anything, mock.Anything)
}

func TestProblemService_RejectProblem_StoresReason(t *testing.T) {
	problems := new(mockProblemStore)
	svc := NewProblemService(problems, new(mockListStore), new(mockReportStore), new(mockRoster), new(mockNotifier))
	ctx := context.Background()

	problemID := uuid.New()
	reason := "нет фотофиксации"
	problems.On("SetStatus", ctx, problemID, models.ProblemStatusRejected, &reason).Return(nil)

	err := svc.RejectProblem(ctx, problemID, reason)

	assert.NoError(t, err)
	problems.AssertCalled(t, "SetStatus", ctx, problemID, models.ProblemStatusRejected, &reason)
}

func TestProblemService_UpsertProblems_CreatesAndUpdates(t *testing.T) {
	problems := new(mockProblemStore)
	lists := new(mockListStore)
	svc := NewProblemService(problems, lists, new(mockReportStore), new(mockRoster), new(mockNotifier))
	ctx := context.Background()

	list := openList()
	existing := problemInList(list, models.ProblemStatusReportSent)
	existing.Number = 2

	lists.On("GetOrCreate", ctx, list.Code, list.Title).Return(list, nil)
	lists.On("GetByID", ctx, list.ID).Return(list, nil)
	problems.On("GetByListAndNumber", ctx, list.ID, 1).Return(nil, apperror.ErrProblemNotFound)
	problems.On("Create", ctx, mock.AnythingOfType("*models.Problem")).Return(nil)
	problems.On("GetByListAndNumber", ctx, list.ID, 2).Return(existing, nil)
	problems.On("UpdateImported", ctx, existing).Return(nil)

	due := "2026-09-15"
	rows := []ImportedProblem{
		{Number: 1, Title: "Ремонт домофона", Assignees: []int64{100}, DueDate: &due},
		{Number: 2, Title: "Протечка в подвале (уточнено)", Assignees: []int64{100, 101}},
	}

	got, err := svc.UpsertProblems(ctx, list.Code, list.Title, rows)

	assert.NoError(t, err)
	assert.Equal(t, list.ID, got.ID)
	assert.Equal(t, "Протечка в подвале (уточнено)", existing.Title)
	assert.Equal(t, []int64{100, 101}, existing.Assignees())
	// Импорт не трогает статус существующей проблемы.
	assert.Equal(t, models.ProblemStatusReportSent, existing.Status)
}
