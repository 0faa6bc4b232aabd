package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/upravdom/problembot/internal/models"
	"github.com/upravdom/problembot/internal/pkg/apperror"
)

type mockStaffSource struct {
	mock.Mock
}

func (m *mockStaffSource) ListAll(ctx context.Context) ([]models.Staff, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Staff), args.Error(1)
}

type mockActCandidates struct {
	mock.Mock
}

func (m *mockActCandidates) ListAcceptedByAssignee(ctx context.Context, assignee int64) ([]models.ProblemWithList, error) {
	args := m.Called(ctx, assignee)
	return args.Get(0).([]models.ProblemWithList), args.Error(1)
}

type mockActLedger struct {
	mock.Mock
}

func (m *mockActLedger) InsertEntries(ctx context.Context, entries []models.ActEntry) error {
	args := m.Called(ctx, entries)
	return args.Error(0)
}

type mockActRenderer struct {
	mock.Mock
}

func (m *mockActRenderer) RenderAct(ctx context.Context, actCtx ActContext) ([]byte, error) {
	args := m.Called(ctx, actCtx)
	return args.Get(0).([]byte), args.Error(1)
}

type mockActFileStore struct {
	mock.Mock
}

func (m *mockActFileStore) SaveAct(ctx context.Context, assignee int64, name string, data []byte) (string, error) {
	args := m.Called(ctx, assignee, name, data)
	return args.String(0), args.Error(1)
}

func staffMember(assignee int64, fio, post string) models.Staff {
	return models.Staff{Assignee: assignee, FIO: &fio, Post: &post}
}

func acceptedProblem(number int, title string) models.ProblemWithList {
	c := models.ProblemWithList{ListCode: "spring-2026", ListTitle: "Весенний обход"}
	c.ID = uuid.New()
	c.Number = number
	c.Title = title
	c.Status = models.ProblemStatusAccepted
	return c
}

func TestActService_RunActSweep_OneActCoversAllProblems(t *testing.T) {
	staff := new(mockStaffSource)
	candidates := new(mockActCandidates)
	ledger := new(mockActLedger)
	renderer := new(mockActRenderer)
	files := new(mockActFileStore)
	notifier := new(mockNotifier)
	svc := NewActService(staff, candidates, ledger, renderer, files, notifier)
	ctx := context.Background()

	member := staffMember(100, "Иванов Иван Иванович", "слесарь-сантехник")
	p1 := acceptedProblem(1, "Протечка в подвале")
	p2 := acceptedProblem(2, "Ремонт домофона")

	staff.On("ListAll", ctx).Return([]models.Staff{member}, nil)
	candidates.On("ListAcceptedByAssignee", ctx, int64(100)).Return([]models.ProblemWithList{p1, p2}, nil)
	renderer.On("RenderAct", ctx, mock.AnythingOfType("service.ActContext")).Return([]byte("акт"), nil)
	files.On("SaveAct", ctx, int64(100), mock.AnythingOfType("string"), []byte("акт")).Return("acts/100/act.txt", nil)
	ledger.On("InsertEntries", ctx, mock.AnythingOfType("[]models.ActEntry")).Return(nil)
	notifier.On("NotifyUser", ctx, int64(100), EventActGenerated, mock.Anything).Return(nil)

	results, err := svc.RunActSweep(ctx)

	assert.NoError(t, err)
	assert.Len(t, results, 1)
	assert.Equal(t, int64(100), results[0].AssigneeID)
	assert.ElementsMatch(t, []uuid.UUID{p1.ID, p2.ID}, results[0].CoveredProblemIDs)
	assert.Equal(t, "Весенний обход", results[0].Context.ListTitle)
	assert.Equal(t, "Иванов Иван Иванович", results[0].Context.FIO)
	assert.Len(t, results[0].Context.Problems, 2)
	renderer.AssertNumberOfCalls(t, "RenderAct", 1)
}

func TestActService_RunActSweep_SkipsAssigneesWithoutNewAcceptedProblems(t *testing.T) {
	staff := new(mockStaffSource)
	candidates := new(mockActCandidates)
	renderer := new(mockActRenderer)
	svc := NewActService(staff, candidates, new(mockActLedger), renderer, new(mockActFileStore), nil)
	ctx := context.Background()

	staff.On("ListAll", ctx).Return([]models.Staff{staffMember(100, "Иванов", "слесарь")}, nil)
	candidates.On("ListAcceptedByAssignee", ctx, int64(100)).Return([]models.ProblemWithList{}, nil)

	results, err := svc.RunActSweep(ctx)

	assert.NoError(t, err)
	assert.Empty(t, results)
	renderer.AssertNotCalled(t, "RenderAct", mock.Anything, mock.Anything)
}

func TestActService_RunActSweep_ConflictMeansAlreadyCovered(t *testing.T) {
	staff := new(mockStaffSource)
	candidates := new(mockActCandidates)
	ledger := new(mockActLedger)
	renderer := new(mockActRenderer)
	files := new(mockActFileStore)
	notifier := new(mockNotifier)
	svc := NewActService(staff, candidates, ledger, renderer, files, notifier)
	ctx := context.Background()

	staff.On("ListAll", ctx).Return([]models.Staff{staffMember(100, "Иванов", "слесарь")}, nil)
	candidates.On("ListAcceptedByAssignee", ctx, int64(100)).Return([]models.ProblemWithList{acceptedProblem(1, "Протечка")}, nil)
	renderer.On("RenderAct", ctx, mock.AnythingOfType("service.ActContext")).Return([]byte("акт"), nil)
	files.On("SaveAct", ctx, int64(100), mock.AnythingOfType("string"), []byte("акт")).Return("acts/100/act.txt", nil)
	// Параллельный проход успел записать пары первым.
	ledger.On("InsertEntries", ctx, mock.AnythingOfType("[]models.ActEntry")).Return(apperror.ErrActAlreadyRecorded)

	results, err := svc.RunActSweep(ctx)

	assert.NoError(t, err)
	assert.Empty(t, results)
	notifier.AssertNotCalled(t, "NotifyUser", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestActService_RunActSweep_FailureForOneAssigneeDoesNotStopOthers(t *testing.T) {
	staff := new(mockStaffSource)
	candidates := new(mockActCandidates)
	ledger := new(mockActLedger)
	renderer := new(mockActRenderer)
	files := new(mockActFileStore)
	svc := NewActService(staff, candidates, ledger, renderer, files, nil)
	ctx := context.Background()

	first := staffMember(100, "Иванов", "слесарь")
	second := staffMember(101, "Петров", "электрик")

	staff.On("ListAll", ctx).Return([]models.Staff{first, second}, nil)
	candidates.On("ListAcceptedByAssignee", ctx, int64(100)).Return([]models.ProblemWithList{}, errors.New("база недоступна"))
	candidates.On("ListAcceptedByAssignee", ctx, int64(101)).Return([]models.ProblemWithList{acceptedProblem(3, "Замена лампы")}, nil)
	renderer.On("RenderAct", ctx, mock.AnythingOfType("service.ActContext")).Return([]byte("акт"), nil)
	files.On("SaveAct", ctx, int64(101), mock.AnythingOfType("string"), []byte("акт")).Return("acts/101/act.txt", nil)
	ledger.On("InsertEntries", ctx, mock.AnythingOfType("[]models.ActEntry")).Return(nil)

	results, err := svc.RunActSweep(ctx)

	assert.NoError(t, err)
	assert.Len(t, results, 1)
	assert.Equal(t, int64(101), results[0].AssigneeID)
}
