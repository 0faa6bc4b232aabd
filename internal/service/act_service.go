package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/upravdom/problembot/internal/logger"
	"github.com/upravdom/problembot/internal/models"
	"github.com/upravdom/problembot/internal/pkg/apperror"
)

// StaffSource — справочник известных исполнителей.
type StaffSource interface {
	ListAll(ctx context.Context) ([]models.Staff, error)
}

// ActCandidateSource отдаёт принятые проблемы исполнителя без записи
// в журнале актов.
type ActCandidateSource interface {
	ListAcceptedByAssignee(ctx context.Context, assignee int64) ([]models.ProblemWithList, error)
}

// ActLedger фиксирует покрытые актом пары (проблема, исполнитель).
type ActLedger interface {
	InsertEntries(ctx context.Context, entries []models.ActEntry) error
}

// ActRenderer превращает контекст акта в готовый документ.
// Реализация внешняя; движку важны только байты и ошибка.
type ActRenderer interface {
	RenderAct(ctx context.Context, actCtx ActContext) ([]byte, error)
}

// ActFileStore кладёт готовый документ в хранилище и возвращает путь.
type ActFileStore interface {
	SaveAct(ctx context.Context, assignee int64, name string, data []byte) (string, error)
}

// ActProblem — строка акта.
type ActProblem struct {
	Number   int    `json:"number"`
	Title    string `json:"title"`
	ListCode string `json:"list_code"`
}

// ActContext — данные для рендера акта выполненных работ.
type ActContext struct {
	Assignee    int64        `json:"assignee"`
	FIO         string       `json:"fio"`
	Post        string       `json:"post"`
	ListTitle   string       `json:"list_title"`
	GeneratedAt time.Time    `json:"generated_at"`
	Problems    []ActProblem `json:"problems"`
}

// ActResult — итог по одному исполнителю за проход.
type ActResult struct {
	AssigneeID        int64       `json:"assignee_id"`
	Context           ActContext  `json:"context"`
	CoveredProblemIDs []uuid.UUID `json:"covered_problem_ids"`
	FilePath          string      `json:"file_path"`
}

// ActService формирует акты выполненных работ. Журнал актов делает проход
// идемпотентным: повторный запуск без новых принятых задач ничего не создаёт.
type ActService struct {
	staff    StaffSource
	problems ActCandidateSource
	ledger   ActLedger
	renderer ActRenderer
	files    ActFileStore
	notifier Notifier
}

func NewActService(staff StaffSource, problems ActCandidateSource, ledger ActLedger, renderer ActRenderer, files ActFileStore, notifier Notifier) *ActService {
	return &ActService{
		staff:    staff,
		problems: problems,
		ledger:   ledger,
		renderer: renderer,
		files:    files,
		notifier: notifier,
	}
}

// RunActSweep — разовый проход по всем известным исполнителям.
// На каждого: собрать непокрытые принятые задачи, отрендерить один акт на
// всех, записать пары в журнал. Запись идёт строго после успешного рендера:
// сбой между ними может дать повторный акт при следующем проходе, но не
// потерянный. Ошибка по одному исполнителю не прерывает остальных.
func (s *ActService) RunActSweep(ctx context.Context) ([]ActResult, error) {
	staff, err := s.staff.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	var results []ActResult
	for _, member := range staff {
		result, err := s.sweepExecutor(ctx, member)
		if err != nil {
			logger.Log.WithError(err).WithField("assignee", member.Assignee).
				Error("не удалось сформировать акт")
			continue
		}
		if result != nil {
			results = append(results, *result)
		}
	}
	return results, nil
}

// sweepExecutor обрабатывает одного исполнителя. nil без ошибки — покрывать нечего.
func (s *ActService) sweepExecutor(ctx context.Context, member models.Staff) (*ActResult, error) {
	candidates, err := s.problems.ListAcceptedByAssignee(ctx, member.Assignee)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	actCtx := ActContext{
		Assignee:    member.Assignee,
		GeneratedAt: time.Now().UTC(),
		// заголовок акта — список первой попавшейся задачи
		ListTitle: candidates[0].ListTitle,
	}
	if actCtx.ListTitle == "" {
		actCtx.ListTitle = candidates[0].ListCode
	}
	if member.FIO != nil {
		actCtx.FIO = *member.FIO
	}
	if member.Post != nil {
		actCtx.Post = *member.Post
	}

	entries := make([]models.ActEntry, 0, len(candidates))
	covered := make([]uuid.UUID, 0, len(candidates))
	for _, c := range candidates {
		actCtx.Problems = append(actCtx.Problems, ActProblem{
			Number:   c.Number,
			Title:    c.Title,
			ListCode: c.ListCode,
		})
		entries = append(entries, models.ActEntry{ProblemID: c.ID, Assignee: member.Assignee})
		covered = append(covered, c.ID)
	}

	data, err := s.renderer.RenderAct(ctx, actCtx)
	if err != nil {
		return nil, err
	}

	name := "act_" + actCtx.GeneratedAt.Format("20060102_150405") + ".txt"
	path, err := s.files.SaveAct(ctx, member.Assignee, name, data)
	if err != nil {
		return nil, err
	}

	if err := s.ledger.InsertEntries(ctx, entries); err != nil {
		// Conflict означает гонку с параллельным проходом: пары уже
		// записаны, акт по ним считается сформированным.
		if apperror.IsConflict(err) {
			logger.Log.WithField("assignee", member.Assignee).
				Warn("акт уже зафиксирован параллельным проходом")
			return nil, nil
		}
		return nil, err
	}

	if s.notifier != nil {
		if err := s.notifier.NotifyUser(ctx, member.Assignee, EventActGenerated, map[string]any{
			"file_path": path,
			"problems":  len(covered),
		}); err != nil {
			logger.Log.WithError(err).WithField("assignee", member.Assignee).
				Warn("не удалось уведомить о готовом акте")
		}
	}

	return &ActResult{
		AssigneeID:        member.Assignee,
		Context:           actCtx,
		CoveredProblemIDs: covered,
		FilePath:          path,
	}, nil
}
