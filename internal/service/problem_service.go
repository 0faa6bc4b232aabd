package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/upravdom/problembot/internal/logger"
	"github.com/upravdom/problembot/internal/models"
	"github.com/upravdom/problembot/internal/pkg/apperror"
)

type ProblemStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Problem, error)
	GetByListAndNumber(ctx context.Context, listID uuid.UUID, number int) (*models.Problem, error)
	Create(ctx context.Context, p *models.Problem) error
	UpdateImported(ctx context.Context, p *models.Problem) error
	SetStatus(ctx context.Context, id uuid.UUID, status string, note *string) error
	SetStatusKeepNote(ctx context.Context, id uuid.UUID, status string) error
	ListByList(ctx context.Context, listID uuid.UUID) ([]models.Problem, error)
}

type ListStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.ProblemList, error)
	GetByCode(ctx context.Context, code string) (*models.ProblemList, error)
	GetOrCreate(ctx context.Context, code, title string) (*models.ProblemList, error)
	Close(ctx context.Context, id uuid.UUID, at time.Time) error
	StatusCounts(ctx context.Context, listID uuid.UUID) (map[string]int, error)
}

type ReportStore interface {
	Create(ctx context.Context, report *models.Report) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Report, error)
	FinalizeWithReview(ctx context.Context, id uuid.UUID, adminID int64, decision, status string, reason *string) (bool, error)
	RecordApproval(ctx context.Context, id uuid.UUID, adminID int64) (before, after []models.ReportReview, err error)
	ListReviews(ctx context.Context, reportID uuid.UUID) ([]models.ReportReview, error)
	AddMedia(ctx context.Context, media *models.ReportMedia) error
}

// TierPartitioner отдаёт актуальное разбиение админов по ступеням.
type TierPartitioner interface {
	Partition(ctx context.Context) (regular []int64, main []int64, err error)
}

// ImportedProblem — провалидированная строка файла импорта.
type ImportedProblem struct {
	Number    int
	Title     string
	Assignees []int64
	DueDate   *string
}

// ProblemService управляет жизненным циклом проблем: импорт списков,
// приём отчётов, переходы статусов и автозакрытие списков.
type ProblemService struct {
	problems ProblemStore
	lists    ListStore
	reports  ReportStore
	roster   TierPartitioner
	notifier Notifier
}

func NewProblemService(problems ProblemStore, lists ListStore, reports ReportStore, roster TierPartitioner, notifier Notifier) *ProblemService {
	return &ProblemService{
		problems: problems,
		lists:    lists,
		reports:  reports,
		roster:   roster,
		notifier: notifier,
	}
}

// UpsertProblems обновляет/создаёт список и его проблемы по данным файла.
// Новые проблемы стартуют в работе; у существующих обновляются только
// поля из файла, статус и примечание не трогаются.
func (s *ProblemService) UpsertProblems(ctx context.Context, listCode, listTitle string, rows []ImportedProblem) (*models.ProblemList, error) {
	list, err := s.lists.GetOrCreate(ctx, listCode, listTitle)
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		existing, err := s.problems.GetByListAndNumber(ctx, list.ID, row.Number)
		if err != nil && !apperror.IsNotFound(err) {
			return nil, err
		}

		if existing == nil {
			p := &models.Problem{
				ListID:  list.ID,
				Number:  row.Number,
				Title:   row.Title,
				DueDate: row.DueDate,
			}
			p.SetAssignees(row.Assignees)
			if err := s.problems.Create(ctx, p); err != nil {
				return nil, err
			}
			continue
		}

		existing.Title = row.Title
		existing.DueDate = row.DueDate
		existing.SetAssignees(row.Assignees)
		if err := s.problems.UpdateImported(ctx, existing); err != nil {
			return nil, err
		}
	}

	return list, nil
}

// SubmitReport принимает отчёт по проблеме: создаёт новую запись Report
// (каждая пересдача — отдельная запись) и переводит проблему в REPORT_SENT.
// Предыдущий живой отчёт при этом просто вытесняется новым.
// Отчёт рассылается обычным админам; если обычных админов нет вовсе,
// единогласие пустого множества выполнено — сразу эскалируем основным.
func (s *ProblemService) SubmitReport(ctx context.Context, problemID uuid.UUID, userID int64) (*models.Report, error) {
	problem, err := s.problems.GetByID(ctx, problemID)
	if err != nil {
		return nil, err
	}
	list, err := s.lists.GetByID(ctx, problem.ListID)
	if err != nil {
		return nil, err
	}
	if list.IsClosed {
		return nil, apperror.ErrListClosed
	}

	report := &models.Report{ProblemID: problemID, UserID: userID}
	if err := s.reports.Create(ctx, report); err != nil {
		return nil, err
	}

	// REPORT_SENT, примечание прошлого отклонения остаётся видимым
	// до принятия отчёта.
	if err := s.problems.SetStatusKeepNote(ctx, problemID, models.ProblemStatusReportSent); err != nil {
		return nil, err
	}

	regular, main, err := s.roster.Partition(ctx)
	if err != nil {
		return nil, err
	}

	payload := map[string]any{
		"report_id":      report.ID,
		"problem_id":     problemID,
		"problem_number": problem.Number,
		"list_code":      list.Code,
		"user_id":        userID,
	}

	if len(regular) == 0 {
		if len(main) == 0 {
			logger.Log.WithField("report_id", report.ID).
				Warn("отчёт не разослан: в системе нет ни одного администратора")
		}
		s.fanOut(ctx, main, EventReportEscalated, payload)
	} else {
		s.fanOut(ctx, regular, EventReportSubmitted, payload)
	}

	return report, nil
}

// AttachMedia записывает метаданные вложения отчёта.
func (s *ProblemService) AttachMedia(ctx context.Context, reportID uuid.UUID, kind string, filePath, caption *string) (*models.ReportMedia, error) {
	if _, err := s.reports.GetByID(ctx, reportID); err != nil {
		return nil, err
	}
	media := &models.ReportMedia{
		ReportID: reportID,
		Kind:     kind,
		FilePath: filePath,
		Caption:  caption,
	}
	if err := s.reports.AddMedia(ctx, media); err != nil {
		return nil, err
	}
	return media, nil
}

// AcceptProblem — переход REPORT_SENT -> ACCEPTED: примечание очищается,
// после чего список закрывается, если принята последняя проблема.
func (s *ProblemService) AcceptProblem(ctx context.Context, problemID uuid.UUID) error {
	problem, err := s.problems.GetByID(ctx, problemID)
	if err != nil {
		return err
	}
	if err := s.problems.SetStatus(ctx, problemID, models.ProblemStatusAccepted, nil); err != nil {
		return err
	}
	return s.closeListIfCompleted(ctx, problem.ListID)
}

// RejectProblem — переход REPORT_SENT -> REJECTED с причиной в примечании.
// Закрытие списка здесь не пересчитывается: список не может раскрыться.
func (s *ProblemService) RejectProblem(ctx context.Context, problemID uuid.UUID, reason string) error {
	return s.problems.SetStatus(ctx, problemID, models.ProblemStatusRejected, &reason)
}

// closeListIfCompleted закрывает список, если все его проблемы приняты.
// Проверяется только на событии принятия.
func (s *ProblemService) closeListIfCompleted(ctx context.Context, listID uuid.UUID) error {
	counts, err := s.lists.StatusCounts(ctx, listID)
	if err != nil {
		return err
	}
	total := 0
	for _, n := range counts {
		total += n
	}
	if total == 0 || counts[models.ProblemStatusAccepted] != total {
		return nil
	}
	return s.lists.Close(ctx, listID, time.Now().UTC())
}

// ListProblems возвращает проблемы списка по его коду.
func (s *ProblemService) ListProblems(ctx context.Context, listCode string) (*models.ProblemList, []models.Problem, error) {
	list, err := s.lists.GetByCode(ctx, listCode)
	if err != nil {
		return nil, nil, err
	}
	problems, err := s.problems.ListByList(ctx, list.ID)
	if err != nil {
		return nil, nil, err
	}
	return list, problems, nil
}

// fanOut рассылает событие каждому получателю; ошибки доставки логируются
// и не прерывают остальных.
func (s *ProblemService) fanOut(ctx context.Context, userIDs []int64, event string, data any) {
	for _, id := range userIDs {
		if err := s.notifier.NotifyUser(ctx, id, event, data); err != nil {
			logger.Log.WithError(err).WithFields(map[string]any{
				"user_id": id,
				"event":   event,
			}).Warn("не удалось доставить уведомление")
		}
	}
}
