package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/upravdom/problembot/internal/logger"
	"github.com/upravdom/problembot/internal/models"
	"github.com/upravdom/problembot/internal/pkg/apperror"
)

// ProblemLifecycle — переходы статуса проблемы, которые движок голосования
// дёргает при финализации отчёта.
type ProblemLifecycle interface {
	AcceptProblem(ctx context.Context, problemID uuid.UUID) error
	RejectProblem(ctx context.Context, problemID uuid.UUID, reason string) error
}

// VoteOutcome — результат одного голоса.
type VoteOutcome struct {
	Finalized bool `json:"finalized"`
	Escalated bool `json:"escalated"`
}

// VoteRow — строка сводки голосования по отчёту.
type VoteRow struct {
	AdminID  int64  `json:"admin_id"`
	Tier     string `json:"tier"`
	Decision string `json:"decision"` // approved | rejected | pending
}

const reasonFallback = "Без объяснения"

// VoteService — движок согласования отчётов: двухступенчатое голосование
// с поглощающим отклонением и однократной эскалацией.
//
// Протокол:
//   - любой голос «отклонить», с любой ступени, немедленно и окончательно
//     финализирует отчёт как отклонённый;
//   - «принять» от обычного админа копит единогласие: когда ВСЕ обычные
//     админы проголосовали за, отчёт один раз пересылается основным;
//   - одного «принять» от основного админа достаточно для финализации.
//
// Конкурентные голоса по одному отчёту сериализуются в хранилище: каждая
// запись голоса идёт в транзакции с блокировкой строки отчёта и проверкой
// status='pending'. Отсюда финализация не более одного раза (проигравший
// гонку голос получает InvalidState) и однократная эскалация (переход
// порога единогласия виден ровно одному голосующему).
type VoteService struct {
	reports  ReportStore
	problems ProblemLifecycle
	roster   TierPartitioner
	notifier Notifier
}

func NewVoteService(reports ReportStore, problems ProblemLifecycle, roster TierPartitioner, notifier Notifier) *VoteService {
	return &VoteService{
		reports:  reports,
		problems: problems,
		roster:   roster,
		notifier: notifier,
	}
}

// CastVote обрабатывает голос админа по отчёту.
func (s *VoteService) CastVote(ctx context.Context, reportID uuid.UUID, adminID int64, decision string, reason *string) (VoteOutcome, error) {
	var out VoteOutcome

	if decision != models.DecisionApproved && decision != models.DecisionRejected {
		return out, apperror.ErrInvalidDecision
	}

	report, err := s.reports.GetByID(ctx, reportID)
	if err != nil {
		return out, err
	}
	if report.Status != models.ReportStatusPending {
		return out, apperror.ErrReportFinalized
	}

	regular, main, err := s.roster.Partition(ctx)
	if err != nil {
		return out, err
	}
	tier := tierOf(adminID, regular, main)
	if tier == "" {
		return out, apperror.ErrUnknownAdmin
	}

	if decision == models.DecisionRejected {
		return s.rejectReport(ctx, report, adminID, reason)
	}
	if tier == TierMain {
		return s.acceptReport(ctx, report, adminID)
	}
	return s.recordRegularApproval(ctx, report, adminID, regular, main)
}

// rejectReport — поглощающее отклонение: ступень голосующего не важна.
func (s *VoteService) rejectReport(ctx context.Context, report *models.Report, adminID int64, reason *string) (VoteOutcome, error) {
	var out VoteOutcome

	text := reasonFallback
	if reason != nil && *reason != "" {
		text = *reason
	}

	won, err := s.reports.FinalizeWithReview(ctx, report.ID, adminID, models.DecisionRejected, models.ReportStatusRejected, &text)
	if err != nil {
		return out, err
	}
	if !won {
		return out, apperror.ErrReportFinalized
	}

	if err := s.problems.RejectProblem(ctx, report.ProblemID, text); err != nil {
		return out, err
	}

	s.notify(ctx, report.UserID, EventReportRejected, map[string]any{
		"report_id": report.ID,
		"reason":    text,
	})

	out.Finalized = true
	return out, nil
}

// acceptReport — финализация одним голосом основного админа.
func (s *VoteService) acceptReport(ctx context.Context, report *models.Report, adminID int64) (VoteOutcome, error) {
	var out VoteOutcome

	won, err := s.reports.FinalizeWithReview(ctx, report.ID, adminID, models.DecisionApproved, models.ReportStatusAccepted, nil)
	if err != nil {
		return out, err
	}
	if !won {
		return out, apperror.ErrReportFinalized
	}

	if err := s.problems.AcceptProblem(ctx, report.ProblemID); err != nil {
		return out, err
	}

	s.notify(ctx, report.UserID, EventReportAccepted, map[string]any{
		"report_id": report.ID,
	})

	out.Finalized = true
	return out, nil
}

// recordRegularApproval фиксирует голос обычного админа и, если единогласие
// только что сложилось, один раз эскалирует отчёт основным админам.
// Единогласие пересчитывается с нуля на каждом голосе; пересылка срабатывает
// только на переходе false -> true. Срезы «до» и «после» хранилище снимает
// в одной транзакции под блокировкой строки отчёта, поэтому при
// одновременных голосах переход порога достаётся ровно одному из них.
func (s *VoteService) recordRegularApproval(ctx context.Context, report *models.Report, adminID int64, regular, main []int64) (VoteOutcome, error) {
	var out VoteOutcome

	before, after, err := s.reports.RecordApproval(ctx, report.ID, adminID)
	if err != nil {
		return out, err
	}
	if !unanimous(regular, after) || unanimous(regular, before) {
		return out, nil
	}

	s.escalate(ctx, report, main)
	out.Escalated = true
	return out, nil
}

// escalate пересылает отчёт основным админам. Отсутствие основных админов —
// операционная проблема (отчёт некому финализировать), но не ошибка вызова.
func (s *VoteService) escalate(ctx context.Context, report *models.Report, main []int64) {
	if len(main) == 0 {
		logger.Log.WithField("report_id", report.ID).
			Warn("единогласие достигнуто, но основных администраторов нет: отчёт останется на рассмотрении")
		return
	}
	for _, id := range main {
		if err := s.notifier.NotifyUser(ctx, id, EventReportEscalated, map[string]any{
			"report_id":  report.ID,
			"problem_id": report.ProblemID,
			"user_id":    report.UserID,
		}); err != nil {
			logger.Log.WithError(err).WithField("admin_id", id).
				Warn("не удалось переслать отчёт основному администратору")
		}
	}
}

// VoteSummary — разбивка голосов по каждому админу обеих ступеней.
func (s *VoteService) VoteSummary(ctx context.Context, reportID uuid.UUID) ([]VoteRow, error) {
	if _, err := s.reports.GetByID(ctx, reportID); err != nil {
		return nil, err
	}

	regular, main, err := s.roster.Partition(ctx)
	if err != nil {
		return nil, err
	}
	reviews, err := s.reports.ListReviews(ctx, reportID)
	if err != nil {
		return nil, err
	}

	decisions := make(map[int64]string, len(reviews))
	for _, rv := range reviews {
		decisions[rv.AdminID] = rv.Decision
	}

	rows := make([]VoteRow, 0, len(regular)+len(main))
	appendTier := func(ids []int64, tier string) {
		for _, id := range ids {
			decision, ok := decisions[id]
			if !ok {
				decision = "pending"
			}
			rows = append(rows, VoteRow{AdminID: id, Tier: tier, Decision: decision})
		}
	}
	appendTier(regular, TierRegular)
	appendTier(main, TierMain)
	return rows, nil
}

func (s *VoteService) notify(ctx context.Context, userID int64, event string, data any) {
	if err := s.notifier.NotifyUser(ctx, userID, event, data); err != nil {
		logger.Log.WithError(err).WithFields(map[string]any{
			"user_id": userID,
			"event":   event,
		}).Warn("не удалось доставить уведомление")
	}
}

// unanimous: множество проголосовавших «принять» в точности совпадает с
// множеством обычных админов. Именно равенство, а не надмножество: повисший
// голос разжалованного админа единогласия не даёт. Пустое множество обычных
// админов единогласно вакуумно.
func unanimous(regular []int64, reviews []models.ReportReview) bool {
	approved := make(map[int64]struct{})
	for _, rv := range reviews {
		if rv.Decision == models.DecisionApproved {
			approved[rv.AdminID] = struct{}{}
		}
	}
	if len(approved) != len(regular) {
		return false
	}
	for _, id := range regular {
		if _, ok := approved[id]; !ok {
			return false
		}
	}
	return true
}

func tierOf(adminID int64, regular, main []int64) string {
	for _, id := range main {
		if id == adminID {
			return TierMain
		}
	}
	for _, id := range regular {
		if id == adminID {
			return TierRegular
		}
	}
	return ""
}
