package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/h2non/filetype"

	"github.com/upravdom/problembot/internal/logger"
	"github.com/upravdom/problembot/internal/models"
	"github.com/upravdom/problembot/internal/service"
	"github.com/upravdom/problembot/internal/storage"
)

type reportMediaSource interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Report, error)
	ListMedia(ctx context.Context, reportID uuid.UUID) ([]models.ReportMedia, error)
}

// ReportHandler принимает отчёты о выполнении с вложениями.
type ReportHandler struct {
	problems *service.ProblemService
	reports  reportMediaSource
	files    *storage.FileStorage
	users    userDirectory
}

// NewReportHandler создаёт новый хэндлер.
func NewReportHandler(problems *service.ProblemService, reports reportMediaSource, files *storage.FileStorage, users userDirectory) *ReportHandler {
	return &ReportHandler{problems: problems, reports: reports, files: files, users: users}
}

// Submit обрабатывает POST /api/problems/:id/reports.
// Multipart форма: files[] — вложения, caption — подпись.
func (h *ReportHandler) Submit(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	problemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "неверный идентификатор проблемы"})
		return
	}

	report, err := h.problems.SubmitReport(c.Request.Context(), problemID, userID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	var caption *string
	if v := strings.TrimSpace(c.PostForm("caption")); v != "" {
		caption = &v
	}

	var media []models.ReportMedia
	form, err := c.MultipartForm()
	if err == nil && form != nil {
		for _, fileHeader := range form.File["files"] {
			f, err := fileHeader.Open()
			if err != nil {
				logger.Log.WithError(err).Warn("отчёт: не удалось открыть вложение")
				continue
			}

			head := make([]byte, 261)
			n, _ := f.Read(head)
			head = head[:n]
			_ = f.Close()

			f, err = fileHeader.Open()
			if err != nil {
				continue
			}
			path, _, err := h.files.SaveReportFile(c.Request.Context(), report.ID, fileHeader.Filename, f)
			_ = f.Close()
			if err != nil {
				logger.Log.WithError(err).Warn("отчёт: не удалось сохранить вложение")
				continue
			}

			kind := detectMediaKind(head)
			item, err := h.problems.AttachMedia(c.Request.Context(), report.ID, kind, &path, caption)
			if err != nil {
				logger.Log.WithError(err).Warn("отчёт: не удалось записать вложение")
				continue
			}
			media = append(media, *item)
		}
	}

	if len(media) == 0 && caption != nil {
		if item, err := h.problems.AttachMedia(c.Request.Context(), report.ID, models.MediaKindText, nil, caption); err == nil {
			media = append(media, *item)
		}
	}

	c.JSON(http.StatusCreated, gin.H{
		"report": report,
		"media":  media,
	})
}

// Media обрабатывает GET /api/reports/:id/media.
// Вложения отчёта смотрят администраторы при рассмотрении.
func (h *ReportHandler) Media(c *gin.Context) {
	if _, err := requireAdmin(c, h.users); err != nil {
		_ = c.Error(err)
		return
	}

	reportID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "неверный идентификатор отчёта"})
		return
	}

	if _, err := h.reports.GetByID(c.Request.Context(), reportID); err != nil {
		_ = c.Error(err)
		return
	}

	media, err := h.reports.ListMedia(c.Request.Context(), reportID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"media": media})
}

// detectMediaKind определяет тип вложения по сигнатуре файла.
func detectMediaKind(head []byte) string {
	kind, err := filetype.Match(head)
	if err != nil || kind == filetype.Unknown {
		return models.MediaKindDocument
	}

	switch {
	case strings.HasPrefix(kind.MIME.Value, "image/"):
		return models.MediaKindPhoto
	case strings.HasPrefix(kind.MIME.Value, "video/"):
		return models.MediaKindVideo
	case strings.HasPrefix(kind.MIME.Value, "audio/"):
		return models.MediaKindAudio
	default:
		return models.MediaKindDocument
	}
}
