package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/upravdom/problembot/internal/importer"
	"github.com/upravdom/problembot/internal/service"
)

// StaffHandler отвечает за справочник сотрудников для актов.
type StaffHandler struct {
	staff *service.StaffService
	users userDirectory
}

// NewStaffHandler создаёт новый хэндлер.
func NewStaffHandler(staff *service.StaffService, users userDirectory) *StaffHandler {
	return &StaffHandler{staff: staff, users: users}
}

// Import обрабатывает POST /api/staff/import.
// Multipart форма: file — xlsx со столбцами assignee|fio|post.
func (h *StaffHandler) Import(c *gin.Context) {
	if _, err := requireAdmin(c, h.users); err != nil {
		_ = c.Error(err)
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "файл xlsx обязателен"})
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		_ = c.Error(err)
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		_ = c.Error(err)
		return
	}

	rows, err := importer.ParseStaffXLSX(data)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	count, err := h.staff.ImportStaff(c.Request.Context(), rows)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"imported": count})
}

// List обрабатывает GET /api/staff.
func (h *StaffHandler) List(c *gin.Context) {
	if _, err := requireAdmin(c, h.users); err != nil {
		_ = c.Error(err)
		return
	}

	staff, err := h.staff.ListStaff(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"staff": staff})
}
