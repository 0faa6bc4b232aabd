package service

import (
	"context"

	"github.com/upravdom/problembot/internal/models"
)

// StaffStore — справочник сотрудников.
type StaffStore interface {
	Upsert(ctx context.Context, staff *models.Staff) error
	ListAll(ctx context.Context) ([]models.Staff, error)
}

// StaffService обновляет справочник сотрудников из файла заказчика.
type StaffService struct {
	staff StaffStore
}

func NewStaffService(staff StaffStore) *StaffService {
	return &StaffService{staff: staff}
}

// ImportStaff записывает разобранные строки справочника, возвращает
// количество обновлённых записей.
func (s *StaffService) ImportStaff(ctx context.Context, rows []models.Staff) (int, error) {
	for i := range rows {
		if err := s.staff.Upsert(ctx, &rows[i]); err != nil {
			return i, err
		}
	}
	return len(rows), nil
}

// ListStaff возвращает весь справочник.
func (s *StaffService) ListStaff(ctx context.Context) ([]models.Staff, error) {
	return s.staff.ListAll(ctx)
}
