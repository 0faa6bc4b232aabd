package importer

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/upravdom/problembot/internal/models"
)

// ParseStaffXLSX разбирает справочник сотрудников.
//
// Обязательная колонка — assignee (внешний ID исполнителя), опциональные —
// post (должность) и fio (ФИО). Строки с кривым ID пропускаются.
func ParseStaffXLSX(data []byte) ([]models.Staff, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("importer: не удалось открыть xlsx: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("importer: не удалось прочитать лист: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("importer: файл пуст")
	}

	cols, err := headerIndex(rows[0], "assignee")
	if err != nil {
		return nil, fmt.Errorf("importer: в файле нет колонки 'assignee': %w", err)
	}
	optional := make(map[string]int)
	for idx, h := range rows[0] {
		name := strings.ToLower(strings.TrimSpace(h))
		if name == "post" || name == "fio" {
			optional[name] = idx
		}
	}

	var out []models.Staff
	for _, row := range rows[1:] {
		assignee, err := strconv.ParseInt(strings.TrimSpace(cell(row, cols["assignee"])), 10, 64)
		if err != nil {
			continue
		}

		member := models.Staff{Assignee: assignee}
		if idx, ok := optional["post"]; ok {
			if v := strings.TrimSpace(cell(row, idx)); v != "" {
				member.Post = &v
			}
		}
		if idx, ok := optional["fio"]; ok {
			if v := strings.TrimSpace(cell(row, idx)); v != "" {
				member.FIO = &v
			}
		}
		out = append(out, member)
	}
	return out, nil
}
