package importer

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/upravdom/problembot/internal/service"
)

// ParseProblemsXLSX разбирает файл списка проблем.
//
// Ожидаемые колонки первой строки: id | title | assignee | due_date, где
// id — номер проблемы в списке, assignee — ID исполнителей (один или
// несколько через запятую), due_date — дата (ячейка-дата или YYYY-MM-DD).
// Строки без корректного номера пропускаются.
func ParseProblemsXLSX(data []byte) ([]service.ImportedProblem, error) {
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

	cols, err := headerIndex(rows[0], "id", "title", "assignee", "due_date")
	if err != nil {
		return nil, err
	}

	var out []service.ImportedProblem
	for _, row := range rows[1:] {
		number, err := strconv.Atoi(strings.TrimSpace(cell(row, cols["id"])))
		if err != nil {
			continue
		}

		p := service.ImportedProblem{
			Number:    number,
			Title:     strings.TrimSpace(cell(row, cols["title"])),
			Assignees: parseAssignees(cell(row, cols["assignee"])),
		}
		if due := normalizeDate(cell(row, cols["due_date"])); due != "" {
			p.DueDate = &due
		}
		out = append(out, p)
	}
	return out, nil
}

// parseAssignees разбирает один или несколько ID через запятую.
// Кривые элементы пропускаются.
func parseAssignees(raw string) []int64 {
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

// normalizeDate приводит значение ячейки к YYYY-MM-DD.
// excelize отдаёт даты в формате отображения, поэтому пробуем несколько
// известных вариантов; нераспознанное значение отбрасывается.
func normalizeDate(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	for _, layout := range []string{"2006-01-02", "01-02-06", "1/2/06 15:04", "01/02/2006", "02.01.2006"} {
		if d, err := time.Parse(layout, raw); err == nil {
			return d.Format("2006-01-02")
		}
	}
	return ""
}

// headerIndex находит обязательные колонки в строке заголовка.
func headerIndex(header []string, names ...string) (map[string]int, error) {
	cols := make(map[string]int, len(names))
	for idx, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = idx
	}
	out := make(map[string]int, len(names))
	for _, name := range names {
		idx, ok := cols[name]
		if !ok {
			return nil, fmt.Errorf("importer: в xlsx не найдена колонка %q", name)
		}
		out[name] = idx
	}
	return out, nil
}

func cell(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return row[idx]
}
