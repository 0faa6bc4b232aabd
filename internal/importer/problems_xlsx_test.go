package importer

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func buildXLSX(t *testing.T, rows [][]string) []byte {
	t.Helper()

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		for j, value := range row {
			cellName, err := excelize.CoordinatesToCellName(j+1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, cellName, value))
		}
	}

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return buf.Bytes()
}

func TestParseProblemsXLSX(t *testing.T) {
	data := buildXLSX(t, [][]string{
		{"id", "title", "assignee", "due_date"},
		{"1", "Протечка в подвале", "100", "2026-09-15"},
		{"2", "Ремонт домофона", "100, 101", ""},
		{"кривой", "строка без номера", "100", "2026-09-15"},
		{"3", "Покраска ограждения", "100, мусор, 102", "15.09.2026"},
	})

	rows, err := ParseProblemsXLSX(data)

	assert.NoError(t, err)
	assert.Len(t, rows, 3)

	assert.Equal(t, 1, rows[0].Number)
	assert.Equal(t, "Протечка в подвале", rows[0].Title)
	assert.Equal(t, []int64{100}, rows[0].Assignees)
	require.NotNil(t, rows[0].DueDate)
	assert.Equal(t, "2026-09-15", *rows[0].DueDate)

	assert.Equal(t, []int64{100, 101}, rows[1].Assignees)
	assert.Nil(t, rows[1].DueDate)

	// Кривой элемент списка исполнителей пропущен, дата в формате DD.MM.YYYY нормализована.
	assert.Equal(t, []int64{100, 102}, rows[2].Assignees)
	require.NotNil(t, rows[2].DueDate)
	assert.Equal(t, "2026-09-15", *rows[2].DueDate)
}

func TestParseProblemsXLSX_MissingColumn(t *testing.T) {
	data := buildXLSX(t, [][]string{
		{"id", "title", "assignee"},
		{"1", "Протечка", "100"},
	})

	_, err := ParseProblemsXLSX(data)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "due_date")
}

func TestParseProblemsXLSX_NotAnXLSX(t *testing.T) {
	_, err := ParseProblemsXLSX([]byte("это не xlsx"))

	assert.Error(t, err)
}

func TestParseStaffXLSX(t *testing.T) {
	data := buildXLSX(t, [][]string{
		{"assignee", "fio", "post"},
		{"100", "Иванов Иван Иванович", "слесарь-сантехник"},
		{"101", "", ""},
		{"не число", "Петров", "электрик"},
	})

	staff, err := ParseStaffXLSX(data)

	assert.NoError(t, err)
	assert.Len(t, staff, 2)

	assert.Equal(t, int64(100), staff[0].Assignee)
	require.NotNil(t, staff[0].FIO)
	assert.Equal(t, "Иванов Иван Иванович", *staff[0].FIO)
	require.NotNil(t, staff[0].Post)
	assert.Equal(t, "слесарь-сантехник", *staff[0].Post)

	assert.Equal(t, int64(101), staff[1].Assignee)
	assert.Nil(t, staff[1].FIO)
	assert.Nil(t, staff[1].Post)
}
