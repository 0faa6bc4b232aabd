package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// FileStorage — файловое хранилище вложений отчётов и готовых актов.
type FileStorage struct {
	rootPath       string
	maxUploadBytes int64
}

// NewFileStorage создаёт хранилище с каталогами reports/ и acts/.
func NewFileStorage(rootPath string, maxUploadMB int64) (*FileStorage, error) {
	for _, sub := range []string{"reports", "acts"} {
		if err := os.MkdirAll(filepath.Join(rootPath, sub), 0o755); err != nil {
			return nil, fmt.Errorf("storage: не удалось создать каталог %s: %w", sub, err)
		}
	}
	return &FileStorage{
		rootPath:       rootPath,
		maxUploadBytes: maxUploadMB * 1024 * 1024,
	}, nil
}

// SaveReportFile сохраняет вложение отчёта и возвращает относительный путь.
func (s *FileStorage) SaveReportFile(ctx context.Context, reportID uuid.UUID, originalName string, r io.Reader) (string, int64, error) {
	if err := ctx.Err(); err != nil {
		return "", 0, err
	}

	safeName := sanitizeFilename(originalName)
	fileName := fmt.Sprintf("%d_%s", time.Now().UnixNano(), safeName)

	reportDir := filepath.Join(s.rootPath, "reports", reportID.String())
	if err := os.MkdirAll(reportDir, 0o755); err != nil {
		return "", 0, fmt.Errorf("storage: не удалось создать каталог отчёта: %w", err)
	}

	targetPath := filepath.Join(reportDir, fileName)
	tempPath := targetPath + ".tmp"

	f, err := os.Create(tempPath)
	if err != nil {
		return "", 0, fmt.Errorf("storage: не удалось создать файл: %w", err)
	}
	defer f.Close()

	limitedReader := io.LimitedReader{R: r, N: s.maxUploadBytes + 1}
	written, err := io.Copy(f, &limitedReader)
	if err != nil {
		_ = os.Remove(tempPath)
		return "", 0, fmt.Errorf("storage: ошибка записи файла: %w", err)
	}

	if written > s.maxUploadBytes {
		_ = os.Remove(tempPath)
		return "", 0, fmt.Errorf("storage: размер файла превышает лимит %d байт", s.maxUploadBytes)
	}

	if err := f.Close(); err != nil {
		return "", 0, fmt.Errorf("storage: ошибка закрытия файла: %w", err)
	}

	if err := os.Rename(tempPath, targetPath); err != nil {
		return "", 0, fmt.Errorf("storage: не удалось переименовать файл: %w", err)
	}

	relative := filepath.Join("reports", reportID.String(), fileName)
	return relative, written, nil
}

// SaveAct кладёт готовый документ акта и возвращает относительный путь.
func (s *FileStorage) SaveAct(ctx context.Context, assignee int64, name string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	dir := filepath.Join(s.rootPath, "acts", strconv.FormatInt(assignee, 10))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("storage: не удалось создать каталог актов: %w", err)
	}

	targetPath := filepath.Join(dir, sanitizeFilename(name))
	tempPath := targetPath + ".tmp"
	if err := os.WriteFile(tempPath, data, 0o644); err != nil {
		return "", fmt.Errorf("storage: ошибка записи акта: %w", err)
	}
	if err := os.Rename(tempPath, targetPath); err != nil {
		_ = os.Remove(tempPath)
		return "", fmt.Errorf("storage: не удалось переименовать акт: %w", err)
	}

	return filepath.Join("acts", strconv.FormatInt(assignee, 10), sanitizeFilename(name)), nil
}

// sanitizeFilename отрезает пути и заменяет опасные символы.
func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, " ", "_")
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.', r == '_', r == '-':
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "file"
	}
	return b.String()
}
