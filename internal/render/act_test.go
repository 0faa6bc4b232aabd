package render

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/upravdom/problembot/internal/service"
)

func TestActRenderer_RenderAct(t *testing.T) {
	renderer, err := NewActRenderer()
	require.NoError(t, err)

	data, err := renderer.RenderAct(context.Background(), service.ActContext{
		Assignee:    100,
		FIO:         "Иванов Иван Иванович",
		Post:        "слесарь-сантехник",
		ListTitle:   "Весенний обход",
		GeneratedAt: time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
		Problems: []service.ActProblem{
			{Number: 1, Title: "Протечка в подвале", ListCode: "spring-2026"},
			{Number: 2, Title: "Ремонт домофона", ListCode: "spring-2026"},
		},
	})

	assert.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, "АКТ ВЫПОЛНЕННЫХ РАБОТ")
	assert.Contains(t, text, "Весенний обход")
	assert.Contains(t, text, "Иванов Иван Иванович (слесарь-сантехник)")
	assert.Contains(t, text, "2026-08-30")
	assert.Contains(t, text, "#1 [spring-2026] — Протечка в подвале")
	assert.Contains(t, text, "Всего задач: 2")
}

func TestActRenderer_RenderAct_FallsBackToAssigneeID(t *testing.T) {
	renderer, err := NewActRenderer()
	require.NoError(t, err)

	data, err := renderer.RenderAct(context.Background(), service.ActContext{
		Assignee:    100,
		ListTitle:   "Весенний обход",
		GeneratedAt: time.Now(),
	})

	assert.NoError(t, err)
	assert.Contains(t, string(data), "Исполнитель: 100")
}

func TestActRenderer_RenderAct_CancelledContext(t *testing.T) {
	renderer, err := NewActRenderer()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = renderer.RenderAct(ctx, service.ActContext{})
	assert.Error(t, err)
}
