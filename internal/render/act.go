package render

import (
	"bytes"
	"context"
	"fmt"
	"text/template"

	"github.com/upravdom/problembot/internal/service"
)

// Текстовый шаблон акта. Внешний рендерер документов (docx и т.п.)
// подключается вместо этой реализации через service.ActRenderer.
const actTemplate = `АКТ ВЫПОЛНЕННЫХ РАБОТ

Список: {{.ListTitle}}
Исполнитель: {{if .FIO}}{{.FIO}}{{else}}{{.Assignee}}{{end}}{{if .Post}} ({{.Post}}){{end}}
Дата формирования: {{.GeneratedAt.Format "2006-01-02"}}

Выполненные и принятые задачи:
{{range .Problems}}  #{{.Number}} [{{.ListCode}}] — {{.Title}}
{{end}}
Всего задач: {{len .Problems}}
`

// ActRenderer — рендер акта из шаблона в текстовый документ.
type ActRenderer struct {
	tmpl *template.Template
}

func NewActRenderer() (*ActRenderer, error) {
	tmpl, err := template.New("act").Parse(actTemplate)
	if err != nil {
		return nil, fmt.Errorf("render: не удалось разобрать шаблон акта: %w", err)
	}
	return &ActRenderer{tmpl: tmpl}, nil
}

// RenderAct собирает документ по контексту.
func (r *ActRenderer) RenderAct(ctx context.Context, actCtx service.ActContext) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, actCtx); err != nil {
		return nil, fmt.Errorf("render: не удалось сформировать акт: %w", err)
	}
	return buf.Bytes(), nil
}
