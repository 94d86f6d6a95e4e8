package report

import "time"

// DocumentMeta is the header printed on exported reports.
type DocumentMeta struct {
	Title       string
	Intent      Intent
	Range       DateRange
	GroupedBy   []string
	GeneratedAt time.Time
}

// Document is a rendered downloadable report.
type Document struct {
	Filename    string
	ContentType string
	Body        []byte
}

// Renderer turns a tabular result into a document.
type Renderer interface {
	Render(meta DocumentMeta, result Result) (Document, error)
}

// Renderers maps document formats to their renderer.
type Renderers map[Format]Renderer
