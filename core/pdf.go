package core

import "context"

// PDFRenderer turns a complete HTML document into a PDF document.
type PDFRenderer interface {
	Render(ctx context.Context, html string) ([]byte, error)
}

// RenderError is a PDF rendering failure carrying a human-readable message.
type RenderError struct {
	Message string
	Err     error
}

func (e *RenderError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *RenderError) Unwrap() error { return e.Err }
