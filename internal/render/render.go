package render

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/karnkeshav/automateresume/internal/common"
	"github.com/karnkeshav/automateresume/internal/config"
	apperrors "github.com/karnkeshav/automateresume/internal/errors"

	"github.com/yuin/goldmark"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// builtinTemplate is the minimal document template used when no external
// template file is configured. It carries the two required substitution
// points: title and body.
const builtinTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
  body { font-family: Georgia, "Times New Roman", serif; font-size: 11pt; line-height: 1.4; color: #1a1a1a; margin: 0; }
  h1 { font-size: 17pt; margin: 0 0 4pt 0; border-bottom: 1.5pt solid #1a1a1a; padding-bottom: 3pt; }
  h2 { font-size: 13pt; margin: 10pt 0 4pt 0; border-bottom: 0.75pt solid #888; padding-bottom: 2pt; }
  h3 { font-size: 11.5pt; margin: 7pt 0 2pt 0; }
  ul { margin: 3pt 0; padding-left: 16pt; }
  li { margin: 1.5pt 0; }
  p { margin: 3pt 0; }
  code { font-family: "Courier New", monospace; font-size: 10pt; background: #f2f2f2; padding: 0 2pt; }
</style>
</head>
<body>
{{.Body}}
</body>
</html>
`

// templateData feeds the document template's substitution points
type templateData struct {
	Title string
	Body  template.HTML
}

// Renderer converts Markdown to a styled HTML document and exports it to PDF
// through a headless browser. The filled HTML is persisted before rendering so
// the renderer can be debugged independent of the PDF engine.
type Renderer struct {
	cfg    config.RenderConfig
	files  *common.FileProcessor
	logger *apperrors.Logger

	// newEngine is swapped out in tests to avoid launching a browser
	newEngine func(ctx context.Context) (Engine, error)
}

// NewRenderer creates a renderer from configuration
func NewRenderer(cfg config.RenderConfig, files *common.FileProcessor, logger *apperrors.Logger) *Renderer {
	return &Renderer{
		cfg:       cfg,
		files:     files,
		logger:    logger,
		newEngine: newChromeEngine,
	}
}

// Render converts the Markdown document to HTML, persists the HTML artifact,
// and exports the PDF. The browser engine is closed on every exit path.
func (r *Renderer) Render(ctx context.Context, markdown, title, htmlPath, pdfPath string) error {
	tracer := otel.Tracer("automateresume.render")
	ctx, span := tracer.Start(ctx, "render.pdf")
	defer span.End()

	span.SetAttributes(
		attribute.Int("render.markdown_length", len(markdown)),
		attribute.String("render.pdf_path", pdfPath),
	)

	html, err := r.fillTemplate(markdown, title)
	if err != nil {
		span.RecordError(err)
		return err
	}

	if err := r.files.WriteFile(htmlPath, html); err != nil {
		span.RecordError(err)
		return err
	}

	if r.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.Timeout)
		defer cancel()
	}

	engine, err := r.newEngine(ctx)
	if err != nil {
		span.RecordError(err)
		return apperrors.NewRenderError(apperrors.ErrCodeRenderFailed,
			"Failed to launch browser engine", err)
	}
	defer func() {
		if err := engine.Close(); err != nil && r.logger != nil {
			r.logger.Warn("Failed to close browser engine", "error", err)
		}
	}()

	pdf, err := engine.RenderPDF(ctx, html, r.cfg.MarginInches)
	if err != nil {
		span.RecordError(err)
		return apperrors.NewRenderError(apperrors.ErrCodeRenderFailed,
			"PDF export failed", err).WithContext("pdf_path", pdfPath)
	}

	if err := r.files.WriteBinaryFile(pdfPath, pdf); err != nil {
		span.RecordError(err)
		return err
	}

	span.SetAttributes(
		attribute.Bool("success", true),
		attribute.Int("render.pdf_size", len(pdf)),
	)

	if r.logger != nil {
		r.logger.Info("Rendered PDF", "path", pdfPath, "bytes", len(pdf))
	}

	return nil
}

// fillTemplate converts Markdown to HTML and fills the document template
func (r *Renderer) fillTemplate(markdown, title string) (string, error) {
	var body bytes.Buffer
	if err := goldmark.Convert([]byte(markdown), &body); err != nil {
		return "", apperrors.NewRenderError(apperrors.ErrCodeRenderFailed,
			"Markdown conversion failed", err)
	}

	source := builtinTemplate
	if r.cfg.TemplateFile != "" {
		content, err := r.files.ReadFile(r.cfg.TemplateFile)
		if err != nil {
			return "", apperrors.NewRenderError(apperrors.ErrCodeRenderFailed,
				fmt.Sprintf("Cannot read template file: %s", r.cfg.TemplateFile), err)
		}
		source = content
	}

	tmpl, err := template.New("document").Parse(source)
	if err != nil {
		return "", apperrors.NewRenderError(apperrors.ErrCodeRenderFailed,
			"Invalid document template", err)
	}

	var filled bytes.Buffer
	err = tmpl.Execute(&filled, templateData{
		Title: title,
		Body:  template.HTML(body.String()),
	})
	if err != nil {
		return "", apperrors.NewRenderError(apperrors.ErrCodeRenderFailed,
			"Template execution failed", err)
	}

	return filled.String(), nil
}
