package render

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/karnkeshav/automateresume/internal/common"
	"github.com/karnkeshav/automateresume/internal/config"
	apperrors "github.com/karnkeshav/automateresume/internal/errors"
)

// fakeEngine records calls so tests can verify lifecycle behavior without a
// browser process
type fakeEngine struct {
	pdf       []byte
	renderErr error
	rendered  bool
	closed    bool
}

func (f *fakeEngine) RenderPDF(ctx context.Context, html string, marginInches float64) ([]byte, error) {
	f.rendered = true
	if f.renderErr != nil {
		return nil, f.renderErr
	}
	return f.pdf, nil
}

func (f *fakeEngine) Close() error {
	f.closed = true
	return nil
}

func testRenderer(t *testing.T, engine *fakeEngine, cfg config.RenderConfig) *Renderer {
	t.Helper()
	r := NewRenderer(cfg, common.NewFileProcessor(nil), nil)
	r.newEngine = func(ctx context.Context) (Engine, error) {
		return engine, nil
	}
	return r
}

func TestRenderWritesArtifacts(t *testing.T) {
	dir := t.TempDir()
	htmlPath := filepath.Join(dir, "resume.html")
	pdfPath := filepath.Join(dir, "resume.pdf")

	engine := &fakeEngine{pdf: []byte("%PDF-1.4 fake")}
	r := testRenderer(t, engine, config.RenderConfig{MarginInches: 0.4})

	markdown := "# Jane Doe\n\n## Skills\n\n- Go\n- Kubernetes\n"
	if err := r.Render(context.Background(), markdown, "Jane Doe Resume", htmlPath, pdfPath); err != nil {
		t.Fatalf("Render() returned error: %v", err)
	}

	html, err := os.ReadFile(htmlPath)
	if err != nil {
		t.Fatalf("HTML artifact not written: %v", err)
	}

	for _, want := range []string{"<h1", "Jane Doe", "<ul>", "<li>Go</li>", "<title>Jane Doe Resume</title>"} {
		if !strings.Contains(string(html), want) {
			t.Errorf("HTML artifact missing %q", want)
		}
	}

	pdf, err := os.ReadFile(pdfPath)
	if err != nil {
		t.Fatalf("PDF artifact not written: %v", err)
	}
	if len(pdf) == 0 {
		t.Error("PDF artifact is empty")
	}

	if !engine.closed {
		t.Error("engine must be closed after a successful render")
	}
}

func TestRenderClosesEngineOnFailure(t *testing.T) {
	dir := t.TempDir()
	engine := &fakeEngine{renderErr: errors.New("export blew up")}
	r := testRenderer(t, engine, config.RenderConfig{})

	err := r.Render(context.Background(), "# Resume", "Resume",
		filepath.Join(dir, "resume.html"), filepath.Join(dir, "resume.pdf"))
	if err == nil {
		t.Fatal("expected error when PDF export fails")
	}

	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *AppError, got %T", err)
	}
	if appErr.Type != apperrors.ErrorTypeRender {
		t.Errorf("Type = %q, want %q", appErr.Type, apperrors.ErrorTypeRender)
	}

	if !engine.rendered {
		t.Error("render should have been attempted")
	}
	if !engine.closed {
		t.Error("engine must be closed even when PDF export fails")
	}
}

func TestRenderHTMLPersistedBeforeEngineFailure(t *testing.T) {
	dir := t.TempDir()
	htmlPath := filepath.Join(dir, "resume.html")

	engine := &fakeEngine{renderErr: errors.New("export blew up")}
	r := testRenderer(t, engine, config.RenderConfig{})

	if err := r.Render(context.Background(), "# Resume", "Resume", htmlPath, filepath.Join(dir, "resume.pdf")); err == nil {
		t.Fatal("expected error")
	}

	if _, err := os.Stat(htmlPath); err != nil {
		t.Error("HTML artifact must be persisted before the PDF engine runs")
	}
}

func TestRenderTemplateOverride(t *testing.T) {
	dir := t.TempDir()
	templateFile := filepath.Join(dir, "custom.html")
	custom := `<html><head><title>{{.Title}}</title></head><body class="custom">{{.Body}}</body></html>`
	if err := os.WriteFile(templateFile, []byte(custom), 0o644); err != nil {
		t.Fatal(err)
	}

	htmlPath := filepath.Join(dir, "resume.html")
	engine := &fakeEngine{pdf: []byte("pdf")}
	r := testRenderer(t, engine, config.RenderConfig{TemplateFile: templateFile})

	if err := r.Render(context.Background(), "# Resume", "My Title", htmlPath, filepath.Join(dir, "resume.pdf")); err != nil {
		t.Fatalf("Render() returned error: %v", err)
	}

	html, _ := os.ReadFile(htmlPath)
	if !strings.Contains(string(html), `class="custom"`) {
		t.Error("external template was not applied")
	}
	if !strings.Contains(string(html), "My Title") {
		t.Error("title substitution point not filled")
	}
}

func TestRenderEngineLaunchFailure(t *testing.T) {
	dir := t.TempDir()
	r := NewRenderer(config.RenderConfig{}, common.NewFileProcessor(nil), nil)
	r.newEngine = func(ctx context.Context) (Engine, error) {
		return nil, errors.New("no browser installed")
	}

	err := r.Render(context.Background(), "# Resume", "Resume",
		filepath.Join(dir, "resume.html"), filepath.Join(dir, "resume.pdf"))
	if err == nil {
		t.Fatal("expected error when engine cannot launch")
	}

	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) || appErr.Code != apperrors.ErrCodeRenderFailed {
		t.Errorf("expected render failure code, got %v", err)
	}
}
