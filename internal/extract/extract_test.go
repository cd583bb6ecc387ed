package extract

import (
	"archive/zip"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	apperrors "github.com/karnkeshav/automateresume/internal/errors"
)

func writeDocx(t *testing.T, path, documentXML string) {
	t.Helper()

	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	w := zip.NewWriter(f)
	entry, err := w.Create("word/document.xml")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := entry.Write([]byte(documentXML)); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestTextPlainFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "resume.txt")
	if err := os.WriteFile(path, []byte("  Jane Doe\r\nSoftware Engineer\r\n\r\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	extractor := NewExtractor(nil, 0)
	got, err := extractor.Text(path)
	if err != nil {
		t.Fatalf("Text() returned error: %v", err)
	}

	want := "Jane Doe\nSoftware Engineer"
	if got != want {
		t.Errorf("Text() = %q, want %q", got, want)
	}
	if strings.Contains(got, "\r") {
		t.Error("extracted text must not contain carriage returns")
	}
}

func TestTextDocx(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "resume.docx")
	writeDocx(t, path, `<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>Jane Doe</w:t></w:r></w:p>
    <w:p><w:r><w:t>Software </w:t></w:r><w:r><w:t>Engineer</w:t></w:r></w:p>
  </w:body>
</w:document>`)

	extractor := NewExtractor(nil, 0)
	got, err := extractor.Text(path)
	if err != nil {
		t.Fatalf("Text() returned error: %v", err)
	}

	want := "Jane Doe\nSoftware Engineer"
	if got != want {
		t.Errorf("Text() = %q, want %q", got, want)
	}
}

func TestTextNotFound(t *testing.T) {
	extractor := NewExtractor(nil, 0)
	_, err := extractor.Text(filepath.Join(t.TempDir(), "missing.docx"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}

	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *AppError, got %T", err)
	}
	if appErr.Code != apperrors.ErrCodeResumeNotFound {
		t.Errorf("Code = %q, want %q", appErr.Code, apperrors.ErrCodeResumeNotFound)
	}
}

func TestTextCorruptDocx(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "resume.docx")
	if err := os.WriteFile(path, []byte("not a zip archive"), 0o644); err != nil {
		t.Fatal(err)
	}

	extractor := NewExtractor(nil, 0)
	_, err := extractor.Text(path)
	if err == nil {
		t.Fatal("expected error for corrupt document")
	}

	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *AppError, got %T", err)
	}
	if appErr.Code != apperrors.ErrCodeExtractionFailed {
		t.Errorf("Code = %q, want %q", appErr.Code, apperrors.ErrCodeExtractionFailed)
	}
}

func TestTextDocxMissingBody(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "resume.docx")

	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	w := zip.NewWriter(f)
	if _, err := w.Create("word/styles.xml"); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	f.Close()

	extractor := NewExtractor(nil, 0)
	if _, err := extractor.Text(path); err == nil {
		t.Error("expected error for archive without document body")
	}
}

func TestTextFileTooLarge(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "resume.txt")
	if err := os.WriteFile(path, []byte("0123456789"), 0o644); err != nil {
		t.Fatal(err)
	}

	extractor := NewExtractor(nil, 5)
	if _, err := extractor.Text(path); err == nil {
		t.Error("expected error for oversized file")
	}
}
