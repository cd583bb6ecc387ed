package extract

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"

	apperrors "github.com/karnkeshav/automateresume/internal/errors"
)

// Extractor reads a resume file and produces plain text suitable for prompt
// embedding: no carriage returns, no leading or trailing whitespace.
type Extractor struct {
	logger      *apperrors.Logger
	maxFileSize int64
}

// NewExtractor creates a new resume text extractor
func NewExtractor(logger *apperrors.Logger, maxFileSize int64) *Extractor {
	return &Extractor{logger: logger, maxFileSize: maxFileSize}
}

// Text extracts plain text from the resume file at path. Word documents are
// unpacked and their paragraph text collected; everything else is read as-is.
func (e *Extractor) Text(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", apperrors.NewIOError(apperrors.ErrCodeResumeNotFound,
				fmt.Sprintf("Resume file not found: %s", path), err)
		}
		return "", apperrors.NewIOError(apperrors.ErrCodeFileNotReadable,
			fmt.Sprintf("Cannot access resume file: %s", path), err)
	}

	if info.IsDir() {
		return "", apperrors.NewIOError(apperrors.ErrCodeFileNotReadable,
			fmt.Sprintf("Resume path is a directory: %s", path), nil)
	}

	if e.maxFileSize > 0 && info.Size() > e.maxFileSize {
		return "", apperrors.NewValidationError("FILE_TOO_LARGE",
			fmt.Sprintf("Resume file exceeds %d bytes: %s", e.maxFileSize, path), nil)
	}

	var text string
	if strings.HasSuffix(strings.ToLower(path), ".docx") {
		text, err = extractDocx(path)
	} else {
		text, err = extractPlain(path)
	}
	if err != nil {
		return "", err
	}

	normalized := normalize(text)
	if e.logger != nil {
		e.logger.Debug("Extracted resume text", "path", path, "characters", len(normalized))
	}

	return normalized, nil
}

// normalize removes carriage returns and surrounding whitespace
func normalize(text string) string {
	return strings.TrimSpace(strings.ReplaceAll(text, "\r", ""))
}

// extractPlain reads a plain-text or Markdown resume
func extractPlain(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", apperrors.NewIOError(apperrors.ErrCodeFileNotReadable,
			fmt.Sprintf("Cannot read resume file: %s", path), err)
	}
	return string(content), nil
}

// extractDocx pulls paragraph text out of a Word document. The document body
// lives in word/document.xml inside the zip container; text runs are <w:t>
// elements and paragraphs end at </w:p>.
func extractDocx(path string) (string, error) {
	reader, err := zip.OpenReader(path)
	if err != nil {
		return "", apperrors.NewIOError(apperrors.ErrCodeExtractionFailed,
			fmt.Sprintf("Cannot open document archive: %s", path), err)
	}
	defer reader.Close()

	var document *zip.File
	for _, f := range reader.File {
		if f.Name == "word/document.xml" {
			document = f
			break
		}
	}
	if document == nil {
		return "", apperrors.NewIOError(apperrors.ErrCodeExtractionFailed,
			fmt.Sprintf("Document archive has no body: %s", path), nil)
	}

	rc, err := document.Open()
	if err != nil {
		return "", apperrors.NewIOError(apperrors.ErrCodeExtractionFailed,
			fmt.Sprintf("Cannot read document body: %s", path), err)
	}
	defer rc.Close()

	text, err := collectDocumentText(rc)
	if err != nil {
		return "", apperrors.NewIOError(apperrors.ErrCodeExtractionFailed,
			fmt.Sprintf("Cannot parse document body: %s", path), err)
	}

	return text, nil
}

// collectDocumentText streams the document XML and gathers text runs,
// inserting a newline at each paragraph boundary.
func collectDocumentText(r io.Reader) (string, error) {
	decoder := xml.NewDecoder(r)

	var sb strings.Builder
	inText := false

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}

		switch t := token.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				inText = true
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				sb.WriteString("\n")
			}
		case xml.CharData:
			if inText {
				sb.Write(t)
			}
		}
	}

	return sb.String(), nil
}
