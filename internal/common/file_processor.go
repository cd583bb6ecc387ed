package common

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	apperrors "github.com/karnkeshav/automateresume/internal/errors"
	"github.com/karnkeshav/automateresume/internal/utils"
)

// FileProcessor handles common file operations
type FileProcessor struct {
	logger *apperrors.Logger
}

// NewFileProcessor creates a new file processor instance
func NewFileProcessor(logger *apperrors.Logger) *FileProcessor {
	return &FileProcessor{logger: logger}
}

// ReadFile reads content from a file with proper error handling
func (fp *FileProcessor) ReadFile(filename string) (string, error) {
	file, err := os.Open(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return "", apperrors.NewIOError("FILE_NOT_FOUND",
				fmt.Sprintf("File not found: %s", filename), err)
		}
		return "", apperrors.NewIOError(apperrors.ErrCodeFileNotReadable,
			fmt.Sprintf("Cannot read file: %s", filename), err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			// Log the error but don't override the main operation result
			if fp.logger != nil {
				fp.logger.Warn("Failed to close file", "filename", filename, "error", err)
			}
		}
	}()

	content, err := io.ReadAll(file)
	if err != nil {
		return "", apperrors.NewIOError(apperrors.ErrCodeFileNotReadable,
			fmt.Sprintf("Failed to read file content: %s", filename), err)
	}

	return string(content), nil
}

// WriteFile writes text content to a file with directory creation
func (fp *FileProcessor) WriteFile(filename, content string) error {
	return fp.WriteBinaryFile(filename, []byte(content))
}

// WriteBinaryFile writes raw bytes to a file with directory creation
func (fp *FileProcessor) WriteBinaryFile(filename string, content []byte) error {
	dir := filepath.Dir(filename)
	if dir != "." {
		err := os.MkdirAll(dir, 0750)
		if err != nil {
			return apperrors.NewIOError("DIRECTORY_CREATE_FAILED",
				fmt.Sprintf("Cannot create directory: %s", dir), err)
		}
	}

	err := os.WriteFile(filename, content, 0600)
	if err != nil {
		return apperrors.NewIOError("FILE_WRITE_FAILED",
			fmt.Sprintf("Cannot write file: %s", filename), err)
	}

	if fp.logger != nil {
		fp.logger.Debug("Wrote file",
			"filename", filename,
			"size", utils.FormatFileSize(int64(len(content))))
	}

	return nil
}

// ValidateOutputDir ensures the output directory exists, creating it if needed
func (fp *FileProcessor) ValidateOutputDir(dir string) error {
	if dir == "" {
		return apperrors.NewValidationError("INVALID_OUTPUT_DIR",
			"Output directory cannot be empty", nil)
	}

	if err := utils.EnsureDir(dir); err != nil {
		return apperrors.NewValidationError("INVALID_OUTPUT_DIR",
			fmt.Sprintf("Invalid output directory: %s", dir), err)
	}

	return nil
}
