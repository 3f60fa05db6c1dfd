package services

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/dmitrijs2005/evadocs/internal/common"
)

// MaxUploadSize is the largest document accepted for conversion.
const MaxUploadSize = 50 << 20

// Password lengths enforced before contacting the backend.
const (
	MinLoginPasswordLen    = 6
	MinRegisterPasswordLen = 8
)

var institutionEmail = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@itb\.edu\.ec$`)

var supportedExtensions = map[string]struct{}{
	".doc": {}, ".docx": {},
	".xls": {}, ".xlsx": {},
	".ppt": {}, ".pptx": {},
	".txt": {}, ".rtf": {},
}

// SupportedExtensions lists the convertible extensions.
func SupportedExtensions() []string {
	return []string{".docx", ".doc", ".xlsx", ".xls", ".pptx", ".ppt", ".txt", ".rtf"}
}

// ValidateEmail accepts only institutional addresses.
func ValidateEmail(email string) error {
	if !institutionEmail.MatchString(email) {
		return common.ErrInvalidEmail
	}
	return nil
}

// ShortPasswordError reports a password below Min characters. It matches
// common.ErrPasswordTooShort.
type ShortPasswordError struct {
	Min int
}

func (e *ShortPasswordError) Error() string {
	return fmt.Sprintf("%v: at least %d characters", common.ErrPasswordTooShort, e.Min)
}

func (e *ShortPasswordError) Unwrap() error { return common.ErrPasswordTooShort }

func validatePassword(password string, min int) error {
	if len([]rune(password)) < min {
		return &ShortPasswordError{Min: min}
	}
	return nil
}

// ValidateUpload checks extension and size of the file at path.
func ValidateUpload(path string) (os.FileInfo, error) {
	if path == "" {
		return nil, common.ErrNoFileSelected
	}
	ext := strings.ToLower(filepath.Ext(path))
	if _, ok := supportedExtensions[ext]; !ok {
		return nil, fmt.Errorf("%w: %q", common.ErrUnsupportedFormat, ext)
	}
	fi, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if fi.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	if fi.Size() > MaxUploadSize {
		return nil, fmt.Errorf("%w: max %d MB", common.ErrFileTooLarge, MaxUploadSize>>20)
	}
	return fi, nil
}
