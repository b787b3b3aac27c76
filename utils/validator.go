// utils/validator.go - Input validation
package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// MaxSyllabusFileSize is the upload limit for syllabus documents.
const MaxSyllabusFileSize = int64(10 * 1024 * 1024) // 10MB

var allowedSyllabusExtensions = map[string]bool{
	".pdf":  true,
	".doc":  true,
	".docx": true,
}

// ValidateEmail checks if email is valid
func ValidateEmail(email string) bool {
	emailRegex := regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	return emailRegex.MatchString(email)
}

// ValidatePassword checks password strength
func ValidatePassword(password string) (bool, string) {
	if len(password) < 8 {
		return false, "Password must be at least 8 characters"
	}

	return true, ""
}

// SanitizeInput removes potentially harmful characters
func SanitizeInput(input string) string {
	// Remove leading/trailing spaces
	input = strings.TrimSpace(input)

	// Remove null bytes
	input = strings.ReplaceAll(input, "\x00", "")

	return input
}

// ValidateSyllabusFile checks the uploaded document's extension and size.
func ValidateSyllabusFile(filename string, size int64) (bool, string) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedSyllabusExtensions[ext] {
		return false, "Please upload a PDF or Word document"
	}
	if size > MaxSyllabusFileSize {
		return false, "File size must be less than 10MB"
	}
	return true, ""
}

// GenerateUniqueFilename returns a filename that does not collide inside
// dir, appending a numeric suffix when needed.
func GenerateUniqueFilename(dir, filename string) string {
	base := filepath.Base(filename)
	candidate := base
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	for i := 1; ; i++ {
		if _, err := os.Stat(filepath.Join(dir, candidate)); os.IsNotExist(err) {
			return candidate
		}
		candidate = fmt.Sprintf("%s_%d%s", stem, i, ext)
	}
}
