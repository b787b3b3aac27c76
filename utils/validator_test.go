package utils

import (
	"os"
	"path/filepath"
	"testing"
)

func TestValidateEmail(t *testing.T) {
	valid := []string{"faculty@uni.edu", "d.head+review@college.ac.th"}
	for _, email := range valid {
		if !ValidateEmail(email) {
			t.Errorf("ValidateEmail(%q) = false, want true", email)
		}
	}

	invalid := []string{"", "not-an-email", "missing@tld", "@uni.edu"}
	for _, email := range invalid {
		if ValidateEmail(email) {
			t.Errorf("ValidateEmail(%q) = true, want false", email)
		}
	}
}

func TestValidateSyllabusFile(t *testing.T) {
	if ok, msg := ValidateSyllabusFile("CS101_syllabus.pdf", 1024); !ok {
		t.Errorf("pdf rejected: %s", msg)
	}
	if ok, msg := ValidateSyllabusFile("CS101_SYLLABUS.PDF", 1024); !ok {
		t.Errorf("extension check should be case-insensitive: %s", msg)
	}
	if ok, _ := ValidateSyllabusFile("syllabus.docx", MaxSyllabusFileSize); !ok {
		t.Error("file at the size limit should be accepted")
	}
	if ok, _ := ValidateSyllabusFile("syllabus.exe", 1024); ok {
		t.Error("exe should be rejected")
	}
	if ok, _ := ValidateSyllabusFile("syllabus.pdf", MaxSyllabusFileSize+1); ok {
		t.Error("oversized file should be rejected")
	}
}

func TestSanitizeInput(t *testing.T) {
	if got := SanitizeInput("  CS101\x00  "); got != "CS101" {
		t.Errorf("SanitizeInput = %q, want %q", got, "CS101")
	}
}

func TestGenerateUniqueFilename(t *testing.T) {
	dir := t.TempDir()

	first := GenerateUniqueFilename(dir, "syllabus.pdf")
	if first != "syllabus.pdf" {
		t.Fatalf("first = %q, want syllabus.pdf", first)
	}
	if err := os.WriteFile(filepath.Join(dir, first), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	second := GenerateUniqueFilename(dir, "syllabus.pdf")
	if second != "syllabus_1.pdf" {
		t.Errorf("second = %q, want syllabus_1.pdf", second)
	}
}
