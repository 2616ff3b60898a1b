package extract

import (
	stderrors "errors"
	"strings"
	"testing"

	"jobfinder/internal/types"
)

func TestExtractDOCX(t *testing.T) {
	e := NewTextExtractor()
	doc := types.ResumeDocument{
		Bytes:    makeDOCX(t, "Jane Doe", "Software Engineer", "Python and Go"),
		Filename: "resume.docx",
	}

	text, err := e.Extract(doc)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	want := []string{"Jane Doe", "Software Engineer", "Python and Go"}
	got := strings.Split(strings.TrimRight(text, "\n"), "\n")
	if len(got) != len(want) {
		t.Fatalf("Extract() produced %d lines %q, want %d", len(got), got, len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestExtractUnsupportedExtension(t *testing.T) {
	e := NewTextExtractor()
	tests := []string{"resume.txt", "resume.png", "resume"}

	for _, filename := range tests {
		t.Run(filename, func(t *testing.T) {
			_, err := e.Extract(types.ResumeDocument{Bytes: []byte("x"), Filename: filename})
			var be *types.BusinessError
			if !stderrors.As(err, &be) {
				t.Fatalf("Extract(%q) error = %v, want BusinessError", filename, err)
			}
			if be.Kind != types.UnsupportedFormat {
				t.Errorf("Kind = %q, want %q", be.Kind, types.UnsupportedFormat)
			}
		})
	}
}

func TestExtractCorruptDocuments(t *testing.T) {
	e := NewTextExtractor()
	tests := []struct {
		name     string
		filename string
	}{
		{"corrupt pdf", "resume.pdf"},
		{"corrupt docx", "resume.docx"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.Extract(types.ResumeDocument{Bytes: []byte("not a real document"), Filename: tt.filename})
			if err == nil {
				t.Fatal("Extract() expected error for corrupt document")
			}
		})
	}
}
