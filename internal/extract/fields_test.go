package extract

import (
	"archive/zip"
	"bytes"
	stderrors "errors"
	"fmt"
	"log/slog"
	"reflect"
	"testing"

	"jobfinder/internal/config"
	"jobfinder/internal/errors"
	"jobfinder/internal/types"
)

type stubTagger struct {
	entities []Entity
	err      error
}

func (s *stubTagger) Entities(string) ([]Entity, error) {
	return s.entities, s.err
}

func testExtractConfig() config.ExtractConfig {
	return config.ExtractConfig{
		MaxLines:          400,
		EntityLines:       120,
		TitleExactLines:   60,
		TitlePatternLines: 80,
		KeywordLines:      50,
		SkillCap:          10,
		SkillFloor:        5,
	}
}

// makeDOCX builds a minimal OOXML document with one run per paragraph.
func makeDOCX(t *testing.T, paragraphs ...string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	f, err := w.Create("word/document.xml")
	if err != nil {
		t.Fatalf("create document part: %v", err)
	}
	fmt.Fprint(f, `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	fmt.Fprint(f, `<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)
	for _, p := range paragraphs {
		fmt.Fprintf(f, `<w:p><w:r><w:t>%s</w:t></w:r></w:p>`, p)
	}
	fmt.Fprint(f, `</w:body></w:document>`)
	if err := w.Close(); err != nil {
		t.Fatalf("close archive: %v", err)
	}
	return buf.Bytes()
}

func newTestExtractor(tagger EntityTagger) *FieldExtractor {
	return NewFieldExtractor(testExtractConfig(), NewVocabulary(), NewTextExtractor(), tagger, errors.NewLogger(slog.LevelError))
}

func TestExtractProfile(t *testing.T) {
	docBytes := func(t *testing.T) []byte {
		return makeDOCX(t,
			"Jane Doe",
			"Senior Software Engineer",
			"Experience building services in Go and Python with Docker and Kubernetes",
			"Data stores: PostgreSQL and Redis",
		)
	}

	tagger := &stubTagger{entities: []Entity{
		{Text: "Jane Doe", Label: "PERSON"},
		{Text: "Denver", Label: "GPE"},
	}}

	fe := newTestExtractor(tagger)
	profile, err := fe.ExtractProfile(types.ResumeDocument{
		Bytes:    docBytes(t),
		Filename: "jane_doe.docx",
	})
	if err != nil {
		t.Fatalf("ExtractProfile() error = %v", err)
	}

	if profile.Name != "Jane Doe" {
		t.Errorf("Name = %q, want %q", profile.Name, "Jane Doe")
	}
	if profile.JobTitle != "Software Engineer" {
		t.Errorf("JobTitle = %q, want %q", profile.JobTitle, "Software Engineer")
	}
	// Vocabulary order, not document order.
	wantSkills := []string{"Python", "Go", "PostgreSQL", "Redis", "Docker", "Kubernetes"}
	if !reflect.DeepEqual(profile.Skills, wantSkills) {
		t.Errorf("Skills = %v, want %v", profile.Skills, wantSkills)
	}
}

func TestExtractProfileDeterministic(t *testing.T) {
	doc := types.ResumeDocument{
		Bytes: makeDOCX(t,
			"Jane Doe",
			"Data Engineer",
			"Python, SQL, AWS, Docker",
		),
		Filename: "resume.docx",
	}

	fe := newTestExtractor(&stubTagger{})
	first, err := fe.ExtractProfile(doc)
	if err != nil {
		t.Fatalf("first ExtractProfile() error = %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := fe.ExtractProfile(doc)
		if err != nil {
			t.Fatalf("ExtractProfile() error = %v", err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d produced %+v, first run produced %+v", i, again, first)
		}
	}
}

func TestExtractProfileSkillCap(t *testing.T) {
	// Mentions far more than ten vocabulary skills.
	doc := types.ResumeDocument{
		Bytes: makeDOCX(t,
			"Polyglot Resume",
			"JavaScript Python Java PHP Ruby Swift Kotlin React Angular Vue",
			"HTML CSS MongoDB MySQL Redis AWS Azure Docker Kubernetes Git",
		),
		Filename: "resume.docx",
	}

	fe := newTestExtractor(&stubTagger{})
	profile, err := fe.ExtractProfile(doc)
	if err != nil {
		t.Fatalf("ExtractProfile() error = %v", err)
	}
	if len(profile.Skills) != 10 {
		t.Errorf("len(Skills) = %d, want 10", len(profile.Skills))
	}
}

func TestExtractProfileEntitySupplement(t *testing.T) {
	// Only two vocabulary skills in the text, so entity tokens fill in.
	doc := types.ResumeDocument{
		Bytes: makeDOCX(t,
			"Jane Doe",
			"Software Engineer familiar with Python and Git",
		),
		Filename: "resume.docx",
	}

	tagger := &stubTagger{entities: []Entity{
		{Text: "Jane Doe", Label: "PERSON"},
		{Text: "Snowflake", Label: "ORG"},
		{Text: "Ab", Label: "ORG"},     // too short
		{Text: "dbt", Label: "ORG"},    // not title-cased
		{Text: "Python", Label: "ORG"}, // already present
		{Text: "Terraform", Label: "ORG"},
	}}

	fe := newTestExtractor(tagger)
	profile, err := fe.ExtractProfile(doc)
	if err != nil {
		t.Fatalf("ExtractProfile() error = %v", err)
	}
	want := []string{"Python", "Git", "Snowflake", "Terraform"}
	if !reflect.DeepEqual(profile.Skills, want) {
		t.Errorf("Skills = %v, want %v", profile.Skills, want)
	}
}

func TestExtractProfileTaggerFailure(t *testing.T) {
	doc := types.ResumeDocument{
		Bytes: makeDOCX(t,
			"Jane Doe",
			"Data Analyst",
			"Excel and SQL reporting",
		),
		Filename: "resume.docx",
	}

	fe := newTestExtractor(&stubTagger{err: fmt.Errorf("model unavailable")})
	profile, err := fe.ExtractProfile(doc)
	if err != nil {
		t.Fatalf("ExtractProfile() error = %v", err)
	}
	if profile.Name != "" {
		t.Errorf("Name = %q, want empty without entities", profile.Name)
	}
	if profile.JobTitle != "Data Analyst" {
		t.Errorf("JobTitle = %q, want %q", profile.JobTitle, "Data Analyst")
	}
}

func TestExtractProfileUnsupportedFormat(t *testing.T) {
	fe := newTestExtractor(&stubTagger{})
	_, err := fe.ExtractProfile(types.ResumeDocument{
		Bytes:    []byte("plain text"),
		Filename: "resume.txt",
	})
	var be *types.BusinessError
	if !stderrors.As(err, &be) {
		t.Fatalf("ExtractProfile() error = %v, want BusinessError", err)
	}
	if be.Kind != types.UnsupportedFormat {
		t.Errorf("Kind = %q, want %q", be.Kind, types.UnsupportedFormat)
	}
}

func TestExtractProfileEmptyDocument(t *testing.T) {
	fe := newTestExtractor(&stubTagger{})
	profile, err := fe.ExtractProfile(types.ResumeDocument{
		Bytes:    makeDOCX(t),
		Filename: "resume.docx",
	})
	if err != nil {
		t.Fatalf("ExtractProfile() error = %v", err)
	}
	if profile.Name != "" || profile.JobTitle != "" || len(profile.Skills) != 0 {
		t.Errorf("empty document produced non-empty profile: %+v", profile)
	}
}
