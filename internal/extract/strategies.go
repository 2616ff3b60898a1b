package extract

import (
	"strings"
	"unicode"
)

// TitleInput is what title strategies inspect: the non-empty resume lines
// plus the original upload filename.
type TitleInput struct {
	Lines    []string
	Filename string
}

// TitleStrategy attempts to detect a job title. An empty return means the
// strategy found nothing and the next one in the chain runs.
type TitleStrategy interface {
	Name() string
	Detect(in TitleInput) string
}

// DetectTitle runs strategies in order and returns the first non-empty
// result together with the name of the strategy that produced it.
func DetectTitle(in TitleInput, strategies []TitleStrategy) (title, strategy string) {
	for _, s := range strategies {
		if t := s.Detect(in); t != "" {
			return t, s.Name()
		}
	}
	return "", ""
}

// exactVocabStrategy matches curated title phrases as case-insensitive
// substrings of the first window lines.
type exactVocabStrategy struct {
	vocab  *Vocabulary
	window int
}

func (s *exactVocabStrategy) Name() string { return "exact-vocabulary" }

func (s *exactVocabStrategy) Detect(in TitleInput) string {
	for _, line := range head(in.Lines, s.window) {
		lower := strings.ToLower(line)
		for _, title := range s.vocab.ExactTitles() {
			if strings.Contains(lower, title) {
				return titleCase(title)
			}
		}
	}
	return ""
}

// patternStrategy matches curated regular expressions against the first
// window lines; the matched span itself becomes the title.
type patternStrategy struct {
	vocab  *Vocabulary
	window int
}

func (s *patternStrategy) Name() string { return "pattern" }

func (s *patternStrategy) Detect(in TitleInput) string {
	for _, line := range head(in.Lines, s.window) {
		for _, rx := range s.vocab.TitlePatterns() {
			if m := rx.FindString(line); m != "" {
				return titleCase(m)
			}
		}
	}
	return ""
}

// keywordClusterStrategy infers a role from technology keyword clusters in
// the joined head of the document.
type keywordClusterStrategy struct {
	vocab  *Vocabulary
	window int
}

func (s *keywordClusterStrategy) Name() string { return "keyword-cluster" }

func (s *keywordClusterStrategy) Detect(in TitleInput) string {
	text := strings.ToLower(strings.Join(head(in.Lines, s.window), " "))
	for _, cluster := range s.vocab.KeywordClusters() {
		if cluster.Pattern.MatchString(text) {
			return cluster.Role
		}
	}
	return ""
}

// filenameStrategy tests the exact title vocabulary against the upload
// filename, with underscores treated as spaces.
type filenameStrategy struct {
	vocab *Vocabulary
}

func (s *filenameStrategy) Name() string { return "filename" }

func (s *filenameStrategy) Detect(in TitleInput) string {
	fname := strings.ToLower(strings.ReplaceAll(in.Filename, "_", " "))
	for _, title := range s.vocab.ExactTitles() {
		if strings.Contains(fname, title) {
			return titleCase(title)
		}
	}
	return ""
}

func head(lines []string, n int) []string {
	if n > 0 && len(lines) > n {
		return lines[:n]
	}
	return lines
}

// titleCase uppercases every letter that follows a non-letter and
// lowercases the rest, so "SENIOR data engineer" becomes "Senior Data
// Engineer" and "back-end developer" becomes "Back-End Developer".
func titleCase(s string) string {
	runes := []rune(s)
	prevLetter := false
	for i, r := range runes {
		if unicode.IsLetter(r) {
			if prevLetter {
				runes[i] = unicode.ToLower(r)
			} else {
				runes[i] = unicode.ToUpper(r)
			}
			prevLetter = true
		} else {
			prevLetter = false
		}
	}
	return string(runes)
}
