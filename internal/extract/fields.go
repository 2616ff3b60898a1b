package extract

import (
	"strings"
	"unicode"

	"jobfinder/internal/config"
	"jobfinder/internal/errors"
	"jobfinder/internal/types"
)

// FieldExtractor turns a resume document into an ExtractedProfile using the
// text extractor, the entity tagger and the ordered title strategy chain.
// Extraction is deterministic: the same bytes always yield the same profile.
type FieldExtractor struct {
	cfg    config.ExtractConfig
	vocab  *Vocabulary
	text   *TextExtractor
	tagger EntityTagger
	logger *errors.Logger

	// OnTitleStrategy, when set, is invoked with the name of the strategy
	// that detected the title. Used for metrics.
	OnTitleStrategy func(strategy string)

	strategies []TitleStrategy
}

// NewFieldExtractor creates a field extractor with the standard strategy
// chain: exact vocabulary, pattern, keyword cluster, filename.
func NewFieldExtractor(cfg config.ExtractConfig, vocab *Vocabulary, text *TextExtractor, tagger EntityTagger, logger *errors.Logger) *FieldExtractor {
	return &FieldExtractor{
		cfg:    cfg,
		vocab:  vocab,
		text:   text,
		tagger: tagger,
		logger: logger,
		strategies: []TitleStrategy{
			&exactVocabStrategy{vocab: vocab, window: cfg.TitleExactLines},
			&patternStrategy{vocab: vocab, window: cfg.TitlePatternLines},
			&keywordClusterStrategy{vocab: vocab, window: cfg.KeywordLines},
			&filenameStrategy{vocab: vocab},
		},
	}
}

// ExtractProfile extracts name, job title and skills from a resume document.
// Empty or garbled input produces empty fields, not an error; only an
// unreadable or unsupported document fails.
func (f *FieldExtractor) ExtractProfile(doc types.ResumeDocument) (types.ExtractedProfile, error) {
	raw, err := f.text.Extract(doc)
	if err != nil {
		return types.ExtractedProfile{}, err
	}

	lines := nonEmptyLines(raw, f.cfg.MaxLines)

	// Tagging failures degrade to an entity-free profile: name stays empty
	// and skills come from the vocabulary scan alone.
	entities, err := f.tagger.Entities(strings.Join(head(lines, f.cfg.EntityLines), " "))
	if err != nil {
		f.logger.Warn("entity tagging failed, continuing without entities",
			"filename", doc.Filename, "error", err.Error())
		entities = nil
	}

	profile := types.ExtractedProfile{
		Name:   firstPerson(entities),
		Skills: f.extractSkills(raw, entities),
	}

	title, strategy := DetectTitle(TitleInput{Lines: lines, Filename: doc.Filename}, f.strategies)
	profile.JobTitle = title
	if title != "" {
		f.logger.Debug("job title detected", "title", title, "strategy", strategy)
		if f.OnTitleStrategy != nil {
			f.OnTitleStrategy(strategy)
		}
	}

	return profile, nil
}

// extractSkills scans the full text against the skill vocabulary in
// vocabulary order, then supplements from entity output when the scan found
// fewer than the configured floor.
func (f *FieldExtractor) extractSkills(raw string, entities []Entity) []string {
	textLower := strings.ToLower(raw)
	skills := make([]string, 0, f.cfg.SkillCap)
	seen := make(map[string]bool)

	for _, skill := range f.vocab.Skills() {
		if len(skills) >= f.cfg.SkillCap {
			break
		}
		key := strings.ToLower(skill)
		if seen[key] || !strings.Contains(textLower, key) {
			continue
		}
		seen[key] = true
		skills = append(skills, skill)
	}

	if len(skills) < f.cfg.SkillFloor {
		for _, ent := range entities {
			if len(skills) >= f.cfg.SkillCap {
				break
			}
			tok := ent.Text
			if ent.IsPerson() || len(tok) <= 2 || !isTitleCased(tok) {
				continue
			}
			key := strings.ToLower(tok)
			if seen[key] {
				continue
			}
			seen[key] = true
			skills = append(skills, tok)
		}
	}

	return skills
}

func firstPerson(entities []Entity) string {
	for _, ent := range entities {
		if ent.IsPerson() {
			return ent.Text
		}
	}
	return ""
}

// nonEmptyLines trims every line, drops blanks and caps the working window.
func nonEmptyLines(raw string, maxLines int) []string {
	var lines []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lines = append(lines, line)
		if maxLines > 0 && len(lines) >= maxLines {
			break
		}
	}
	return lines
}

// isTitleCased reports whether every word starts with an uppercase letter
// followed by non-uppercase letters.
func isTitleCased(s string) bool {
	words := strings.Fields(s)
	if len(words) == 0 {
		return false
	}
	for _, w := range words {
		runes := []rune(w)
		if !unicode.IsUpper(runes[0]) {
			return false
		}
		for _, r := range runes[1:] {
			if unicode.IsUpper(r) {
				return false
			}
		}
	}
	return true
}
