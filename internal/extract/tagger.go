package extract

import (
	"sync"

	prose "github.com/jdkato/prose/v2"

	"jobfinder/internal/errors"
)

// Entity is a single tagged span from the entity recognizer.
type Entity struct {
	Text  string
	Label string
}

// IsPerson reports whether the entity was tagged as a person name.
func (e Entity) IsPerson() bool {
	return e.Label == "PERSON"
}

// EntityTagger produces named entities from plain text.
type EntityTagger interface {
	Entities(text string) ([]Entity, error)
}

// ProseTagger tags entities with the prose NLP model. The underlying model
// is not safe for concurrent tagging, so calls are serialized; there is one
// tagger per process.
type ProseTagger struct {
	mu sync.Mutex
}

var (
	proseTagger     *ProseTagger
	proseTaggerOnce sync.Once
)

// NewProseTagger returns the process-wide prose tagger.
func NewProseTagger() *ProseTagger {
	proseTaggerOnce.Do(func() {
		proseTagger = &ProseTagger{}
	})
	return proseTagger
}

// Entities tags text and returns the recognized entities in document order.
func (t *ProseTagger) Entities(text string) ([]Entity, error) {
	if text == "" {
		return nil, nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	doc, err := prose.NewDocument(text, prose.WithSegmentation(false))
	if err != nil {
		return nil, errors.NewExtractionError(errors.ErrCodeExtractionFailed, "entity tagging failed", err)
	}

	raw := doc.Entities()
	entities := make([]Entity, 0, len(raw))
	for _, ent := range raw {
		entities = append(entities, Entity{Text: ent.Text, Label: ent.Label})
	}
	return entities, nil
}
