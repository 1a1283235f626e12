package courses

import (
	"context"
	"fmt"

	"github.com/saharlajmi1/recmooc4all/internal/vec"
	"github.com/saharlajmi1/recmooc4all/providers/capability"
)

// FAQEntry is one platform question with its canonical answer.
type FAQEntry struct {
	Question string
	Answer   string
}

// FAQ answers platform questions by embedding similarity over a fixed entry
// set.
type FAQ struct {
	embedder capability.Embedder
	entries  []faqEntry
}

type faqEntry struct {
	entry     FAQEntry
	embedding []float32
}

// Ensure FAQ implements FAQSearcher at compile time.
var _ FAQSearcher = (*FAQ)(nil)

// NewFAQ returns an empty FAQ index using the given embedder.
func NewFAQ(embedder capability.Embedder) *FAQ {
	return &FAQ{embedder: embedder}
}

// Index embeds and stores the given entries.
func (f *FAQ) Index(ctx context.Context, entries []FAQEntry) error {
	for _, entry := range entries {
		embedding, err := f.embedder.Embed(ctx, entry.Question)
		if err != nil {
			return fmt.Errorf("failed to embed FAQ question %q: %w", entry.Question, err)
		}
		f.entries = append(f.entries, faqEntry{entry: entry, embedding: embedding})
	}
	return nil
}

// SearchAnswer returns the answer of the entry whose question is most
// similar to the given one. An empty index is an error, never an empty
// answer.
func (f *FAQ) SearchAnswer(ctx context.Context, question string) (string, error) {
	if len(f.entries) == 0 {
		return "", fmt.Errorf("FAQ index is empty")
	}

	questionEmbedding, err := f.embedder.Embed(ctx, question)
	if err != nil {
		return "", fmt.Errorf("failed to embed question: %w", err)
	}

	best := -1
	bestSimilarity := -1.0
	for i, entry := range f.entries {
		if similarity := vec.Cosine(questionEmbedding, entry.embedding); similarity > bestSimilarity {
			best = i
			bestSimilarity = similarity
		}
	}
	return f.entries[best].entry.Answer, nil
}
