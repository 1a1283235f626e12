package courses

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/saharlajmi1/recmooc4all/core/turn"
	"github.com/saharlajmi1/recmooc4all/internal/vec"
	"github.com/saharlajmi1/recmooc4all/providers/capability"
)

// DefaultSearchK is the number of courses returned when the caller does not
// ask for a specific count.
const DefaultSearchK = 5

// Catalog is an in-memory course index ranked by embedding similarity.
// Courses are embedded once at index time; searches embed only the topic.
type Catalog struct {
	embedder capability.Embedder
	entries  []catalogEntry
}

type catalogEntry struct {
	course    turn.Course
	embedding []float32
}

// Ensure Catalog implements Searcher at compile time.
var _ Searcher = (*Catalog)(nil)

// NewCatalog returns an empty catalog using the given embedder.
func NewCatalog(embedder capability.Embedder) *Catalog {
	return &Catalog{embedder: embedder}
}

// Index embeds and stores the given courses. The text embedded is the title
// plus the description, which is what topics are matched against.
func (c *Catalog) Index(ctx context.Context, courses []turn.Course) error {
	for _, course := range courses {
		text := course.Title
		if course.Description != "" {
			text += ". " + course.Description
		}

		embedding, err := c.embedder.Embed(ctx, text)
		if err != nil {
			return fmt.Errorf("failed to embed course %q: %w", course.Title, err)
		}
		c.entries = append(c.entries, catalogEntry{course: course, embedding: embedding})
	}
	return nil
}

// Len returns the number of indexed courses.
func (c *Catalog) Len() int {
	return len(c.entries)
}

// SearchCourses embeds the topic and returns the k most similar courses,
// keeping only courses matching the level filter when one is given.
func (c *Catalog) SearchCourses(ctx context.Context, topic string, k int, level string) ([]turn.Course, error) {
	if k <= 0 {
		k = DefaultSearchK
	}

	topicEmbedding, err := c.embedder.Embed(ctx, topic)
	if err != nil {
		return nil, fmt.Errorf("failed to embed topic %q: %w", topic, err)
	}

	type scored struct {
		course     turn.Course
		similarity float64
	}

	ranked := make([]scored, 0, len(c.entries))
	for _, entry := range c.entries {
		if level != "" && !hasLevel(entry.course, level) {
			continue
		}
		ranked = append(ranked, scored{
			course:     entry.course,
			similarity: vec.Cosine(topicEmbedding, entry.embedding),
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].similarity > ranked[j].similarity
	})

	if k > len(ranked) {
		k = len(ranked)
	}
	results := make([]turn.Course, 0, k)
	for _, entry := range ranked[:k] {
		results = append(results, entry.course)
	}
	return results, nil
}

func hasLevel(course turn.Course, level string) bool {
	for _, courseLevel := range course.Levels {
		if strings.EqualFold(courseLevel, level) {
			return true
		}
	}
	return false
}
