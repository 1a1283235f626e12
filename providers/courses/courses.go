// Package courses provides the two course retrieval paths: a local
// embedding-ranked catalog used when no user profile exists, and a client
// for the remote recommender service used when one does. It also hosts the
// FAQ search backing the platform assistant.
package courses

import (
	"context"

	"github.com/saharlajmi1/recmooc4all/core/turn"
)

// Profile is the user profile sent to the remote recommender. Empty fields
// are omitted from the payload.
type Profile struct {
	KnowledgeLevel         string `json:"knowledge_level,omitempty"`
	FieldOfStudy           string `json:"field_of_study,omitempty"`
	PreferredLanguages     string `json:"preferred_languages,omitempty"`
	PreferredLearningStyle string `json:"preferred_learning_style,omitempty"`
	AreasOfInterest        string `json:"areas_of_interest,omitempty"`
}

// Searcher retrieves courses for a topic. Both the local catalog and the
// remote recommender client implement it, so the roadmap fan-out can use
// either path.
type Searcher interface {
	// SearchCourses returns up to k courses for the topic. level filters by
	// course level when non-empty.
	SearchCourses(ctx context.Context, topic string, k int, level string) ([]turn.Course, error)
}

// FAQSearcher answers platform questions from a fixed knowledge base.
type FAQSearcher interface {
	// SearchAnswer returns the stored answer that best matches the
	// question.
	SearchAnswer(ctx context.Context, question string) (string, error)
}
