// Package capability declares the model-backed operations the orchestrator
// depends on. Each concern gets its own small interface so nodes depend only
// on what they call and tests can fake a single capability at a time.
package capability

import (
	"context"

	"github.com/saharlajmi1/recmooc4all/core/turn"
)

// Classifier assigns an intent to a query.
type Classifier interface {
	// ClassifyQuery maps a query (with its rendered history) onto one of the
	// closed turn intents.
	ClassifyQuery(ctx context.Context, query, history string) (turn.Classification, error)

	// ClassifyAssistance sub-classifies an assistance turn as simple or
	// complex.
	ClassifyAssistance(ctx context.Context, query, history string) (turn.AssistantClassification, error)
}

// LanguageDetector identifies the language of a text.
type LanguageDetector interface {
	// DetectLanguage returns a short language code such as "en" or "fr".
	DetectLanguage(ctx context.Context, text string) (string, error)
}

// EmotionDetector identifies the dominant emotion of a text. The result is
// one of: happy, sad, angry, frustrated, scared, confused, neutral.
type EmotionDetector interface {
	DetectEmotion(ctx context.Context, text string) (string, error)
}

// MetadataExtractor pulls recommendation parameters out of a query.
type MetadataExtractor interface {
	// ExtractMetadata returns the parameters mentioned in the query. Fields
	// the query does not mention are left at their zero value.
	ExtractMetadata(ctx context.Context, query, history string) (*turn.Metadata, error)
}

// RoadmapPlanner turns a learning goal into an ordered topic list.
type RoadmapPlanner interface {
	PlanRoadmap(ctx context.Context, query, history string) ([]string, error)
}

// QueryRefiner rewrites a feedback message into a standalone query that a
// fresh classification pass can act on.
type QueryRefiner interface {
	// RefineQuery merges the feedback in query with the previous query and
	// its original intent into a self-contained refined query.
	RefineQuery(ctx context.Context, query, history, originalIntent, previousQuery string) (string, error)
}

// AnswerGenerator produces and post-processes natural-language answers.
type AnswerGenerator interface {
	// Assist answers a general question directly.
	Assist(ctx context.Context, query, history string) (string, error)

	// FinalizeAnswer rewrites a draft answer in the requested tone and
	// language.
	FinalizeAnswer(ctx context.Context, draft, tone, query, language string) (string, error)

	// PrepareSpeech rewrites a draft answer into a form suitable for speech
	// synthesis (no markup, short sentences) in the given language.
	PrepareSpeech(ctx context.Context, draft, language string) (string, error)
}

// QuizGenerator produces a structured quiz for a topic at a level.
type QuizGenerator interface {
	GenerateQuiz(ctx context.Context, query, history, topic, level string) (*turn.Quiz, error)
}

// Embedder maps a text to a dense vector. Used by the semantic cache and
// the local course catalog.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Transcriber converts spoken audio into text.
type Transcriber interface {
	// Transcribe decodes the audio payload. language is a hint and may be
	// empty.
	Transcribe(ctx context.Context, audio []byte, language string) (string, error)
}

// Synthesizer converts text into spoken audio.
type Synthesizer interface {
	// Synthesize returns the encoded audio for the text in the given
	// language.
	Synthesize(ctx context.Context, text, language string) ([]byte, error)
}
