package turn

import (
	"fmt"
	"strings"
)

// Classification is the closed set of turn intents. Any value outside this
// set is a defect: routers reject it instead of silently defaulting.
type Classification string

const (
	ClassificationAssistance        Classification = "assistance"
	ClassificationRecommendation    Classification = "recommendation"
	ClassificationFeedback          Classification = "feedback"
	ClassificationPlatformAssistant Classification = "platform_assistant"
	ClassificationRoadmap           Classification = "roadmap"
	ClassificationQuiz              Classification = "quiz"
)

// Valid reports whether the classification is one of the enumerated intents.
func (c Classification) Valid() bool {
	switch c {
	case ClassificationAssistance, ClassificationRecommendation,
		ClassificationFeedback, ClassificationPlatformAssistant,
		ClassificationRoadmap, ClassificationQuiz:
		return true
	}
	return false
}

// AssistantClassification is the sub-classification applied to assistance
// turns: simple requests are answered directly, complex ones are declined
// by an explicit terminal node.
type AssistantClassification string

const (
	SimpleAssistance  AssistantClassification = "simple assistance"
	ComplexAssistance AssistantClassification = "complex assistance"
)

// Valid reports whether the assistant classification is enumerated.
func (c AssistantClassification) Valid() bool {
	return c == SimpleAssistance || c == ComplexAssistance
}

// Role identifies the author of a chat history message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry of the conversation history.
type Message struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// Course is a single recommended course as returned by the local catalog or
// the remote recommender.
type Course struct {
	Title       string   `json:"title"`
	URL         string   `json:"url"`
	Categories  []string `json:"categories,omitempty"`
	Levels      []string `json:"levels,omitempty"`
	Description string   `json:"description,omitempty"`
}

// RoadmapStep is one step of a learning roadmap: a topic plus the courses
// fetched for it. Steps are produced only by the roadmap aggregation and are
// immutable once built. StepIndex is 1-based and matches the topic's position
// in the generated roadmap.
type RoadmapStep struct {
	StepIndex int      `json:"step"`
	Topic     string   `json:"topic"`
	Courses   []Course `json:"courses"`
}

// Metadata holds the recommendation parameters extracted from a query.
// Zero values mean "not mentioned".
type Metadata struct {
	Topic             string `json:"topic,omitempty"`
	Level             string `json:"level,omitempty"`
	NumCourses        int    `json:"num_courses,omitempty"`
	FieldOfStudy      string `json:"field_of_study,omitempty"`
	PreferredLanguage string `json:"preferred_language,omitempty"`
	LearningStyle     string `json:"learning_style,omitempty"`
}

// Question is a single quiz question with its answer choices.
type Question struct {
	Question      string   `json:"question"`
	Choices       []string `json:"choices"`
	CorrectAnswer string   `json:"correct_answer"`
}

// Quiz is the structured answer produced for quiz turns.
type Quiz struct {
	Questions []Question `json:"questions"`
}

// State is the unit of work for one conversational turn. It is created by
// the caller, validated on entry, and incrementally extended by each node
// the orchestrator visits.
type State struct {
	// QueryID, UserID and ConversationID tie the turn to the persisted
	// query record. They are opaque to the orchestrator itself.
	QueryID        string
	UserID         string
	ConversationID string

	// Query is the user's text. For audio turns it is empty on entry and
	// populated by the transcription node.
	Query string

	// RefinedQuery is set by the feedback-refinement node together with
	// Query, so the re-classification pass sees the refined wording.
	RefinedQuery string

	Classification Classification

	// AssistantClassification is set by the assistance sub-classification
	// node; the router after it reads this field.
	AssistantClassification AssistantClassification

	ChatHistory []Message

	// Roadmap is the ordered topic list generated for roadmap turns.
	Roadmap []string

	// Metadata is populated by the extraction node for recommendation and
	// roadmap turns.
	Metadata *Metadata

	RecommendedCourses []Course

	// FinalAnswer is the text answer returned to the caller. For quiz turns
	// Quiz additionally carries the structured form.
	FinalAnswer string
	Quiz        *Quiz

	Emotion  string
	Language string

	// IsAudioInput records that the turn began as audio; it survives the
	// clearing of AudioInput and selects the speech-synthesis exit path.
	IsAudioInput bool

	// AudioInput is the raw audio payload. The transcription node consumes
	// it and must clear it, so a revisit of the entry region can never
	// decode the same payload twice.
	AudioInput []byte

	// AudioOutput is the path of the synthesized answer, set only for
	// turns that began as audio.
	AudioOutput string

	// SpeechText is the answer rewritten for synthesis, set by the
	// TTS-preparation node.
	SpeechText string
}

// ValidationError reports an initial State that violates the entry
// invariant.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid turn state: " + e.Reason
}

// Validate enforces the entry invariant: exactly one of text query and audio
// input must be present.
func (s *State) Validate() error {
	hasText := strings.TrimSpace(s.Query) != ""
	hasAudio := len(s.AudioInput) > 0

	switch {
	case !hasText && !hasAudio:
		return &ValidationError{Reason: "neither text query nor audio input present"}
	case hasText && hasAudio:
		return &ValidationError{Reason: "both text query and audio input present"}
	}
	return nil
}

// RenderHistory renders the chat history as a deterministic single string.
// The rendering is stable across runs for identical histories, so it can be
// used as the contextual part of a semantic cache key.
func RenderHistory(history []Message) string {
	if len(history) == 0 {
		return ""
	}

	parts := make([]string, 0, len(history))
	for _, message := range history {
		parts = append(parts, fmt.Sprintf("%s: %s", message.Role, message.Text))
	}
	return strings.Join(parts, "\n")
}
