package openai

import (
	"context"
	"fmt"
	"strings"

	"github.com/saharlajmi1/recmooc4all/core/parse"
	"github.com/saharlajmi1/recmooc4all/core/turn"
	"github.com/saharlajmi1/recmooc4all/providers/capability"
)

// Compile-time checks that Client covers every capability.
var (
	_ capability.Classifier        = (*Client)(nil)
	_ capability.LanguageDetector  = (*Client)(nil)
	_ capability.EmotionDetector   = (*Client)(nil)
	_ capability.MetadataExtractor = (*Client)(nil)
	_ capability.RoadmapPlanner    = (*Client)(nil)
	_ capability.QueryRefiner      = (*Client)(nil)
	_ capability.AnswerGenerator   = (*Client)(nil)
	_ capability.QuizGenerator     = (*Client)(nil)
	_ capability.Embedder          = (*Client)(nil)
	_ capability.Transcriber       = (*Client)(nil)
	_ capability.Synthesizer       = (*Client)(nil)
)

const classifySystemPrompt = `You classify user queries for a course platform.
Answer with JSON: {"classification": "<value>"} where <value> is exactly one of:
- "recommendation": the user asks for course recommendations
- "feedback": the user clarifies or corrects a previous recommendation
- "assistance": any other general question
- "platform_assistant": the user asks for help with the platform itself
- "roadmap": the user asks for a learning roadmap
- "quiz": the user asks for quiz questions`

const classifyAssistanceSystemPrompt = `You classify assistance requests for a course platform.
Answer with JSON: {"classification": "<value>"} where <value> is exactly one of:
- "simple assistance": a question you can answer directly in one reply
- "complex assistance": a task that needs tooling or multi-step work`

type intentPayload struct {
	Classification string `json:"classification"`
}

// ClassifyQuery maps the query onto one of the closed turn intents. A value
// outside the enum is an error, never a silent default.
func (c *Client) ClassifyQuery(ctx context.Context, query, history string) (turn.Classification, error) {
	content, err := c.complete(ctx, classifySystemPrompt, withHistory(query, history))
	if err != nil {
		return "", err
	}

	payload, err := parse.ParseStringAs[intentPayload](content)
	if err != nil {
		return "", fmt.Errorf("failed to parse classification: %w", err)
	}

	classification := turn.Classification(strings.ToLower(strings.TrimSpace(payload.Classification)))
	if !classification.Valid() {
		return "", fmt.Errorf("model returned unknown classification %q", payload.Classification)
	}
	return classification, nil
}

// ClassifyAssistance sub-classifies an assistance turn.
func (c *Client) ClassifyAssistance(ctx context.Context, query, history string) (turn.AssistantClassification, error) {
	content, err := c.complete(ctx, classifyAssistanceSystemPrompt, withHistory(query, history))
	if err != nil {
		return "", err
	}

	payload, err := parse.ParseStringAs[intentPayload](content)
	if err != nil {
		return "", fmt.Errorf("failed to parse assistance classification: %w", err)
	}

	classification := turn.AssistantClassification(strings.ToLower(strings.TrimSpace(payload.Classification)))
	if !classification.Valid() {
		return "", fmt.Errorf("model returned unknown assistance classification %q", payload.Classification)
	}
	return classification, nil
}

// DetectLanguage returns a short lowercase language code for the text.
func (c *Client) DetectLanguage(ctx context.Context, text string) (string, error) {
	content, err := c.complete(ctx,
		`Detect the language of the user message. Answer with only the two-letter ISO 639-1 code, e.g. "en" or "fr".`,
		text)
	if err != nil {
		return "", err
	}
	return strings.ToLower(strings.Trim(strings.TrimSpace(content), `"`)), nil
}

// knownEmotions is the fixed vocabulary the tone table understands.
var knownEmotions = map[string]bool{
	"happy": true, "sad": true, "angry": true, "frustrated": true,
	"scared": true, "confused": true, "neutral": true,
}

// DetectEmotion returns the dominant emotion of the text. Anything the model
// returns outside the fixed vocabulary degrades to "neutral".
func (c *Client) DetectEmotion(ctx context.Context, text string) (string, error) {
	content, err := c.complete(ctx,
		`Detect the dominant emotion of the user message. Answer with exactly one word from: happy, sad, angry, frustrated, scared, confused, neutral.`,
		text)
	if err != nil {
		return "", err
	}

	emotion := strings.ToLower(strings.Trim(strings.TrimSpace(content), `".`))
	if !knownEmotions[emotion] {
		return "neutral", nil
	}
	return emotion, nil
}

const extractSystemPrompt = `Extract course recommendation parameters from the user query.
Answer with JSON:
{"course_title_or_skill": "...", "level": "beginner|intermediate|advanced", "num_courses": 5,
 "field_of_study": "...", "preferred_language": "...", "preferred_learning_style": "..."}
Omit any field the query does not mention. num_courses is between 1 and 10.`

type metadataPayload struct {
	Topic             string `json:"course_title_or_skill"`
	Level             string `json:"level"`
	NumCourses        int    `json:"num_courses"`
	FieldOfStudy      string `json:"field_of_study"`
	PreferredLanguage string `json:"preferred_language"`
	LearningStyle     string `json:"preferred_learning_style"`
}

// ExtractMetadata pulls recommendation parameters out of the query. Fields
// the query does not mention are left at their zero value.
func (c *Client) ExtractMetadata(ctx context.Context, query, history string) (*turn.Metadata, error) {
	content, err := c.complete(ctx, extractSystemPrompt, withHistory(query, history))
	if err != nil {
		return nil, err
	}

	payload, err := parse.ParseStringAs[metadataPayload](content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse extracted metadata: %w", err)
	}

	return &turn.Metadata{
		Topic:             strings.TrimSpace(payload.Topic),
		Level:             strings.ToLower(strings.TrimSpace(payload.Level)),
		NumCourses:        payload.NumCourses,
		FieldOfStudy:      payload.FieldOfStudy,
		PreferredLanguage: payload.PreferredLanguage,
		LearningStyle:     payload.LearningStyle,
	}, nil
}

const roadmapSystemPrompt = `Design a step-by-step learning roadmap for the user's goal.
Answer with JSON: {"roadmap": ["topic 1", "topic 2", ...]} where each topic is a short course
search phrase, ordered from fundamentals to advanced. Between 3 and 8 topics.`

type roadmapPayload struct {
	Roadmap []string `json:"roadmap"`
}

// PlanRoadmap turns a learning goal into an ordered topic list.
func (c *Client) PlanRoadmap(ctx context.Context, query, history string) ([]string, error) {
	content, err := c.complete(ctx, roadmapSystemPrompt, withHistory(query, history))
	if err != nil {
		return nil, err
	}

	payload, err := parse.ParseStringAs[roadmapPayload](content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse roadmap: %w", err)
	}
	if len(payload.Roadmap) == 0 {
		return nil, fmt.Errorf("model returned an empty roadmap")
	}
	return payload.Roadmap, nil
}

const refineSystemPrompt = `The user is giving feedback on an earlier request. Merge the feedback
with the previous query into a single self-contained query that preserves the original intent.
Answer with only the refined query text.`

// RefineQuery merges a feedback message with the previous query into a
// standalone refined query.
func (c *Client) RefineQuery(ctx context.Context, query, history, originalIntent, previousQuery string) (string, error) {
	user := fmt.Sprintf("Original intent: %s\nPrevious query: %s\nFeedback: %s", originalIntent, previousQuery, query)
	content, err := c.complete(ctx, refineSystemPrompt, withHistory(user, history))
	if err != nil {
		return "", err
	}

	refined := strings.TrimSpace(content)
	if refined == "" {
		return "", fmt.Errorf("model returned an empty refined query")
	}
	return refined, nil
}

// Assist answers a general question directly.
func (c *Client) Assist(ctx context.Context, query, history string) (string, error) {
	content, err := c.complete(ctx,
		`You are a helpful assistant for an online course platform. Answer the user's question concisely.`,
		withHistory(query, history))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(content), nil
}

// FinalizeAnswer rewrites a draft answer in the requested tone and language.
func (c *Client) FinalizeAnswer(ctx context.Context, draft, tone, query, language string) (string, error) {
	user := fmt.Sprintf("Question: %s\nDraft answer: %s\nTone: %s\nLanguage: %s", query, draft, tone, language)
	content, err := c.complete(ctx,
		`Rewrite the draft answer in the requested tone and language. Keep every fact, link and list item intact. Answer with only the rewritten text.`,
		user)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(content), nil
}

// PrepareSpeech rewrites a draft answer for speech synthesis.
func (c *Client) PrepareSpeech(ctx context.Context, draft, language string) (string, error) {
	user := fmt.Sprintf("Language: %s\nDraft answer: %s", language, draft)
	content, err := c.complete(ctx,
		`Rewrite the draft answer so it can be read aloud: plain sentences in the given language, no markup, no URLs, no enumeration syntax. Answer with only the rewritten text.`,
		user)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(content), nil
}

const quizSystemPrompt = `Generate a quiz for the given topic and level.
Answer with JSON:
{"questions": [{"question": "...", "choices": ["...", "..."], "correct_answer": "..."}]}
Five questions, four choices each, correct_answer must be one of the choices.`

// GenerateQuiz produces a structured quiz for a topic at a level.
func (c *Client) GenerateQuiz(ctx context.Context, query, history, topic, level string) (*turn.Quiz, error) {
	user := fmt.Sprintf("Topic: %s\nLevel: %s\nRequest: %s", topic, level, query)
	content, err := c.complete(ctx, quizSystemPrompt, withHistory(user, history))
	if err != nil {
		return nil, err
	}

	quiz, err := parse.ParseStringAs[turn.Quiz](content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse quiz: %w", err)
	}
	if len(quiz.Questions) == 0 {
		return nil, fmt.Errorf("model returned a quiz with no questions")
	}
	return &quiz, nil
}

// withHistory prefixes the user content with the rendered conversation
// history when one exists.
func withHistory(content, history string) string {
	if history == "" {
		return content
	}
	return "Conversation so far:\n" + history + "\n\n" + content
}
