package chatbot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/saharlajmi1/recmooc4all/core/turn"
	"github.com/saharlajmi1/recmooc4all/providers/courses"
)

// unsupportedAnswer is the fixed reply of the explicit terminal node for
// complex assistance requests.
const unsupportedAnswer = "I can't help with that request yet. I can recommend courses, " +
	"build learning roadmaps, generate quizzes, or answer questions about the platform."

// detectLanguage identifies the language of a text query. Audio turns have
// no text yet; their language is detected right after transcription.
func (c *Chatbot) detectLanguage(ctx context.Context, s turn.State) (turn.State, error) {
	if s.Query == "" {
		return s, nil
	}

	language, err := c.caps.Language.DetectLanguage(ctx, s.Query)
	if err != nil {
		return s, fmt.Errorf("language detection failed: %w", err)
	}
	s.Language = language
	return s, nil
}

// speechToText transcribes the audio payload into the query. The payload is
// cleared once consumed, so a revisit of the entry region can never decode
// the same audio twice; IsAudioInput survives the clearing and selects the
// synthesis exit path.
func (c *Chatbot) speechToText(ctx context.Context, s turn.State) (turn.State, error) {
	text, err := c.caps.Transcriber.Transcribe(ctx, s.AudioInput, s.Language)
	if err != nil {
		return s, fmt.Errorf("transcription failed: %w", err)
	}

	s.Query = text
	s.AudioInput = nil
	s.IsAudioInput = true

	if s.Language == "" {
		language, err := c.caps.Language.DetectLanguage(ctx, s.Query)
		if err != nil {
			return s, fmt.Errorf("language detection failed: %w", err)
		}
		s.Language = language
	}
	return s, nil
}

func (c *Chatbot) detectEmotion(ctx context.Context, s turn.State) (turn.State, error) {
	emotion, err := c.caps.Emotion.DetectEmotion(ctx, s.Query)
	if err != nil {
		return s, fmt.Errorf("emotion detection failed: %w", err)
	}
	s.Emotion = emotion
	return s, nil
}

func (c *Chatbot) classifyQuery(ctx context.Context, s turn.State) (turn.State, error) {
	classification, err := c.caps.Classifier.ClassifyQuery(ctx, s.Query, turn.RenderHistory(s.ChatHistory))
	if err != nil {
		return s, fmt.Errorf("classification failed: %w", err)
	}
	s.Classification = classification
	return s, nil
}

// provideFeedback rewrites the feedback message into a standalone query,
// using the most recent recommendation or roadmap turn of the conversation
// as context, and loops back into classification. It runs at most once per
// turn: a second entry means the refined query classified as feedback
// again, which would cycle forever.
func (c *Chatbot) provideFeedback(ctx context.Context, s turn.State) (turn.State, error) {
	if s.RefinedQuery != "" {
		return s, fmt.Errorf("refined query classified as feedback again")
	}

	var originalIntent, previousQuery string
	if c.history != nil {
		record, err := c.history.LastIntentQuery(ctx, s.ConversationID,
			string(turn.ClassificationRecommendation), string(turn.ClassificationRoadmap))
		if err != nil {
			return s, fmt.Errorf("history lookup failed: %w", err)
		}
		if record != nil {
			originalIntent = record.Intent
			previousQuery = record.Query
		}
	}

	refined, err := c.caps.Refiner.RefineQuery(ctx, s.Query, turn.RenderHistory(s.ChatHistory), originalIntent, previousQuery)
	if err != nil {
		return s, fmt.Errorf("feedback refinement failed: %w", err)
	}

	// Both fields carry the refined wording: Query so re-classification acts
	// on it, RefinedQuery so the caller can persist what was derived.
	s.Query = refined
	s.RefinedQuery = refined
	return s, nil
}

func (c *Chatbot) generateRoadmap(ctx context.Context, s turn.State) (turn.State, error) {
	topics, err := c.caps.Planner.PlanRoadmap(ctx, s.Query, turn.RenderHistory(s.ChatHistory))
	if err != nil {
		return s, fmt.Errorf("roadmap planning failed: %w", err)
	}
	s.Roadmap = topics
	return s, nil
}

// extractCoursesMetadata pulls topic, level and count from the query. When
// extraction yields no topic, the most recent recommendation or roadmap
// turn of the conversation supplies one.
func (c *Chatbot) extractCoursesMetadata(ctx context.Context, s turn.State) (turn.State, error) {
	metadata, err := c.caps.Extractor.ExtractMetadata(ctx, s.Query, turn.RenderHistory(s.ChatHistory))
	if err != nil {
		return s, fmt.Errorf("metadata extraction failed: %w", err)
	}

	if metadata.Topic == "" && c.history != nil {
		record, err := c.history.LastIntentQuery(ctx, s.ConversationID,
			string(turn.ClassificationRecommendation), string(turn.ClassificationRoadmap))
		if err != nil {
			return s, fmt.Errorf("history lookup failed: %w", err)
		}
		if record != nil {
			metadata.Topic = record.Topic
		}
	}

	s.Metadata = metadata
	return s, nil
}

// recommendCourses fetches courses for the turn. Roadmap turns fan out over
// their topics; recommendation turns are a single search. Either way the
// formatted course text becomes the draft answer.
func (c *Chatbot) recommendCourses(ctx context.Context, s turn.State) (turn.State, error) {
	searcher := c.searcher()
	if searcher == nil {
		return s, fmt.Errorf("no course searcher configured")
	}

	metadata := s.Metadata
	if metadata == nil {
		metadata = &turn.Metadata{}
	}

	if s.Classification == turn.ClassificationRoadmap && len(s.Roadmap) > 0 {
		steps := c.buildRoadmap(ctx, s.Roadmap, func(ctx context.Context, topic string) ([]turn.Course, error) {
			return searcher.SearchCourses(ctx, topic, courses.DefaultSearchK, metadata.Level)
		})

		for _, step := range steps {
			s.RecommendedCourses = append(s.RecommendedCourses, step.Courses...)
		}

		goal := metadata.Topic
		if goal == "" {
			goal = s.Query
		}
		s.FinalAnswer = FormatRoadmap(steps, goal)
		return s, nil
	}

	found, err := searcher.SearchCourses(ctx, metadata.Topic, metadata.NumCourses, metadata.Level)
	if err != nil {
		return s, fmt.Errorf("course search failed: %w", err)
	}

	s.RecommendedCourses = found
	s.FinalAnswer = FormatCoursesList(found, metadata.Topic)
	return s, nil
}

func (c *Chatbot) classifyAssistance(ctx context.Context, s turn.State) (turn.State, error) {
	classification, err := c.caps.Classifier.ClassifyAssistance(ctx, s.Query, turn.RenderHistory(s.ChatHistory))
	if err != nil {
		return s, fmt.Errorf("assistance classification failed: %w", err)
	}
	s.AssistantClassification = classification
	return s, nil
}

func (c *Chatbot) provideAssistance(ctx context.Context, s turn.State) (turn.State, error) {
	answer, err := c.caps.Answerer.Assist(ctx, s.Query, turn.RenderHistory(s.ChatHistory))
	if err != nil {
		return s, fmt.Errorf("assistance failed: %w", err)
	}
	s.FinalAnswer = answer
	return s, nil
}

// declineAssistance is the terminal for complex assistance requests: a
// fixed answer instead of a silent pass-through.
func (c *Chatbot) declineAssistance(_ context.Context, s turn.State) (turn.State, error) {
	s.FinalAnswer = unsupportedAnswer
	return s, nil
}

func (c *Chatbot) answerPlatformQuestion(ctx context.Context, s turn.State) (turn.State, error) {
	if c.faq == nil {
		return s, fmt.Errorf("no FAQ search configured")
	}

	answer, err := c.faq.SearchAnswer(ctx, s.Query)
	if err != nil {
		return s, fmt.Errorf("FAQ search failed: %w", err)
	}
	s.FinalAnswer = answer
	return s, nil
}

// generateQuiz builds a quiz at the level of the conversation's last
// recommendation or roadmap turn, defaulting to beginner.
func (c *Chatbot) generateQuiz(ctx context.Context, s turn.State) (turn.State, error) {
	level := "beginner"
	topic := ""
	if c.history != nil {
		record, err := c.history.LastIntentQuery(ctx, s.ConversationID,
			string(turn.ClassificationRecommendation), string(turn.ClassificationRoadmap))
		if err != nil {
			return s, fmt.Errorf("history lookup failed: %w", err)
		}
		if record != nil {
			topic = record.Topic
			if record.Level != "" {
				level = record.Level
			}
		}
	}

	quiz, err := c.caps.Quizzer.GenerateQuiz(ctx, s.Query, turn.RenderHistory(s.ChatHistory), topic, level)
	if err != nil {
		return s, fmt.Errorf("quiz generation failed: %w", err)
	}

	s.Quiz = quiz
	s.FinalAnswer = FormatQuiz(quiz)
	return s, nil
}

// finalizeAnswer rewrites the draft answer in the tone derived from the
// detected emotion and in the detected language. This is the text exit.
func (c *Chatbot) finalizeAnswer(ctx context.Context, s turn.State) (turn.State, error) {
	answer, err := c.caps.Answerer.FinalizeAnswer(ctx, s.FinalAnswer, ToneForEmotion(s.Emotion), s.Query, s.Language)
	if err != nil {
		return s, fmt.Errorf("answer finalization failed: %w", err)
	}
	s.FinalAnswer = answer
	return s, nil
}

// prepareSpeech rewrites the answer for synthesis. This is the first half
// of the audio exit.
func (c *Chatbot) prepareSpeech(ctx context.Context, s turn.State) (turn.State, error) {
	speech, err := c.caps.Answerer.PrepareSpeech(ctx, s.FinalAnswer, s.Language)
	if err != nil {
		return s, fmt.Errorf("speech preparation failed: %w", err)
	}
	s.SpeechText = speech
	return s, nil
}

// synthesizeSpeech renders the spoken answer to a file and records its
// path.
func (c *Chatbot) synthesizeSpeech(ctx context.Context, s turn.State) (turn.State, error) {
	text := s.SpeechText
	if text == "" {
		text = s.FinalAnswer
	}

	audio, err := c.caps.Synthesizer.Synthesize(ctx, text, s.Language)
	if err != nil {
		return s, fmt.Errorf("speech synthesis failed: %w", err)
	}

	name := s.QueryID
	if name == "" {
		name = uuid.NewString()
	}
	path := filepath.Join(c.audioOutputDir, fmt.Sprintf("speech_%s.mp3", name))

	if err = os.WriteFile(path, audio, 0o644); err != nil {
		return s, fmt.Errorf("failed to write synthesized audio: %w", err)
	}
	s.AudioOutput = path
	return s, nil
}
