// Package chatbot wires the turn orchestration graph: it owns the node
// implementations, the router tables, the roadmap fan-out and the semantic
// cache gate, and exposes a single ProcessTurn entry point. Transport and
// persistence of turn records stay with the caller.
package chatbot

import (
	"context"
	"fmt"
	"time"

	"github.com/saharlajmi1/recmooc4all/core/turn"
	"github.com/saharlajmi1/recmooc4all/patterns/fanout"
	"github.com/saharlajmi1/recmooc4all/patterns/flow"
	"github.com/saharlajmi1/recmooc4all/providers/cache"
	"github.com/saharlajmi1/recmooc4all/providers/capability"
	"github.com/saharlajmi1/recmooc4all/providers/courses"
	"github.com/saharlajmi1/recmooc4all/providers/history"
	"github.com/saharlajmi1/recmooc4all/providers/observability"
)

// Capabilities groups the model-backed operations the graph nodes call.
// Classifier, Language, Emotion, Answerer and Refiner are required for text
// turns; Transcriber and Synthesizer only for audio turns.
type Capabilities struct {
	Classifier  capability.Classifier
	Language    capability.LanguageDetector
	Emotion     capability.EmotionDetector
	Extractor   capability.MetadataExtractor
	Planner     capability.RoadmapPlanner
	Refiner     capability.QueryRefiner
	Answerer    capability.AnswerGenerator
	Quizzer     capability.QuizGenerator
	Embedder    capability.Embedder
	Transcriber capability.Transcriber
	Synthesizer capability.Synthesizer
}

// Chatbot orchestrates conversational turns. It is stateless across turns
// apart from the injected cache and history stores and is safe for
// concurrent ProcessTurn calls.
type Chatbot struct {
	caps Capabilities
	flow *flow.Flow[turn.State]

	cache   cache.Store
	history history.Store

	localSearch  courses.Searcher
	remoteSearch courses.Searcher
	faq          courses.FAQSearcher

	fanoutWidth    int
	audioOutputDir string
	observer       observability.Provider

	nodeTimeout  time.Duration
	turnDeadline time.Duration
	maxVisits    int
}

// Option customizes a [Chatbot].
type Option func(*Chatbot)

// WithCache enables the semantic answer cache for text turns.
func WithCache(store cache.Store) Option {
	return func(c *Chatbot) { c.cache = store }
}

// WithHistory attaches the query history store consulted by the feedback,
// metadata-fallback and quiz nodes. Without it those lookups are skipped.
func WithHistory(store history.Store) Option {
	return func(c *Chatbot) { c.history = store }
}

// WithLocalSearch sets the course searcher used when no remote recommender
// applies.
func WithLocalSearch(searcher courses.Searcher) Option {
	return func(c *Chatbot) { c.localSearch = searcher }
}

// WithRemoteSearch sets the profile-aware remote recommender. When set it
// takes precedence over the local catalog.
func WithRemoteSearch(searcher courses.Searcher) Option {
	return func(c *Chatbot) { c.remoteSearch = searcher }
}

// WithFAQ sets the knowledge base behind the platform assistant.
func WithFAQ(faq courses.FAQSearcher) Option {
	return func(c *Chatbot) { c.faq = faq }
}

// WithFanoutWidth bounds the roadmap fetch concurrency.
func WithFanoutWidth(width int) Option {
	return func(c *Chatbot) { c.fanoutWidth = width }
}

// WithAudioOutputDir sets where synthesized answers are written.
func WithAudioOutputDir(dir string) Option {
	return func(c *Chatbot) {
		if dir != "" {
			c.audioOutputDir = dir
		}
	}
}

// WithObserver attaches an observability provider to the orchestrator and
// its flow executor.
func WithObserver(observer observability.Provider) Option {
	return func(c *Chatbot) { c.observer = observer }
}

// WithNodeTimeout bounds each node's transformation, capability calls
// included.
func WithNodeTimeout(timeout time.Duration) Option {
	return func(c *Chatbot) { c.nodeTimeout = timeout }
}

// WithTurnDeadline bounds the whole turn.
func WithTurnDeadline(deadline time.Duration) Option {
	return func(c *Chatbot) { c.turnDeadline = deadline }
}

// WithMaxVisits overrides the flow's visit budget.
func WithMaxVisits(maxVisits int) Option {
	return func(c *Chatbot) { c.maxVisits = maxVisits }
}

// New builds the orchestration graph around the given capabilities.
func New(caps Capabilities, opts ...Option) (*Chatbot, error) {
	c := &Chatbot{
		caps:           caps,
		fanoutWidth:    fanout.DefaultWidth,
		audioOutputDir: ".",
	}
	for _, opt := range opts {
		opt(c)
	}

	built, err := c.buildFlow()
	if err != nil {
		return nil, fmt.Errorf("failed to build turn flow: %w", err)
	}
	c.flow = built
	return c, nil
}

// ProcessTurn validates the initial state, consults the semantic cache for
// text turns, and otherwise drives the state through the graph. On success
// the answer of a text turn is stored back into the cache.
func (c *Chatbot) ProcessTurn(ctx context.Context, state turn.State) (turn.State, error) {
	if err := state.Validate(); err != nil {
		return turn.State{}, err
	}

	// Audio turns bypass the cache gate: their deliverable is a synthesized
	// file, not a cacheable string.
	var contextual string
	var embedding []float32
	useCache := c.cache != nil && c.caps.Embedder != nil && !state.IsAudioInput && len(state.AudioInput) == 0

	if useCache {
		contextual = turn.RenderHistory(state.ChatHistory) + " || " + state.Query

		var err error
		embedding, err = c.caps.Embedder.Embed(ctx, contextual)
		if err != nil {
			// A cache-path failure must never fail the turn.
			c.warn(ctx, "cache embedding failed, skipping cache", observability.Error(err))
			useCache = false
		}
	}

	if useCache {
		entry, err := c.cache.Lookup(ctx, embedding)
		if err != nil {
			c.warn(ctx, "cache lookup failed", observability.Error(err))
		} else if entry != nil {
			c.info(ctx, "semantic cache hit", observability.String("intent", entry.Intent))
			state.FinalAnswer = entry.Answer
			state.Classification = turn.Classification(entry.Intent)
			return state, nil
		}
	}

	final, err := c.flow.Run(ctx, state)
	if err != nil {
		return turn.State{}, err
	}

	if useCache && final.FinalAnswer != "" {
		storeErr := c.cache.Put(ctx, cache.Entry{
			Key:       cache.Key(contextual),
			Embedding: embedding,
			Answer:    final.FinalAnswer,
			Intent:    string(final.Classification),
		})
		if storeErr != nil {
			c.warn(ctx, "cache store failed", observability.Error(storeErr))
		}
	}

	return final, nil
}

// buildRoadmap fetches courses for every topic concurrently and aggregates
// one step per topic in the input order. A failed topic degrades to an empty
// course list with a warning; siblings are unaffected.
func (c *Chatbot) buildRoadmap(ctx context.Context, topics []string, fetch func(ctx context.Context, topic string) ([]turn.Course, error)) []turn.RoadmapStep {
	results := fanout.Map(ctx, c.fanoutWidth, topics, fetch)

	steps := make([]turn.RoadmapStep, len(topics))
	for i, result := range results {
		coursesForTopic := result.Value
		if result.Err != nil {
			c.warn(ctx, "course fetch failed for roadmap topic",
				observability.String("topic", topics[i]),
				observability.Error(result.Err))
			coursesForTopic = nil
		}
		steps[i] = turn.RoadmapStep{
			StepIndex: i + 1,
			Topic:     topics[i],
			Courses:   coursesForTopic,
		}
	}
	return steps
}

// searcher returns the retrieval path for this deployment: the remote
// recommender when configured, the local catalog otherwise.
func (c *Chatbot) searcher() courses.Searcher {
	if c.remoteSearch != nil {
		return c.remoteSearch
	}
	return c.localSearch
}

// logger returns the configured observer, falling back to one carried on
// the context. Nil means logging is disabled.
func (c *Chatbot) logger(ctx context.Context) observability.Provider {
	if c.observer != nil {
		return c.observer
	}
	return observability.ObserverFromContext(ctx)
}

func (c *Chatbot) info(ctx context.Context, msg string, attrs ...observability.Attribute) {
	if observer := c.logger(ctx); observer != nil {
		observer.Info(ctx, msg, attrs...)
	}
}

func (c *Chatbot) warn(ctx context.Context, msg string, attrs ...observability.Attribute) {
	if observer := c.logger(ctx); observer != nil {
		observer.Warn(ctx, msg, attrs...)
	}
}
