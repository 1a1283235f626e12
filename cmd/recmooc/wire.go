package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/saharlajmi1/recmooc4all/chatbot"
	"github.com/saharlajmi1/recmooc4all/config"
	"github.com/saharlajmi1/recmooc4all/core/turn"
	cachemem "github.com/saharlajmi1/recmooc4all/providers/cache/inmemory"
	"github.com/saharlajmi1/recmooc4all/providers/capability/openai"
	"github.com/saharlajmi1/recmooc4all/providers/courses"
	"github.com/saharlajmi1/recmooc4all/providers/history/sqlite"
	"github.com/saharlajmi1/recmooc4all/providers/observability"
)

// defaultFAQ is the built-in platform knowledge base. A deployment with its
// own FAQ content can extend it through the catalog file later; these
// entries keep the platform assistant functional out of the box.
var defaultFAQ = []courses.FAQEntry{
	{
		Question: "How do I reset my password?",
		Answer:   "Open your profile settings and use the \"Forgot password\" link; a reset email is sent to your registered address.",
	},
	{
		Question: "How do I enroll in a course?",
		Answer:   "Open the course page and press \"Enroll\". Enrolled courses appear on your dashboard.",
	},
	{
		Question: "Are the recommended courses free?",
		Answer:   "The catalog aggregates courses from several MOOC platforms; many are free to audit, and each course page states its pricing.",
	},
	{
		Question: "How do I delete my account?",
		Answer:   "Account deletion is in profile settings under \"Privacy\". Your query history is removed together with the account.",
	},
}

// buildChatbot wires the configured providers into an orchestrator. The
// returned close function releases the history store.
func buildChatbot(ctx context.Context, cfg *config.Config, observer observability.Provider) (*chatbot.Chatbot, *sqlite.Store, error) {
	client := openai.New(cfg.Provider.APIKey,
		openai.WithBaseURL(cfg.Provider.BaseURL),
		openai.WithChatModel(cfg.Provider.ChatModel),
		openai.WithEmbeddingModel(cfg.Provider.EmbeddingModel),
		openai.WithSpeechEndpoint(cfg.Speech.BaseURL, cfg.Speech.APIKey),
		openai.WithSpeechModels(cfg.Speech.TranscriptionModel, cfg.Speech.SpeechModel),
	)

	store, err := sqlite.Open(cfg.History.DSN)
	if err != nil {
		return nil, nil, err
	}

	faq := courses.NewFAQ(client)
	if err = faq.Index(ctx, defaultFAQ); err != nil {
		_ = store.Close()
		return nil, nil, fmt.Errorf("failed to index FAQ entries: %w", err)
	}

	opts := []chatbot.Option{
		chatbot.WithHistory(store),
		chatbot.WithFAQ(faq),
		chatbot.WithObserver(observer),
		chatbot.WithCache(cachemem.New(
			cachemem.WithThreshold(cfg.Cache.Threshold),
			cachemem.WithTTL(cfg.Cache.TTL.Std()),
		)),
		chatbot.WithFanoutWidth(cfg.Flow.FanoutWidth),
		chatbot.WithAudioOutputDir(cfg.Speech.OutputDir),
		chatbot.WithNodeTimeout(cfg.Flow.NodeTimeout.Std()),
		chatbot.WithTurnDeadline(cfg.Flow.TurnDeadline.Std()),
	}

	if cfg.Courses.CatalogPath != "" {
		catalog, err := loadCatalog(ctx, cfg.Courses.CatalogPath, client)
		if err != nil {
			_ = store.Close()
			return nil, nil, err
		}
		observer.Info(ctx, "local catalog indexed",
			observability.String("path", cfg.Courses.CatalogPath),
			observability.Int("courses", catalog.Len()))
		opts = append(opts, chatbot.WithLocalSearch(catalog))
	}

	if cfg.Courses.RecommenderURL != "" {
		opts = append(opts, chatbot.WithRemoteSearch(
			courses.NewRemote(cfg.Courses.RecommenderURL, courses.Profile{}, nil)))
	}

	bot, err := chatbot.New(chatbot.Capabilities{
		Classifier:  client,
		Language:    client,
		Emotion:     client,
		Extractor:   client,
		Planner:     client,
		Refiner:     client,
		Answerer:    client,
		Quizzer:     client,
		Embedder:    client,
		Transcriber: client,
		Synthesizer: client,
	}, opts...)
	if err != nil {
		_ = store.Close()
		return nil, nil, err
	}
	return bot, store, nil
}

// loadCatalog reads a JSON course list and indexes it into an embedding
// catalog.
func loadCatalog(ctx context.Context, path string, embedder *openai.Client) (*courses.Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	var list []turn.Course
	if err = json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("failed to parse catalog file: %w", err)
	}

	catalog := courses.NewCatalog(embedder)
	if err = catalog.Index(ctx, list); err != nil {
		return nil, err
	}
	return catalog, nil
}
