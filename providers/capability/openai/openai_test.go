package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/saharlajmi1/recmooc4all/core/turn"
)

// chatServer returns a server whose /chat/completions endpoint always
// answers with the given assistant content.
func chatServer(t *testing.T, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if request.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %q", request.URL.Path)
		}
		writer.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(writer).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": content}},
			},
		})
	}))
}

func TestClassifyQuery(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    turn.Classification
		wantErr bool
	}{
		{name: "clean json", content: `{"classification": "roadmap"}`, want: turn.ClassificationRoadmap},
		{name: "repairable json", content: `{classification: 'quiz'}`, want: turn.ClassificationQuiz},
		{name: "mixed case", content: `{"classification": "Recommendation"}`, want: turn.ClassificationRecommendation},
		{name: "unknown value", content: `{"classification": "banter"}`, wantErr: true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			server := chatServer(t, test.content)
			defer server.Close()

			client := New("key", WithBaseURL(server.URL), WithHTTPClient(server.Client()))
			got, err := client.ClassifyQuery(context.Background(), "teach me go", "")
			if test.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != test.want {
				t.Errorf("classification %q, want %q", got, test.want)
			}
		})
	}
}

func TestClassifyAssistance(t *testing.T) {
	server := chatServer(t, `{"classification": "simple assistance"}`)
	defer server.Close()

	client := New("key", WithBaseURL(server.URL), WithHTTPClient(server.Client()))
	got, err := client.ClassifyAssistance(context.Background(), "what is a MOOC", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != turn.SimpleAssistance {
		t.Errorf("got %q, want simple assistance", got)
	}
}

func TestDetectEmotionDegradesToNeutral(t *testing.T) {
	server := chatServer(t, "bewildered")
	defer server.Close()

	client := New("key", WithBaseURL(server.URL), WithHTTPClient(server.Client()))
	got, err := client.DetectEmotion(context.Background(), "huh?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "neutral" {
		t.Errorf("out-of-vocabulary emotion should degrade to neutral, got %q", got)
	}
}

func TestDetectLanguageNormalizes(t *testing.T) {
	server := chatServer(t, `"FR"`)
	defer server.Close()

	client := New("key", WithBaseURL(server.URL), WithHTTPClient(server.Client()))
	got, err := client.DetectLanguage(context.Background(), "bonjour")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "fr" {
		t.Errorf("got %q, want fr", got)
	}
}

func TestExtractMetadata(t *testing.T) {
	server := chatServer(t, `{"course_title_or_skill": "data science", "level": "Beginner", "num_courses": 3}`)
	defer server.Close()

	client := New("key", WithBaseURL(server.URL), WithHTTPClient(server.Client()))
	metadata, err := client.ExtractMetadata(context.Background(), "3 beginner data science courses", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if metadata.Topic != "data science" || metadata.Level != "beginner" || metadata.NumCourses != 3 {
		t.Errorf("unexpected metadata: %+v", metadata)
	}
}

func TestPlanRoadmap(t *testing.T) {
	server := chatServer(t, `{"roadmap": ["python basics", "statistics", "machine learning"]}`)
	defer server.Close()

	client := New("key", WithBaseURL(server.URL), WithHTTPClient(server.Client()))
	topics, err := client.PlanRoadmap(context.Background(), "become a data scientist", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(topics) != 3 || topics[0] != "python basics" {
		t.Errorf("unexpected roadmap: %v", topics)
	}
}

func TestPlanRoadmapEmpty(t *testing.T) {
	server := chatServer(t, `{"roadmap": []}`)
	defer server.Close()

	client := New("key", WithBaseURL(server.URL), WithHTTPClient(server.Client()))
	if _, err := client.PlanRoadmap(context.Background(), "goal", ""); err == nil {
		t.Fatal("expected error for empty roadmap")
	}
}

func TestGenerateQuiz(t *testing.T) {
	server := chatServer(t, `{"questions": [{"question": "2+2?", "choices": ["3", "4"], "correct_answer": "4"}]}`)
	defer server.Close()

	client := New("key", WithBaseURL(server.URL), WithHTTPClient(server.Client()))
	quiz, err := client.GenerateQuiz(context.Background(), "quiz me", "", "arithmetic", "beginner")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(quiz.Questions) != 1 || quiz.Questions[0].CorrectAnswer != "4" {
		t.Errorf("unexpected quiz: %+v", quiz)
	}
}

func TestEmbed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if request.URL.Path != "/embeddings" {
			t.Errorf("unexpected path %q", request.URL.Path)
		}
		writer.Header().Set("Content-Type", "application/json")
		_, _ = writer.Write([]byte(`{"data": [{"embedding": [0.1, 0.2, 0.3]}]}`))
	}))
	defer server.Close()

	client := New("key", WithBaseURL(server.URL), WithHTTPClient(server.Client()))
	embedding, err := client.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(embedding) != 3 {
		t.Errorf("unexpected embedding: %v", embedding)
	}
}

func TestTranscribe(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if request.URL.Path != "/audio/transcriptions" {
			t.Errorf("unexpected path %q", request.URL.Path)
		}
		if !strings.HasPrefix(request.Header.Get("Content-Type"), "multipart/form-data") {
			t.Errorf("expected multipart upload, got %q", request.Header.Get("Content-Type"))
		}
		if err := request.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("bad multipart body: %v", err)
		}
		if got := request.FormValue("language"); got != "fr" {
			t.Errorf("language hint %q, want fr", got)
		}
		writer.Header().Set("Content-Type", "application/json")
		_, _ = writer.Write([]byte(`{"text": "bonjour tout le monde"}`))
	}))
	defer server.Close()

	client := New("key", WithHTTPClient(server.Client()), WithSpeechEndpoint(server.URL, "speech-key"))
	text, err := client.Transcribe(context.Background(), []byte("fake-audio"), "fr")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "bonjour tout le monde" {
		t.Errorf("unexpected transcript %q", text)
	}
}

func TestTranscribeEmptyPayload(t *testing.T) {
	client := New("key")
	if _, err := client.Transcribe(context.Background(), nil, ""); err == nil {
		t.Fatal("expected error for empty audio")
	}
}

func TestSynthesizeSelectsVoice(t *testing.T) {
	var gotVoice string
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if request.URL.Path != "/audio/speech" {
			t.Errorf("unexpected path %q", request.URL.Path)
		}
		var body speechRequest
		if err := json.NewDecoder(request.Body).Decode(&body); err != nil {
			t.Fatalf("bad request body: %v", err)
		}
		gotVoice = body.Voice
		_, _ = writer.Write([]byte("mp3-bytes"))
	}))
	defer server.Close()

	client := New("key", WithHTTPClient(server.Client()), WithSpeechEndpoint(server.URL, "speech-key"))
	audio, err := client.Synthesize(context.Background(), "bonjour", "fr")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(audio) != "mp3-bytes" {
		t.Errorf("unexpected audio %q", audio)
	}
	if gotVoice != "siwis" {
		t.Errorf("voice %q, want siwis for fr", gotVoice)
	}
}

func TestSynthesizeUnknownLanguageFallsBack(t *testing.T) {
	var gotVoice string
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		var body speechRequest
		_ = json.NewDecoder(request.Body).Decode(&body)
		gotVoice = body.Voice
		_, _ = writer.Write([]byte("x"))
	}))
	defer server.Close()

	client := New("key", WithHTTPClient(server.Client()), WithSpeechEndpoint(server.URL, "speech-key"))
	if _, err := client.Synthesize(context.Background(), "hello", "xx"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotVoice != "sarah" {
		t.Errorf("voice %q, want english fallback", gotVoice)
	}
}

func TestCompleteNoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(writer, `{"choices": []}`)
	}))
	defer server.Close()

	client := New("key", WithBaseURL(server.URL), WithHTTPClient(server.Client()))
	if _, err := client.Assist(context.Background(), "q", ""); err == nil {
		t.Fatal("expected error for empty choices")
	}
}
