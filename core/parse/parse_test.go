package parse

import (
	"strings"
	"testing"
)

type testIntent struct {
	Classification string `json:"classification"`
	Confidence     float64
}

func TestParseStringAsPrimitives(t *testing.T) {
	t.Run("string passthrough", func(t *testing.T) {
		got, err := ParseStringAs[string]("  roadmap \n")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "roadmap" {
			t.Errorf("got %q, want roadmap", got)
		}
	})

	t.Run("bool", func(t *testing.T) {
		got, err := ParseStringAs[bool]("true")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !got {
			t.Error("expected true")
		}
	})

	t.Run("int", func(t *testing.T) {
		got, err := ParseStringAs[int]("42")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != 42 {
			t.Errorf("got %d, want 42", got)
		}
	})

	t.Run("float", func(t *testing.T) {
		got, err := ParseStringAs[float64]("0.95")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != 0.95 {
			t.Errorf("got %f, want 0.95", got)
		}
	})

	t.Run("invalid int", func(t *testing.T) {
		if _, err := ParseStringAs[int]("not a number"); err == nil {
			t.Error("expected error for invalid int")
		}
	})
}

func TestParseStringAsStruct(t *testing.T) {
	got, err := ParseStringAs[testIntent](`{"classification":"quiz","Confidence":0.9}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Classification != "quiz" {
		t.Errorf("classification %q, want quiz", got.Classification)
	}
}

func TestParseStringAsRepairsJSON(t *testing.T) {
	// Single quotes and unquoted keys are repaired before unmarshaling.
	got, err := ParseStringAs[testIntent](`{classification: 'feedback', Confidence: 0.7,}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Classification != "feedback" {
		t.Errorf("classification %q, want feedback", got.Classification)
	}
}

func TestParseStringAsStripsCodeFence(t *testing.T) {
	content := "```json\n{\"classification\": \"roadmap\"}\n```"
	got, err := ParseStringAs[testIntent](content)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Classification != "roadmap" {
		t.Errorf("classification %q, want roadmap", got.Classification)
	}
}

func TestParseStringAsSlice(t *testing.T) {
	got, err := ParseStringAs[[]string](`["algebra", "calculus"]`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0] != "algebra" {
		t.Errorf("unexpected slice: %v", got)
	}
}

func TestParseStringAsUnrepairable(t *testing.T) {
	_, err := ParseStringAs[testIntent](`{"classification": 42}`)
	if err == nil {
		t.Fatal("expected error for type mismatch")
	}
	if !strings.Contains(err.Error(), "failed to unmarshal") {
		t.Errorf("unexpected error text: %v", err)
	}
}
