package turn

import (
	"errors"
	"strings"
	"testing"
)

func TestClassificationValid(t *testing.T) {
	valid := []Classification{
		ClassificationAssistance,
		ClassificationRecommendation,
		ClassificationFeedback,
		ClassificationPlatformAssistant,
		ClassificationRoadmap,
		ClassificationQuiz,
	}
	for _, classification := range valid {
		if !classification.Valid() {
			t.Errorf("expected %q to be valid", classification)
		}
	}

	invalid := []Classification{"", "unknown", "Recommendation", "road map"}
	for _, classification := range invalid {
		if classification.Valid() {
			t.Errorf("expected %q to be invalid", classification)
		}
	}
}

func TestAssistantClassificationValid(t *testing.T) {
	if !SimpleAssistance.Valid() || !ComplexAssistance.Valid() {
		t.Error("expected enumerated assistant classifications to be valid")
	}
	if AssistantClassification("moderate assistance").Valid() {
		t.Error("expected unmapped assistant classification to be invalid")
	}
}

func TestStateValidate(t *testing.T) {
	tests := []struct {
		name    string
		state   State
		wantErr bool
	}{
		{
			name:  "text only",
			state: State{Query: "recommend python courses"},
		},
		{
			name:  "audio only",
			state: State{AudioInput: []byte{0x52, 0x49, 0x46, 0x46}},
		},
		{
			name:    "neither",
			state:   State{},
			wantErr: true,
		},
		{
			name:    "whitespace query counts as empty",
			state:   State{Query: "   "},
			wantErr: true,
		},
		{
			name:    "both",
			state:   State{Query: "hello", AudioInput: []byte{0x01}},
			wantErr: true,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := test.state.Validate()
			if test.wantErr {
				var validationErr *ValidationError
				if !errors.As(err, &validationErr) {
					t.Fatalf("expected ValidationError, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestRenderHistoryDeterministic(t *testing.T) {
	history := []Message{
		{Role: RoleUser, Text: "I want to learn python"},
		{Role: RoleAssistant, Text: "Here are some courses"},
	}

	first := RenderHistory(history)
	second := RenderHistory(history)
	if first != second {
		t.Fatal("expected identical renderings for identical histories")
	}

	if !strings.Contains(first, "user: I want to learn python") {
		t.Errorf("rendering missing user line: %q", first)
	}
	if !strings.Contains(first, "assistant: Here are some courses") {
		t.Errorf("rendering missing assistant line: %q", first)
	}

	if RenderHistory(nil) != "" {
		t.Error("expected empty rendering for empty history")
	}
}
