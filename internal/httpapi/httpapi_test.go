package httpapi

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/saharlajmi1/recmooc4all/core/turn"
	"github.com/saharlajmi1/recmooc4all/providers/history"
	historymem "github.com/saharlajmi1/recmooc4all/providers/history/inmemory"
)

// fakeProcessor records the state it received and returns a canned result.
type fakeProcessor struct {
	got    turn.State
	result turn.State
	err    error
}

var _ TurnProcessor = (*fakeProcessor)(nil)

func (f *fakeProcessor) ProcessTurn(_ context.Context, state turn.State) (turn.State, error) {
	f.got = state
	if f.err != nil {
		return turn.State{}, f.err
	}

	result := f.result
	result.QueryID = state.QueryID
	result.ConversationID = state.ConversationID
	if result.Query == "" {
		result.Query = state.Query
	}
	return result, nil
}

func postQuery(t *testing.T, handler http.Handler, body any) *httptest.ResponseRecorder {
	t.Helper()

	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal request: %v", err)
	}

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodPost, "/api/v2/query", bytes.NewReader(payload))
	handler.ServeHTTP(recorder, request)
	return recorder
}

func TestQueryEndpoint(t *testing.T) {
	processor := &fakeProcessor{result: turn.State{
		FinalAnswer:    "Here you go.",
		Classification: turn.ClassificationRecommendation,
		Metadata:       &turn.Metadata{Topic: "python", Level: "beginner", NumCourses: 3},
	}}
	store := historymem.New()
	server := NewServer(processor, WithHistory(store))

	recorder := postQuery(t, server.Handler(), queryRequest{
		UserID:         "u1",
		ConversationID: "c1",
		Query:          "recommend me python courses",
	})

	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", recorder.Code, recorder.Body.String())
	}

	var resp queryResponse
	if err := json.NewDecoder(recorder.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Response != "Here you go." || resp.Intent != "recommendation" || resp.Topic != "python" {
		t.Errorf("unexpected response: %+v", resp)
	}
	if resp.ID == "" {
		t.Error("expected a generated query id")
	}

	record, err := store.Get(context.Background(), resp.ID)
	if err != nil {
		t.Fatalf("record not persisted: %v", err)
	}
	if record.Response != "Here you go." || record.Intent != "recommendation" || record.NumCourses != 3 {
		t.Errorf("record not updated with the turn result: %+v", record)
	}
	if processor.got.Query != "recommend me python courses" {
		t.Errorf("processor received %q", processor.got.Query)
	}
}

func TestQueryEndpointDecodesAudio(t *testing.T) {
	processor := &fakeProcessor{result: turn.State{
		FinalAnswer:    "spoken",
		Classification: turn.ClassificationAssistance,
		AudioOutput:    "/tmp/speech_x.mp3",
	}}
	server := NewServer(processor)

	recorder := postQuery(t, server.Handler(), queryRequest{
		ConversationID: "c1",
		Audio:          base64.StdEncoding.EncodeToString([]byte("raw-audio")),
	})

	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", recorder.Code, recorder.Body.String())
	}
	if string(processor.got.AudioInput) != "raw-audio" {
		t.Errorf("audio not decoded, got %q", processor.got.AudioInput)
	}

	var resp queryResponse
	if err := json.NewDecoder(recorder.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.AudioOutput != "/tmp/speech_x.mp3" {
		t.Errorf("unexpected audio output %q", resp.AudioOutput)
	}
}

func TestQueryEndpointRejectsInvalidTurn(t *testing.T) {
	processor := &fakeProcessor{err: &turn.ValidationError{Reason: "neither text query nor audio input present"}}
	server := NewServer(processor)

	recorder := postQuery(t, server.Handler(), queryRequest{ConversationID: "c1"})
	if recorder.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", recorder.Code)
	}
}

func TestQueryEndpointRejectsBadAudio(t *testing.T) {
	server := NewServer(&fakeProcessor{})

	recorder := postQuery(t, server.Handler(), queryRequest{ConversationID: "c1", Audio: "not-base64!"})
	if recorder.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", recorder.Code)
	}
}

func TestQueryEndpointMapsProcessingFailure(t *testing.T) {
	processor := &fakeProcessor{err: fmt.Errorf("backend exploded")}
	server := NewServer(processor)

	recorder := postQuery(t, server.Handler(), queryRequest{ConversationID: "c1", Query: "hi"})
	if recorder.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", recorder.Code)
	}

	var resp errorResponse
	if err := json.NewDecoder(recorder.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode error body: %v", err)
	}
	if resp.Error == "" {
		t.Error("expected an error message")
	}
}

func TestListQueriesByConversation(t *testing.T) {
	store := historymem.New()
	for _, conversation := range []string{"c1", "c1", "c2"} {
		_ = store.Create(context.Background(), &history.Record{ConversationID: conversation, Query: "q"})
	}
	server := NewServer(&fakeProcessor{}, WithHistory(store))

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/api/v2/conversations/c1/queries", nil)
	server.Handler().ServeHTTP(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d", recorder.Code)
	}

	var records []history.Record
	if err := json.NewDecoder(recorder.Body).Decode(&records); err != nil {
		t.Fatalf("failed to decode records: %v", err)
	}
	if len(records) != 2 {
		t.Errorf("expected 2 records, got %d", len(records))
	}
}

func TestDeleteQuery(t *testing.T) {
	store := historymem.New()
	record := &history.Record{ConversationID: "c1", Query: "q"}
	_ = store.Create(context.Background(), record)
	server := NewServer(&fakeProcessor{}, WithHistory(store))

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodDelete, "/api/v2/queries/"+record.ID, nil)
	server.Handler().ServeHTTP(recorder, request)
	if recorder.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", recorder.Code)
	}

	// Deleting again reports the soft-deleted record as gone.
	recorder = httptest.NewRecorder()
	server.Handler().ServeHTTP(recorder, request.Clone(request.Context()))
	if recorder.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", recorder.Code)
	}
}

func TestHistoryEndpointsWithoutStore(t *testing.T) {
	server := NewServer(&fakeProcessor{})

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/api/v2/conversations/c1/queries", nil)
	server.Handler().ServeHTTP(recorder, request)
	if recorder.Code != http.StatusNotImplemented {
		t.Errorf("status = %d, want 501", recorder.Code)
	}
}
