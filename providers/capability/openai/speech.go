package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/saharlajmi1/recmooc4all/internal/utils"
)

type embeddingRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

// Embed returns the embedding vector for the text.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	request := embeddingRequest{Model: c.embeddingModel, Input: text}

	response, err := utils.DoPostSync[embeddingResponse](ctx, c.httpClient, c.baseURL+"/embeddings", c.apiKey, request)
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}
	if len(response.Data) == 0 || len(response.Data[0].Embedding) == 0 {
		return nil, fmt.Errorf("embedding response contained no vector")
	}
	return response.Data[0].Embedding, nil
}

type transcriptionResponse struct {
	Text string `json:"text"`
}

// Transcribe decodes the audio payload via the transcriptions endpoint.
// The payload is sent as a multipart upload; language is a hint and may be
// empty.
func (c *Client) Transcribe(ctx context.Context, audio []byte, language string) (string, error) {
	if len(audio) == 0 {
		return "", fmt.Errorf("empty audio payload")
	}

	var buffer bytes.Buffer
	writer := multipart.NewWriter(&buffer)

	part, err := writer.CreateFormFile("file", "audio.mp3")
	if err != nil {
		return "", fmt.Errorf("error building multipart body: %w", err)
	}
	if _, err = part.Write(audio); err != nil {
		return "", fmt.Errorf("error building multipart body: %w", err)
	}
	if err = writer.WriteField("model", c.transcriptionModel); err != nil {
		return "", fmt.Errorf("error building multipart body: %w", err)
	}
	if language != "" {
		if err = writer.WriteField("language", language); err != nil {
			return "", fmt.Errorf("error building multipart body: %w", err)
		}
	}
	if err = writer.Close(); err != nil {
		return "", fmt.Errorf("error building multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.speechBaseURL+"/audio/transcriptions", &buffer)
	if err != nil {
		return "", fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+c.speechAPIKey)

	res, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("transcription request failed: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	respBody, err := io.ReadAll(res.Body)
	if err != nil {
		return "", fmt.Errorf("error reading transcription response: %w", err)
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return "", fmt.Errorf("transcription returned status %d: %s", res.StatusCode, utils.TruncateString(string(respBody), 500))
	}

	var transcript transcriptionResponse
	if err = json.Unmarshal(respBody, &transcript); err != nil {
		return "", fmt.Errorf("error unmarshaling transcription response: %w", err)
	}
	if strings.TrimSpace(transcript.Text) == "" {
		return "", fmt.Errorf("transcription returned empty text")
	}
	return transcript.Text, nil
}

// voiceForLanguage maps language codes onto the voices the speech endpoint
// ships for them.
var voiceForLanguage = map[string]string{
	"en": "sarah",
	"ja": "sakura",
	"zh": "xiaobei",
	"es": "dora",
	"fr": "siwis",
	"hi": "alpha",
	"it": "sara",
	"pt": "clara",
}

type speechRequest struct {
	Model          string `json:"model"`
	Voice          string `json:"voice"`
	ResponseFormat string `json:"response_format"`
	Input          string `json:"input"`
}

// Synthesize returns MP3 audio for the text in the given language.
func (c *Client) Synthesize(ctx context.Context, text, language string) ([]byte, error) {
	voice, ok := voiceForLanguage[strings.ToLower(language)]
	if !ok {
		voice = voiceForLanguage["en"]
	}

	request := speechRequest{
		Model:          c.speechModel,
		Voice:          voice,
		ResponseFormat: "mp3",
		Input:          text,
	}

	audio, _, err := utils.DoPostRaw(ctx, c.httpClient, c.speechBaseURL+"/audio/speech", c.speechAPIKey, request, "audio/mpeg")
	if err != nil {
		return nil, fmt.Errorf("speech request failed: %w", err)
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("speech endpoint returned no audio")
	}
	return audio, nil
}
