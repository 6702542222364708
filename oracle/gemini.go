package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/siherrmann/eventer/helper"
)

const (
	DefaultGeminiEndpoint = "https://generativelanguage.googleapis.com/v1beta"
	DefaultGeminiModel    = "gemini-2.0-flash"
	defaultMaxTokens      = 2048
)

// Gemini calls the Google Generative Language API.
type Gemini struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
	log      *slog.Logger
}

// NewGemini creates a Gemini provider. Empty model and endpoint use the defaults.
func NewGemini(apiKey, model, endpoint string, timeout time.Duration, logger *slog.Logger) *Gemini {
	if model == "" {
		model = DefaultGeminiModel
	}
	if endpoint == "" {
		endpoint = DefaultGeminiEndpoint
	}
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Gemini{
		apiKey:   apiKey,
		model:    model,
		endpoint: strings.TrimSuffix(endpoint, "/"),
		client:   &http.Client{Timeout: timeout},
		log:      logger,
	}
}

func (g *Gemini) Name() string {
	return "gemini"
}

func (g *Gemini) Available() bool {
	return g.apiKey != ""
}

func (g *Gemini) Generate(ctx context.Context, req Request) (Response, error) {
	if !g.Available() {
		return Response{}, helper.NewError("gemini generate", fmt.Errorf("gemini provider not configured"))
	}

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
	}

	body := map[string]interface{}{
		"contents": []map[string]interface{}{
			{
				"role":  "user",
				"parts": []map[string]string{{"text": req.UserPrompt}},
			},
		},
		"generationConfig": map[string]interface{}{
			"maxOutputTokens": maxTokens,
		},
	}
	if req.SystemPrompt != "" {
		body["systemInstruction"] = map[string]interface{}{
			"parts": []map[string]string{{"text": req.SystemPrompt}},
		}
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return Response{}, helper.NewError("marshal request", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", g.endpoint, g.model, g.apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return Response{}, helper.NewError("create request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	g.log.Debug("Gemini request", slog.String("model", g.model), slog.Int("max_tokens", maxTokens))

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return Response{}, helper.NewError("request", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, helper.NewError("read response", err)
	}

	if resp.StatusCode != http.StatusOK {
		return Response{}, helper.NewError("gemini generate", fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(respBody)))
	}

	var result struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
			FinishReason string `json:"finishReason"`
		} `json:"candidates"`
		ModelVersion string `json:"modelVersion"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return Response{}, helper.NewError("parse response", err)
	}

	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return Response{}, helper.NewError("gemini generate", fmt.Errorf("empty response"))
	}

	content := result.Candidates[0].Content.Parts[0].Text
	modelName := g.model
	if result.ModelVersion != "" {
		modelName = result.ModelVersion
	}

	if result.Candidates[0].FinishReason == "MAX_TOKENS" {
		g.log.Warn("Gemini response truncated", slog.String("model", modelName), slog.Int("max_tokens", maxTokens))
	}

	g.log.Debug("Gemini response", slog.String("model", modelName), slog.Int("content_length", len(content)))

	return Response{
		Content:     content,
		Model:       modelName,
		RawResponse: string(respBody),
	}, nil
}
