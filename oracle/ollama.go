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

const DefaultOllamaEndpoint = "http://localhost:11434"

// Ollama calls a local Ollama server. Without a model name the first
// installed model is used.
type Ollama struct {
	endpoint string
	model    string
	client   *http.Client
	log      *slog.Logger
}

// NewOllama creates an Ollama provider.
func NewOllama(endpoint, model string, timeout time.Duration, logger *slog.Logger) *Ollama {
	if endpoint == "" {
		endpoint = DefaultOllamaEndpoint
	}
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Ollama{
		endpoint: strings.TrimSuffix(endpoint, "/"),
		model:    model,
		client:   &http.Client{Timeout: timeout},
		log:      logger,
	}
}

func (o *Ollama) Name() string {
	return "ollama"
}

func (o *Ollama) Available() bool {
	return o.getModel(context.Background()) != ""
}

func (o *Ollama) getModel(ctx context.Context) string {
	if o.model != "" {
		return o.model
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.endpoint+"/api/tags", nil)
	if err != nil {
		return ""
	}
	resp, err := o.client.Do(req)
	if err != nil {
		return ""
	}
	defer resp.Body.Close()

	var result struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil || len(result.Models) == 0 {
		return ""
	}

	o.log.Info("Ollama auto-detected model", slog.String("model", result.Models[0].Name))
	return result.Models[0].Name
}

func (o *Ollama) Generate(ctx context.Context, req Request) (Response, error) {
	model := o.getModel(ctx)
	if model == "" {
		return Response{}, helper.NewError("ollama generate", fmt.Errorf("ollama not available at %s (no models)", o.endpoint))
	}

	messages := []map[string]string{}
	if req.SystemPrompt != "" {
		messages = append(messages, map[string]string{"role": "system", "content": req.SystemPrompt})
	}
	messages = append(messages, map[string]string{"role": "user", "content": req.UserPrompt})

	body := map[string]interface{}{
		"model":    model,
		"messages": messages,
		"stream":   false,
	}
	if req.MaxTokens > 0 {
		body["options"] = map[string]interface{}{"num_predict": req.MaxTokens}
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return Response{}, helper.NewError("marshal request", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, o.endpoint+"/api/chat", bytes.NewReader(jsonBody))
	if err != nil {
		return Response{}, helper.NewError("create request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	o.log.Debug("Ollama request", slog.String("model", model))

	resp, err := o.client.Do(httpReq)
	if err != nil {
		return Response{}, helper.NewError("request", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, helper.NewError("read response", err)
	}

	if resp.StatusCode != http.StatusOK {
		return Response{}, helper.NewError("ollama generate", fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(respBody)))
	}

	var result struct {
		Model   string `json:"model"`
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return Response{}, helper.NewError("parse response", err)
	}

	return Response{
		Content:     result.Message.Content,
		Model:       result.Model,
		RawResponse: string(respBody),
	}, nil
}
