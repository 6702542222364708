package oracle

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/siherrmann/eventer/helper"
	"golang.org/x/time/rate"
)

// Provider is an external text generation service.
// Replies are untrusted and must be validated by the caller.
type Provider interface {
	Name() string
	Available() bool
	Generate(ctx context.Context, req Request) (Response, error)
}

// Request is a prompt for a provider.
type Request struct {
	SystemPrompt string
	UserPrompt   string
	MaxTokens    int
}

// Response is what a provider returned.
type Response struct {
	Content     string
	Model       string
	RawResponse string
}

// Func adapts a plain function to the Provider interface.
type Func func(ctx context.Context, req Request) (Response, error)

func (f Func) Name() string    { return "func" }
func (f Func) Available() bool { return f != nil }

func (f Func) Generate(ctx context.Context, req Request) (Response, error) {
	if f == nil {
		return Response{}, helper.NewError("generate", fmt.Errorf("no function configured"))
	}
	return f(ctx, req)
}

// Text returns a provider that always replies with content.
func Text(content string) Func {
	return func(ctx context.Context, req Request) (Response, error) {
		return Response{Content: content, Model: "static"}, nil
	}
}

// Failing returns a provider that always fails with err.
func Failing(err error) Func {
	return func(ctx context.Context, req Request) (Response, error) {
		return Response{}, err
	}
}

// Limited throttles calls to a provider.
type Limited struct {
	Provider
	limiter *rate.Limiter
}

// NewLimited allows one request per interval with no burst.
func NewLimited(p Provider, interval time.Duration) *Limited {
	return &Limited{
		Provider: p,
		limiter:  rate.NewLimiter(rate.Every(interval), 1),
	}
}

func (l *Limited) Generate(ctx context.Context, req Request) (Response, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return Response{}, helper.NewError("rate limit", err)
	}
	return l.Provider.Generate(ctx, req)
}

// New creates a provider by name. Supported names are gemini and ollama.
func New(name, apiKey, model, endpoint string, timeout time.Duration, logger *slog.Logger) (Provider, error) {
	switch strings.ToLower(name) {
	case "gemini":
		return NewGemini(apiKey, model, endpoint, timeout, logger), nil
	case "ollama":
		return NewOllama(endpoint, model, timeout, logger), nil
	default:
		return nil, helper.NewError("create provider", fmt.Errorf("unknown provider %q", name))
	}
}
