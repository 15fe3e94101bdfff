package planner

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"google.golang.org/genai"
)

// GeminiService talks to the Gemini API. It implements Service and is
// responsible for classifying its own failures into transient vs fatal
// and for surfacing any retry delay the API suggests.
type GeminiService struct {
	client *genai.Client
	model  string
}

// NewGeminiService creates a Gemini-backed decision service.
func NewGeminiService(ctx context.Context, apiKey, model string) (*GeminiService, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiService{client: client, model: model}, nil
}

// Decide submits the context block and screenshot and returns the model's
// raw text reply.
func (g *GeminiService) Decide(ctx context.Context, contextBlock string, screenshot []byte) (string, error) {
	parts := []*genai.Part{
		genai.NewPartFromText(contextBlock),
	}
	if len(screenshot) > 0 {
		parts = append(parts, genai.NewPartFromBytes(screenshot, "image/png"))
	}

	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, cfg)
	if err != nil {
		return "", classifyGeminiError(err)
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", &ServiceError{
			Kind:    ErrFatal,
			Message: "empty response from decision service",
		}
	}
	return text, nil
}

var (
	retryInPattern    = regexp.MustCompile(`retry in (\d+\.?\d*)s`)
	retryDelayPattern = regexp.MustCompile(`retryDelay[^\d]*(\d+\.?\d*)s`)
)

// classifyGeminiError maps an API failure to the ServiceError contract.
// 429 and 5xx are transient; a suggested retry delay is extracted from the
// error text when the API embeds one.
func classifyGeminiError(err error) *ServiceError {
	msg := err.Error()

	kind := ErrFatal
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == http.StatusTooManyRequests:
			kind = ErrTransient
		case apiErr.Code >= 500:
			kind = ErrTransient
		}
	} else if strings.Contains(msg, "429") ||
		strings.Contains(strings.ToLower(msg), "quota") ||
		strings.Contains(strings.ToLower(msg), "rate limit") {
		// The SDK occasionally wraps transport errors without an APIError.
		kind = ErrTransient
	}

	return &ServiceError{
		Kind:       kind,
		RetryAfter: extractRetryDelay(msg),
		Message:    "decision service call failed",
		Cause:      err,
	}
}

// extractRetryDelay pulls a suggested delay out of an error message.
// Returns 0 when no delay is present.
func extractRetryDelay(msg string) time.Duration {
	for _, pattern := range []*regexp.Regexp{retryInPattern, retryDelayPattern} {
		if m := pattern.FindStringSubmatch(msg); m != nil {
			if secs, err := strconv.ParseFloat(m[1], 64); err == nil {
				return time.Duration(secs * float64(time.Second))
			}
		}
	}
	return 0
}
