package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"

	"esg-assess/internal/config"
)

// ErrLLMDisabled is returned by Generate when no model is configured
var ErrLLMDisabled = errors.New("llm is disabled")

// ErrLLMUnavailable wraps every failure to get an answer from the model
var ErrLLMUnavailable = errors.New("llm unavailable")

// LLMService talks to an Ollama compatible /api/generate endpoint
type LLMService struct {
	baseURL    string
	model      string
	enabled    bool
	maxRetries int
	client     *http.Client
	newBackOff func() backoff.BackOff
	// pulling is set while a model download is in flight
	pulling    atomic.Bool
}

// NewLLMService creates a new LLM service
func NewLLMService(cfg config.LLMConfig) *LLMService {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	model := cfg.Model
	if model == "" {
		model = "llama3"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &LLMService{
		baseURL:    baseURL,
		model:      model,
		enabled:    cfg.Enabled,
		maxRetries: max(cfg.MaxRetries, 0),
		client:     &http.Client{Timeout: timeout},
		newBackOff: func() backoff.BackOff { return backoff.NewExponentialBackOff() },
	}
}

// Enabled reports whether Generate will call the model
func (s *LLMService) Enabled() bool {
	return s.enabled
}

type ollamaRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type ollamaResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

var emphasisStripper = strings.NewReplacer("**", "", "*", "", "__", "")

// Generate sends the prompt and returns the answer without markdown emphasis.
// Network failures and 5xx answers are retried with exponential backoff.
func (s *LLMService) Generate(ctx context.Context, prompt string) (string, error) {
	if !s.enabled {
		return "", ErrLLMDisabled
	}

	body, err := json.Marshal(ollamaRequest{Model: s.model, Prompt: prompt, Stream: false})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	var answer string
	op := func() error {
		text, err := s.generateOnce(ctx, body)
		if err != nil {
			return err
		}
		answer = text
		return nil
	}

	b := backoff.WithContext(
		backoff.WithMaxRetries(s.newBackOff(), uint64(s.maxRetries)),
		ctx,
	)
	notify := func(err error, wait time.Duration) {
		slog.Warn("LLM request failed, retrying", "error", err, "retry_in", wait)
	}
	if err := backoff.RetryNotify(op, b, notify); err != nil {
		return "", fmt.Errorf("%w: %v", ErrLLMUnavailable, err)
	}

	return strings.TrimSpace(emphasisStripper.Replace(answer)), nil
}

func (s *LLMService) generateOnce(ctx context.Context, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", backoff.Permanent(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			slog.Error("Failed to close response body", "error", err)
		}
	}(resp.Body)

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		err := fmt.Errorf("llm returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(bodyBytes)))

		if resp.StatusCode == http.StatusNotFound && strings.Contains(string(bodyBytes), "model") && s.pulling.CompareAndSwap(false, true) {
			go func() {
				defer s.pulling.Store(false)
				s.PullModel(context.WithoutCancel(ctx))
			}()
		}
		if resp.StatusCode < http.StatusInternalServerError {
			return "", backoff.Permanent(err)
		}
		return "", err
	}

	var out ollamaResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", backoff.Permanent(fmt.Errorf("failed to decode LLM response: %w", err))
	}
	if strings.TrimSpace(out.Response) == "" {
		return "", backoff.Permanent(errors.New("empty LLM response"))
	}
	return out.Response, nil
}

// PullModel asks the server to download the configured model
func (s *LLMService) PullModel(ctx context.Context) {
	slog.Info("Attempting to pull LLM model", "model", s.model)

	jsonData, _ := json.Marshal(map[string]string{"name": s.model})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/api/pull", bytes.NewReader(jsonData))
	if err != nil {
		slog.Error("Failed to build model pull request", "error", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		slog.Error("Failed to trigger model pull", "error", err)
		return
	}
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			slog.Error("Failed to close response body", "error", err)
		}
	}(resp.Body)

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		slog.Error("Failed to pull model", "status", resp.StatusCode, "body", string(bodyBytes))
		return
	}

	slog.Info("Model pull triggered successfully", "model", s.model)
}
