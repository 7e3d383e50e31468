package maskedlm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/avast/retry-go/v4"
)

// HTTPEngineConfig configures an HTTP-backed masked-LM Engine.
type HTTPEngineConfig struct {
	BaseURL    string
	Timeout    time.Duration
	MaxRetries uint
	RetryDelay time.Duration
}

// HTTPEngine calls a remote masked-LM inference endpoint that accepts
// the three integer input sequences as JSON and returns a logits
// tensor of shape [1, maxLen, vocabSize]. This is one valid concrete
// binding for the Engine interface; any tensor-runtime process
// speaking the same wire contract works.
type HTTPEngine struct {
	baseURL    string
	client     *http.Client
	maxRetries uint
	retryDelay time.Duration
	ready      atomic.Bool
}

// NewHTTPEngine builds an HTTPEngine. The engine starts not-ready;
// call MarkReady once a health probe succeeds (mirrors the teacher's
// pattern of only serving traffic after an explicit readiness signal).
func NewHTTPEngine(cfg HTTPEngineConfig) *HTTPEngine {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = 500 * time.Millisecond
	}
	return &HTTPEngine{
		baseURL:    cfg.BaseURL,
		client:     &http.Client{Timeout: cfg.Timeout},
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
	}
}

// MarkReady flips the engine into the ready state; MarkNotReady flips
// it back, e.g. after a health-check failure.
func (e *HTTPEngine) MarkReady()    { e.ready.Store(true) }
func (e *HTTPEngine) MarkNotReady() { e.ready.Store(false) }

// Ready reports the last-known readiness state.
func (e *HTTPEngine) Ready() bool { return e.ready.Load() }

type inferRequest struct {
	InputIDs      []int `json:"input_ids"`
	AttentionMask []int `json:"attention_mask"`
	TokenTypeIDs  []int `json:"token_type_ids"`
}

type inferResponse struct {
	Logits [][]float32 `json:"logits"`
}

// Infer POSTs the input triple to baseURL+"/infer" and retries
// transient failures, mirroring the teacher's retry-go usage for
// polling external service readiness (internal/defra/docker.go).
func (e *HTTPEngine) Infer(ctx context.Context, inputIDs, attentionMask, tokenTypeIDs []int) ([][]float32, error) {
	if !e.Ready() {
		return nil, fmt.Errorf("maskedlm: engine not ready")
	}

	reqBody, err := json.Marshal(inferRequest{
		InputIDs:      inputIDs,
		AttentionMask: attentionMask,
		TokenTypeIDs:  tokenTypeIDs,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal infer request: %w", err)
	}

	var out inferResponse
	err = retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/infer", bytes.NewReader(reqBody))
			if err != nil {
				return retry.Unrecoverable(err)
			}
			req.Header.Set("Content-Type", "application/json")

			resp, err := e.client.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			body, err := io.ReadAll(resp.Body)
			if err != nil {
				return err
			}
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("maskedlm: inference error (status %d): %s", resp.StatusCode, string(body))
			}
			if err := json.Unmarshal(body, &out); err != nil {
				return retry.Unrecoverable(fmt.Errorf("unmarshal infer response: %w", err))
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(e.maxRetries),
		retry.Delay(e.retryDelay),
	)
	if err != nil {
		return nil, err
	}
	return out.Logits, nil
}
