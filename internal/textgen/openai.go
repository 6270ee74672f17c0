package textgen

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const DefaultBaseURL = "https://api.openai.com"

// OpenAI is a chat-completions client.
type OpenAI struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

func NewOpenAI(client *http.Client, baseURL, apiKey string) *OpenAI {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	return &OpenAI{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  strings.TrimSpace(apiKey),
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model           string        `json:"model"`
	Messages        []chatMessage `json:"messages"`
	Temperature     float64       `json:"temperature"`
	MaxTokens       int           `json:"max_tokens,omitempty"`
	PresencePenalty float64       `json:"presence_penalty,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}

// Generate sends req as a single user message and returns the raw content of
// the first choice.
func (o *OpenAI) Generate(ctx context.Context, req Request) (string, error) {
	endpoint := o.baseURL + "/v1/chat/completions"
	buf, err := json.Marshal(chatRequest{
		Model:           req.Model,
		Messages:        []chatMessage{{Role: "user", Content: req.Prompt}},
		Temperature:     req.Temperature,
		MaxTokens:       req.MaxTokens,
		PresencePenalty: req.PresencePenalty,
	})
	if err != nil {
		return "", fmt.Errorf("encoding request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(buf))
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if o.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+o.apiKey)
	}

	resp, err := o.client.Do(httpReq)
	if err != nil {
		return "", &Error{Class: ClassTransient, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		return "", classify(resp.StatusCode, body)
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", &Error{Class: ClassTransient, Status: resp.StatusCode, Err: fmt.Errorf("decoding response: %w", err)}
	}
	if len(out.Choices) == 0 {
		return "", &Error{Class: ClassTransient, Status: resp.StatusCode, Err: errors.New("empty completion")}
	}
	return strings.TrimSpace(out.Choices[0].Message.Content), nil
}

// classify maps an error response to a Class. Quota exhaustion arrives as a
// 429 too, so the error code is checked before the status.
func classify(status int, body []byte) *Error {
	var ae apiError
	_ = json.Unmarshal(body, &ae)

	msg := strings.TrimSpace(ae.Error.Message)
	if msg == "" {
		msg = strings.TrimSpace(string(body))
	}
	e := &Error{Class: ClassTransient, Status: status, Err: errors.New(msg)}

	code := strings.ToLower(ae.Error.Code + " " + ae.Error.Type)
	switch {
	case strings.Contains(code, "insufficient_quota"), strings.Contains(code, "billing"):
		e.Class = ClassQuota
	case strings.Contains(code, "invalid_api_key"),
		status == http.StatusUnauthorized,
		status == http.StatusForbidden:
		e.Class = ClassAuth
	case status == http.StatusTooManyRequests:
		e.Class = ClassRateLimit
	}
	return e
}
