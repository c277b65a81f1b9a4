package provider

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"t2s/internal/domain"
)

var _ domain.Generator = (*Groq)(nil)

// Groq generates SQL through Groq's OpenAI-compatible chat completions
// endpoint.
type Groq struct {
	apiKey    string
	baseURL   string
	model     string
	maxTokens int
	client    *http.Client
}

// NewGroq creates a Groq generator. A missing API key fails construction
// so the misconfiguration surfaces at startup instead of mid-request.
func NewGroq(apiKey, baseURL, model string, maxTokens int) (*Groq, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("GROQ_API_KEY is missing")
	}
	if strings.TrimSpace(baseURL) == "" {
		baseURL = "https://api.groq.com"
	}
	return &Groq{
		apiKey:    strings.TrimSpace(apiKey),
		baseURL:   strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		model:     model,
		maxTokens: maxTokens,
		client:    &http.Client{},
	}, nil
}

func (g *Groq) Name() string  { return "groq" }
func (g *Groq) Model() string { return g.model }

// endpoint accepts base URLs given with or without the /openai/v1 suffix.
func (g *Groq) endpoint(path string) string {
	if strings.HasSuffix(g.baseURL, "/openai/v1") {
		return g.baseURL + path
	}
	return g.baseURL + "/openai/v1" + path
}

type groqMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type groqRequest struct {
	Model       string        `json:"model"`
	Stream      bool          `json:"stream"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Messages    []groqMessage `json:"messages"`
}

// groqChoice carries message for the one-shot call and delta for the
// streaming call.
type groqChoice struct {
	Message groqMessage `json:"message"`
	Delta   groqMessage `json:"delta"`
}

type groqResponse struct {
	Choices []groqChoice `json:"choices"`
}

func (g *Groq) payload(systemPrompt, userPrompt string, stream bool) groqRequest {
	return groqRequest{
		Model:       g.model,
		Stream:      stream,
		Temperature: 0.1,
		MaxTokens:   g.maxTokens,
		Messages: []groqMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
	}
}

func (g *Groq) post(ctx context.Context, payload groqRequest) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, domain.ErrGeneration(g.Name(), "encode chat request: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint("/chat/completions"), bytes.NewReader(body))
	if err != nil {
		return nil, domain.ErrGeneration(g.Name(), "create chat request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+g.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, domain.ErrGeneration(g.Name(), "%v", err)
	}
	if resp.StatusCode >= 400 {
		defer resp.Body.Close() //nolint:errcheck
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, domain.ErrGeneration(g.Name(), "Groq API error %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	return resp, nil
}

// Generate requests the complete response in one call and returns the
// trimmed text.
func (g *Groq) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	resp, err := g.post(ctx, g.payload(systemPrompt, userPrompt, false))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close() //nolint:errcheck

	var out groqResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", domain.ErrGeneration(g.Name(), "decode chat response: %v", err)
	}
	if len(out.Choices) == 0 {
		return "", domain.ErrGeneration(g.Name(), "empty chat response")
	}
	return strings.TrimSpace(out.Choices[0].Message.Content), nil
}

// GenerateStream forwards delta fragments from Groq's SSE stream. Lines
// that are not data events are skipped and [DONE] ends the stream.
func (g *Groq) GenerateStream(ctx context.Context, systemPrompt, userPrompt string) (<-chan string, <-chan error) {
	chunks := make(chan string)
	errc := make(chan error, 1)

	go func() {
		defer close(errc)
		defer close(chunks)

		resp, err := g.post(ctx, g.payload(systemPrompt, userPrompt, true))
		if err != nil {
			errc <- err
			return
		}
		defer resp.Body.Close() //nolint:errcheck

		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if !strings.HasPrefix(line, "data:") {
				continue
			}
			data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			if data == "[DONE]" {
				return
			}
			var chunk groqResponse
			if err := json.Unmarshal([]byte(data), &chunk); err != nil {
				continue
			}
			if len(chunk.Choices) == 0 || chunk.Choices[0].Delta.Content == "" {
				continue
			}
			select {
			case chunks <- chunk.Choices[0].Delta.Content:
			case <-ctx.Done():
				errc <- domain.ErrGeneration(g.Name(), "stream canceled: %v", ctx.Err())
				return
			}
		}
		if err := scanner.Err(); err != nil {
			errc <- domain.ErrGeneration(g.Name(), "stream interrupted: %v", err)
		}
	}()

	return chunks, errc
}
