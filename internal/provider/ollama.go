package provider

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"t2s/internal/domain"
)

var _ domain.Generator = (*Ollama)(nil)

// Ollama generates SQL through a local Ollama server's chat endpoint.
type Ollama struct {
	baseURL   string
	model     string
	maxTokens int
	client    *http.Client
}

// NewOllama creates a generator against baseURL, e.g. http://localhost:11434.
func NewOllama(baseURL, model string, maxTokens int) *Ollama {
	return &Ollama{
		baseURL:   strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		model:     model,
		maxTokens: maxTokens,
		client:    &http.Client{},
	}
}

func (o *Ollama) Name() string  { return "ollama" }
func (o *Ollama) Model() string { return o.model }

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaRequest struct {
	Model    string          `json:"model"`
	Stream   bool            `json:"stream"`
	Messages []ollamaMessage `json:"messages"`
	Options  map[string]any  `json:"options"`
}

// ollamaChunk is one line of the NDJSON stream; the non-streaming call
// returns a single object of the same shape.
type ollamaChunk struct {
	Message ollamaMessage `json:"message"`
	Done    bool          `json:"done"`
}

func (o *Ollama) payload(systemPrompt, userPrompt string, stream bool) ollamaRequest {
	options := map[string]any{"temperature": 0.1}
	if o.maxTokens > 0 {
		options["num_predict"] = o.maxTokens
	}
	return ollamaRequest{
		Model:  o.model,
		Stream: stream,
		Messages: []ollamaMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Options: options,
	}
}

func (o *Ollama) post(ctx context.Context, payload ollamaRequest) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, domain.ErrGeneration(o.Name(), "encode chat request: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return nil, domain.ErrGeneration(o.Name(), "create chat request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, domain.ErrGeneration(o.Name(), "%v", err)
	}
	if resp.StatusCode >= 400 {
		defer resp.Body.Close() //nolint:errcheck
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, domain.ErrGeneration(o.Name(), "Ollama API error %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	return resp, nil
}

// Generate requests the complete response in one call and returns the
// trimmed text.
func (o *Ollama) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	resp, err := o.post(ctx, o.payload(systemPrompt, userPrompt, false))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close() //nolint:errcheck

	var out ollamaChunk
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", domain.ErrGeneration(o.Name(), "decode chat response: %v", err)
	}
	return strings.TrimSpace(out.Message.Content), nil
}

// GenerateStream forwards fragments from Ollama's NDJSON stream. Blank or
// unparseable lines are skipped and a done marker ends the stream.
func (o *Ollama) GenerateStream(ctx context.Context, systemPrompt, userPrompt string) (<-chan string, <-chan error) {
	chunks := make(chan string)
	errc := make(chan error, 1)

	go func() {
		defer close(errc)
		defer close(chunks)

		resp, err := o.post(ctx, o.payload(systemPrompt, userPrompt, true))
		if err != nil {
			errc <- err
			return
		}
		defer resp.Body.Close() //nolint:errcheck

		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			line := bytes.TrimSpace(scanner.Bytes())
			if len(line) == 0 {
				continue
			}
			var chunk ollamaChunk
			if err := json.Unmarshal(line, &chunk); err != nil {
				continue
			}
			if chunk.Done {
				return
			}
			if chunk.Message.Content == "" {
				continue
			}
			select {
			case chunks <- chunk.Message.Content:
			case <-ctx.Done():
				errc <- domain.ErrGeneration(o.Name(), "stream canceled: %v", ctx.Err())
				return
			}
		}
		if err := scanner.Err(); err != nil {
			errc <- domain.ErrGeneration(o.Name(), "stream interrupted: %v", err)
		}
	}()

	return chunks, errc
}
