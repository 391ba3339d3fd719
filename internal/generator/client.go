package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/packages/param"
	openai "github.com/sashabaranov/go-openai"
)

// TextClient is the interface all generation providers satisfy.
type TextClient interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// CredentialSource supplies the generation API key at call time. Keys are
// user-supplied and can change on every login, so clients must read them
// per request and never cache.
type CredentialSource interface {
	APIKey() string
}

// FallbackText is returned when a provider call succeeds but the response
// carries no candidate text. The downstream parser will reject it, which
// surfaces the situation as a parse error rather than a transport error.
const FallbackText = "No Response from server"

// NewTextClient picks a provider by name: "gemini" (the default), the wire
// contract the mobile client was built against; "anthropic" and "openai" as
// alternates; "mock" for local development.
func NewTextClient(provider, endpoint, model string, creds CredentialSource) TextClient {
	switch provider {
	case "anthropic":
		log.Println("Generator using Anthropic API:", model)
		return NewAnthropicClient(model)
	case "openai":
		log.Println("Generator using OpenAI API:", model)
		return NewOpenAIClient(os.Getenv("OPENAI_API_KEY"), model)
	case "mock":
		log.Println("Generator using mock data")
		return NewMockClient()
	default:
		log.Println("Generator using Gemini API")
		return NewGeminiClient(endpoint, creds)
	}
}

// ── GeminiClient — primary provider ────────────────────────

const defaultGeminiEndpoint = "https://generativelanguage.googleapis.com/v1beta/models/gemini-2.0-flash:generateContent"

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []geminiCandidate `json:"candidates"`
}

type geminiCandidate struct {
	Content geminiContent `json:"content"`
}

// GeminiClient speaks the generateContent REST contract. The credential is
// passed as a query parameter on every call, read from creds at call time.
type GeminiClient struct {
	endpoint   string
	creds      CredentialSource
	httpClient *http.Client
}

func NewGeminiClient(endpoint string, creds CredentialSource) *GeminiClient {
	if endpoint == "" {
		endpoint = defaultGeminiEndpoint
	}
	return &GeminiClient{
		endpoint: endpoint,
		creds:    creds,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

func (c *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{
			{Parts: []geminiPart{{Text: prompt}}},
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	data, err := c.callWithRetry(ctx, body)
	if err != nil {
		return "", err
	}

	var resp geminiResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return FallbackText, nil
	}
	return resp.Candidates[0].Content.Parts[0].Text, nil
}

func (c *GeminiClient) callWithRetry(ctx context.Context, body []byte) ([]byte, error) {
	url := c.endpoint + "?key=" + c.creds.APIKey()

	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		if attempt > 0 {
			sleepDuration := time.Duration(1<<uint(attempt)) * time.Second
			log.Printf("Retrying Gemini API call in %v (attempt %d)", sleepDuration, attempt+1)
			select {
			case <-time.After(sleepDuration):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		data, err := c.call(ctx, url, body)
		if err == nil {
			return data, nil
		}
		lastErr = err
		log.Printf("Gemini API attempt %d failed: %v", attempt+1, err)
	}
	return nil, fmt.Errorf("gemini API failed after retries: %w", lastErr)
}

func (c *GeminiClient) call(ctx context.Context, url string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gemini API status %d: %s", resp.StatusCode, truncate(string(data), 200))
	}
	return data, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// ── AnthropicClient — alternate provider ───────────────────

type AnthropicClient struct {
	client *anthropic.Client
	model  string
}

func NewAnthropicClient(model string) *AnthropicClient {
	if model == "" {
		model = "claude-3-5-sonnet-latest"
	}
	client := anthropic.NewClient(
		option.WithAPIKey(os.Getenv("ANTHROPIC_API_KEY")),
	)
	return &AnthropicClient{client: &client, model: model}
}

func (c *AnthropicClient) Generate(ctx context.Context, prompt string) (string, error) {
	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(c.model),
		MaxTokens:   4096,
		Temperature: param.NewOpt(0.7),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic API: %w", err)
	}

	for _, block := range message.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return FallbackText, nil
}

// ── OpenAIClient — alternate provider ──────────────────────

type OpenAIClient struct {
	client *openai.Client
	model  string
}

func NewOpenAIClient(apiKey, model string) *OpenAIClient {
	if model == "" {
		model = openai.GPT4o
	}
	return &OpenAIClient{client: openai.NewClient(apiKey), model: model}
}

func (c *OpenAIClient) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai API: %w", err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return FallbackText, nil
	}
	return resp.Choices[0].Message.Content, nil
}

// ── MockClient — local development ─────────────────────────

type MockClient struct{}

func NewMockClient() *MockClient {
	return &MockClient{}
}

// Generate returns a canned response wrapped in prose, the way real model
// output tends to arrive, so the extraction path gets exercised too.
func (m *MockClient) Generate(ctx context.Context, prompt string) (string, error) {
	return "Here are your questions:\n" + mockQuizJSON + "\nGood luck!", nil
}

const mockQuizJSON = `[
  {"question":"[Mock] Which layer turns raw model output into quiz items?","options":["The router","The parser","The scheduler","The cache"],"answer":"The parser"},
  {"question":"[Mock] What does the extractor slice between?","options":["Braces","Quotes","Brackets","Parentheses"],"answer":"Brackets"},
  {"question":"[Mock] How is the score computed?","options":["Stored counter","Derived per read","Server push","Random"],"answer":"Derived per read"}
]`
