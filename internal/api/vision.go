package api

import (
	"codenames-stats/internal/config"
	"codenames-stats/internal/constants"
	"codenames-stats/internal/domain"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
)

const anthropicVersion = "2023-06-01"

var ErrExtractionDisabled = errors.New("screenshot extraction is not configured")

// ExtractionPrompt tells the model how to read a finished Codenames game screen.
const ExtractionPrompt = `This is a screenshot of a finished Codenames game. Extract both teams and the winner.

Reading the winner:
- Blue is the panel on the left, Red the panel on the right.
- The screenshot is taken by a player on the losing team, so the team whose Operatives and Spymasters sections list player names lost.
- The team whose Operatives and Spymasters sections are empty won.
- An "OPPOSING TEAM WINS!" banner means the team without listed players won.
- A "YOUR TEAM WINS!" banner means the team with listed players won.

Respond with a single JSON object and nothing else:
{
  "blue_team": {"operatives": ["name"], "spymasters": ["name"]},
  "red_team": {"operatives": ["name"], "spymasters": ["name"]},
  "winner": "Blue"
}
The winner is exactly "Blue" or "Red".`

// VisionClient turns game screenshots into payloads via the Anthropic Messages API.
type VisionClient struct {
	apiKey      string
	baseURL     string
	model       string
	client      *fasthttp.Client
	logger      zerolog.Logger
	rateLimitMu sync.RWMutex
	rateLimit   RateLimitInfo
}

type RateLimitInfo struct {
	RequestsLimit     int       `json:"requests_limit"`
	RequestsRemaining int       `json:"requests_remaining"`
	TokensRemaining   int       `json:"tokens_remaining"`
	ResetAt           time.Time `json:"reset_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func NewVisionClient(cfg *config.Config, logger zerolog.Logger) *VisionClient {
	return &VisionClient{
		apiKey:  cfg.AnthropicAPIKey,
		baseURL: strings.TrimRight(cfg.AnthropicBaseURL, "/"),
		model:   cfg.AnthropicModel,
		client: &fasthttp.Client{
			MaxConnsPerHost:     16,
			ReadTimeout:         constants.ExternalAPITimeout,
			WriteTimeout:        10 * time.Second,
			MaxIdleConnDuration: 1 * time.Minute,
			MaxResponseBodySize: constants.MaxImageBytes,
		},
		logger: logger,
	}
}

func (c *VisionClient) Enabled() bool {
	return c.apiKey != ""
}

func (c *VisionClient) GetRateLimitInfo() RateLimitInfo {
	c.rateLimitMu.RLock()
	defer c.rateLimitMu.RUnlock()
	return c.rateLimit
}

func (c *VisionClient) updateRateLimit(resp *fasthttp.Response) {
	c.rateLimitMu.Lock()
	defer c.rateLimitMu.Unlock()

	if limit := string(resp.Header.Peek("Anthropic-Ratelimit-Requests-Limit")); limit != "" {
		if val, err := strconv.Atoi(limit); err == nil {
			c.rateLimit.RequestsLimit = val
		}
	}
	if remaining := string(resp.Header.Peek("Anthropic-Ratelimit-Requests-Remaining")); remaining != "" {
		if val, err := strconv.Atoi(remaining); err == nil {
			c.rateLimit.RequestsRemaining = val
		}
	}
	if tokens := string(resp.Header.Peek("Anthropic-Ratelimit-Tokens-Remaining")); tokens != "" {
		if val, err := strconv.Atoi(tokens); err == nil {
			c.rateLimit.TokensRemaining = val
		}
	}
	if reset := string(resp.Header.Peek("Anthropic-Ratelimit-Requests-Reset")); reset != "" {
		if val, err := time.Parse(time.RFC3339, reset); err == nil {
			c.rateLimit.ResetAt = val
		}
	}
	c.rateLimit.UpdatedAt = time.Now()
}

type messageRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string         `json:"role"`
	Content []contentBlock `json:"content"`
}

type contentBlock struct {
	Type   string       `json:"type"`
	Text   string       `json:"text,omitempty"`
	Source *imageSource `json:"source,omitempty"`
}

type imageSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

type messageResponse struct {
	Content []contentBlock `json:"content"`
}

type apiError struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// ExtractGame sends the screenshot to the model and decodes the game it reads.
// The payload is not validated here.
func (c *VisionClient) ExtractGame(ctx context.Context, image []byte, mediaType string) (domain.GamePayload, error) {
	if !c.Enabled() {
		return domain.GamePayload{}, ErrExtractionDisabled
	}
	if mediaType == "" {
		mediaType = "image/jpeg"
	}

	body, err := json.Marshal(messageRequest{
		Model:     c.model,
		MaxTokens: constants.ExtractionMaxTokens,
		Messages: []message{{
			Role: "user",
			Content: []contentBlock{
				{Type: "image", Source: &imageSource{Type: "base64", MediaType: mediaType, Data: base64.StdEncoding.EncodeToString(image)}},
				{Type: "text", Text: ExtractionPrompt},
			},
		}},
	})
	if err != nil {
		return domain.GamePayload{}, fmt.Errorf("failed to encode extraction request: %w", err)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL + "/v1/messages")
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)
	req.SetBody(body)

	start := time.Now()
	if err := c.do(ctx, req, resp); err != nil {
		return domain.GamePayload{}, fmt.Errorf("extraction request failed: %w", err)
	}
	c.updateRateLimit(resp)

	if resp.StatusCode() != fasthttp.StatusOK {
		var apiErr apiError
		if json.Unmarshal(resp.Body(), &apiErr) == nil && apiErr.Error.Message != "" {
			return domain.GamePayload{}, fmt.Errorf("extraction API error %d: %s", resp.StatusCode(), apiErr.Error.Message)
		}
		return domain.GamePayload{}, fmt.Errorf("extraction API error: %d", resp.StatusCode())
	}

	var msg messageResponse
	if err := json.Unmarshal(resp.Body(), &msg); err != nil {
		return domain.GamePayload{}, fmt.Errorf("failed to decode extraction response: %w", err)
	}

	var text strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	payload, err := ParseGameJSON(text.String())
	if err != nil {
		c.logger.Warn().Err(err).Str("response", text.String()).Msg("unreadable extraction response")
		return domain.GamePayload{}, err
	}

	c.logger.Info().
		Dur("duration", time.Since(start)).
		Str("winner", string(payload.Winner)).
		Int("requests_remaining", c.GetRateLimitInfo().RequestsRemaining).
		Msg("game extracted from screenshot")
	return payload, nil
}

// Download fetches an image and returns its bytes and content type.
func (c *VisionClient) Download(ctx context.Context, url string) ([]byte, string, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodGet)

	if err := c.do(ctx, req, resp); err != nil {
		return nil, "", fmt.Errorf("download failed: %w", err)
	}
	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, "", fmt.Errorf("download failed: status %d", resp.StatusCode())
	}

	data := append([]byte(nil), resp.Body()...)
	return data, string(resp.Header.ContentType()), nil
}

func (c *VisionClient) do(ctx context.Context, req *fasthttp.Request, resp *fasthttp.Response) error {
	if deadline, ok := ctx.Deadline(); ok {
		return c.client.DoDeadline(req, resp, deadline)
	}
	return c.client.DoTimeout(req, resp, constants.ExternalAPITimeout)
}

// ParseGameJSON decodes a model reply, tolerating markdown code fences and
// prose around the JSON object. Missing teams or role lists are rejected.
func ParseGameJSON(text string) (domain.GamePayload, error) {
	text = strings.TrimSpace(text)
	if i := strings.Index(text, "```"); i >= 0 {
		rest := text[i+3:]
		rest = strings.TrimPrefix(rest, "json")
		if j := strings.Index(rest, "```"); j >= 0 {
			rest = rest[:j]
		}
		text = strings.TrimSpace(rest)
	}

	start, end := strings.Index(text, "{"), strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return domain.GamePayload{}, fmt.Errorf("%w: no JSON object in extraction response", domain.ErrInvalidPayload)
	}

	return domain.DecodePayload([]byte(text[start:end+1]))
}
