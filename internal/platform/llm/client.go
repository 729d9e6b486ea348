// Package llm wraps the external text-generation collaborator used to
// summarize patient risk factors. The real client speaks a chat-completion
// HTTP API; every failure mode (missing key, timeout, non-2xx, unparsable
// body) degrades to the deterministic fallback in fallback.go, never to a
// request error.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// PatientFacts is the bounded slice of patient data shared with the
// collaborator.
type PatientFacts struct {
	PrimaryDiagnosis string
	ActiveProblems   []string
	Medications      []string
	Allergies        []string
	CodeStatus       string
}

// Summary is the structured response expected from the collaborator.
type Summary struct {
	RiskFactors []string `json:"risk_factors"`
	KeyConcerns []string `json:"key_concerns"`
}

// transcriptExcerptLimit bounds how much transcript text enters the prompt.
const transcriptExcerptLimit = 1000

// Config holds client settings.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.httpClient = c }
}

// Client calls a chat-completion endpoint to summarize patient context.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewClient creates a Client with sensible defaults.
func NewClient(cfg Config, logger zerolog.Logger, opts ...Option) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	c := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Reply   string `json:"reply"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		Text string `json:"text"`
	} `json:"choices"`
}

// SummarizePatientContext asks the collaborator for risk factors and key
// concerns. The second return value reports whether a remote call was made.
// The returned Summary is always usable: any failure falls back to
// FallbackSummary.
func (c *Client) SummarizePatientContext(ctx context.Context, facts PatientFacts, transcript string) (Summary, bool) {
	if c.cfg.APIKey == "" {
		return FallbackSummary(facts), false
	}

	content, err := c.complete(ctx, buildPrompt(facts, transcript))
	if err != nil {
		c.logger.Warn().Err(err).Msg("summarization call failed, using deterministic fallback")
		return FallbackSummary(facts), true
	}

	summary, ok := parseSummary(content)
	if !ok {
		c.logger.Warn().Msg("summarization response unparsable, using deterministic fallback")
		return FallbackSummary(facts), true
	}
	return summary, true
}

func (c *Client) complete(ctx context.Context, prompt string) (string, error) {
	payload := chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: "You are a clinical decision support assistant specializing in oncology. Provide concise, actionable analysis."},
			{Role: "user", Content: prompt},
		},
		Temperature: 0.3,
		MaxTokens:   500,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := strings.TrimSuffix(c.cfg.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("POST %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("completion endpoint returned status %d", resp.StatusCode)
	}

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var cr chatResponse
	if err := json.Unmarshal(respBody, &cr); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(cr.Choices) > 0 {
		if cr.Choices[0].Message.Content != "" {
			return cr.Choices[0].Message.Content, nil
		}
		if cr.Choices[0].Text != "" {
			return cr.Choices[0].Text, nil
		}
	}
	if cr.Reply != "" {
		return cr.Reply, nil
	}
	return "", fmt.Errorf("response contained no completion text")
}

func buildPrompt(facts PatientFacts, transcript string) string {
	excerpt := transcript
	if len(excerpt) > transcriptExcerptLimit {
		excerpt = excerpt[:transcriptExcerptLimit]
	}

	diagnosis := facts.PrimaryDiagnosis
	if diagnosis == "" {
		diagnosis = "Unknown"
	}
	codeStatus := facts.CodeStatus
	if codeStatus == "" {
		codeStatus = "Unknown"
	}

	var b strings.Builder
	b.WriteString("Analyze this patient data and session transcript.\n")
	b.WriteString("Identify key risk factors and clinical concerns.\n\n")
	b.WriteString("Patient Data:\n")
	fmt.Fprintf(&b, "- Primary Diagnosis: %s\n", diagnosis)
	fmt.Fprintf(&b, "- Active Problems: %s\n", strings.Join(facts.ActiveProblems, ", "))
	fmt.Fprintf(&b, "- Medications: %s\n", strings.Join(facts.Medications, ", "))
	fmt.Fprintf(&b, "- Allergies: %s\n", strings.Join(facts.Allergies, ", "))
	fmt.Fprintf(&b, "- Code Status: %s\n\n", codeStatus)
	b.WriteString("Session Transcript:\n")
	b.WriteString(excerpt)
	b.WriteString("\n\nRespond with a JSON object containing:\n")
	b.WriteString("- \"risk_factors\": list of identified risk factors (strings)\n")
	b.WriteString("- \"key_concerns\": list of key clinical concerns (strings)\n\n")
	b.WriteString("JSON Response:")
	return b.String()
}

// parseSummary extracts the first JSON object embedded in the completion text
// and decodes it as a Summary. Only completions that carry no decodable JSON
// object are rejected; a well-formed object with empty lists stands as the
// collaborator's answer.
func parseSummary(content string) (Summary, bool) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return Summary{}, false
	}

	var s Summary
	if err := json.Unmarshal([]byte(content[start:end+1]), &s); err != nil {
		return Summary{}, false
	}
	return s, true
}
