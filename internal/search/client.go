// Package search asks Gemini, with its Google Maps and Google Search tools
// enabled, for local businesses in an industry and city and decodes the JSON
// array it returns into lead records.
package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"midnightscout/internal/leads"
	"midnightscout/internal/logging"

	"github.com/google/uuid"
)

var (
	// ErrMissingCredential is returned before any network call when no API key is configured.
	ErrMissingCredential = errors.New("API key is missing")
	// ErrEmptyResponse is returned when the model reply carries no text.
	ErrEmptyResponse = errors.New("empty response from Gemini")
	// ErrInvalidPayload wraps JSON decoding failures of the sanitized reply.
	ErrInvalidPayload = errors.New("invalid lead payload")
)

// Tool names a built-in model capability the request enables.
type Tool string

const (
	ToolGoogleMaps   Tool = "google_maps"
	ToolGoogleSearch Tool = "google_search"
)

// Request is a single, non-streamed generation request.
type Request struct {
	Model  string
	Prompt string
	Tools  []Tool
}

// Response is the model reply reduced to what a search needs.
type Response struct {
	Text             string
	GroundingSources []string
}

// Generator performs one generation call.
type Generator interface {
	Generate(ctx context.Context, req Request) (*Response, error)
}

// GeneratorFactory builds a Generator for an API key.
type GeneratorFactory func(ctx context.Context, apiKey string) (Generator, error)

// Searcher is what the shell and CLI depend on.
type Searcher interface {
	Search(ctx context.Context, industry, city string) ([]leads.Business, error)
}

// Client runs lead searches. The zero value is not usable; see NewClient.
type Client struct {
	apiKey string
	model  string
	newGen GeneratorFactory
}

// Option configures a Client.
type Option func(*Client)

// WithModel overrides the Gemini model name.
func WithModel(model string) Option {
	return func(c *Client) {
		if strings.TrimSpace(model) != "" {
			c.model = model
		}
	}
}

// WithGeneratorFactory replaces the genai-backed generator, mainly for tests.
func WithGeneratorFactory(f GeneratorFactory) Option {
	return func(c *Client) { c.newGen = f }
}

// DefaultModel is used when no model option is given.
const DefaultModel = "gemini-2.5-flash"

// NewClient creates a search client for apiKey. An empty key is accepted;
// every Search then fails with ErrMissingCredential.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey: strings.TrimSpace(apiKey),
		model:  DefaultModel,
		newGen: NewGenAIGenerator,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithAPIKey returns a copy of the client using a different key.
func (c *Client) WithAPIKey(apiKey string) *Client {
	cp := *c
	cp.apiKey = strings.TrimSpace(apiKey)
	return &cp
}

// HasCredential reports whether an API key is configured.
func (c *Client) HasCredential() bool {
	return c.apiKey != ""
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.model
}

// Search asks the model for leads in industry and city. Failures are logged
// before they are returned.
func (c *Client) Search(ctx context.Context, industry, city string) ([]leads.Business, error) {
	log := logging.WithRequestID(logging.CategorySearch, uuid.NewString())
	log.Info("search started: industry=%q city=%q model=%s", industry, city, c.model)
	timer := logging.StartTimer(log, "gemini search")

	bs, err := c.search(ctx, industry, city, log)
	timer.Stop()
	if err != nil {
		log.Error("Gemini search error: %v", err)
		return nil, err
	}
	log.Info("search finished: %d businesses", len(bs))
	return bs, nil
}

func (c *Client) search(ctx context.Context, industry, city string, log *logging.Logger) ([]leads.Business, error) {
	if c.apiKey == "" {
		return nil, ErrMissingCredential
	}

	gen, err := c.newGen(ctx, c.apiKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	resp, err := gen.Generate(ctx, Request{
		Model:  c.model,
		Prompt: BuildPrompt(industry, city),
		Tools:  []Tool{ToolGoogleMaps, ToolGoogleSearch},
	})
	if err != nil {
		return nil, fmt.Errorf("gemini request failed: %w", err)
	}
	if resp == nil || strings.TrimSpace(resp.Text) == "" {
		return nil, ErrEmptyResponse
	}
	for _, src := range resp.GroundingSources {
		log.Debug("grounding source: %s", src)
	}

	bs, err := Decode(resp.Text)
	if err != nil {
		log.Debug("unparseable reply: %s", resp.Text)
		return nil, err
	}
	return bs, nil
}

// Decode sanitizes a model reply and parses it as a JSON array of businesses.
// Only JSON syntax and the array shape are checked.
func Decode(text string) ([]leads.Business, error) {
	var bs []leads.Business
	if err := json.Unmarshal([]byte(Sanitize(text)), &bs); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}
	if bs == nil {
		bs = []leads.Business{}
	}
	return bs, nil
}
