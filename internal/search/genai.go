package search

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// =============================================================================
// GOOGLE GENAI GENERATOR
// =============================================================================

// GenAIGenerator calls Gemini through the official genai SDK.
type GenAIGenerator struct {
	client *genai.Client
}

// NewGenAIGenerator creates a Gemini API generator. It does not touch the network.
func NewGenAIGenerator(ctx context.Context, apiKey string) (Generator, error) {
	if apiKey == "" {
		return nil, ErrMissingCredential
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &GenAIGenerator{client: client}, nil
}

// Generate sends one GenerateContent request. Tools rule out a JSON response
// MIME type, so the prompt alone asks for JSON.
func (g *GenAIGenerator) Generate(ctx context.Context, req Request) (*Response, error) {
	cfg := &genai.GenerateContentConfig{
		Tools: buildTools(req.Tools),
	}

	result, err := g.client.Models.GenerateContent(ctx, req.Model, genai.Text(req.Prompt), cfg)
	if err != nil {
		return nil, fmt.Errorf("GenAI generate failed: %w", err)
	}

	return &Response{
		Text:             result.Text(),
		GroundingSources: groundingSources(result),
	}, nil
}

func buildTools(tools []Tool) []*genai.Tool {
	out := make([]*genai.Tool, 0, len(tools))
	for _, t := range tools {
		switch t {
		case ToolGoogleMaps:
			out = append(out, &genai.Tool{GoogleMaps: &genai.GoogleMaps{}})
		case ToolGoogleSearch:
			out = append(out, &genai.Tool{GoogleSearch: &genai.GoogleSearch{}})
		}
	}
	return out
}

func groundingSources(resp *genai.GenerateContentResponse) []string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].GroundingMetadata == nil {
		return nil
	}
	var sources []string
	for _, chunk := range resp.Candidates[0].GroundingMetadata.GroundingChunks {
		if chunk != nil && chunk.Web != nil && chunk.Web.URI != "" {
			sources = append(sources, chunk.Web.URI)
		}
	}
	return sources
}
