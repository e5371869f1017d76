package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"pricelens/models"
)

// InsightService turns a finished comparison into a short natural
// language summary via an OpenAI-compatible chat completion endpoint.
// A missing API key is a configuration error; every other failure is
// non-fatal and callers fall back to the raw comparison data.
type InsightService struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

// NewInsightService reads its configuration from the environment.
// OPENAI_API_KEY must be set before GenerateInsight is called.
func NewInsightService() *InsightService {
	baseURL := os.Getenv("OPENAI_BASE_URL")
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	model := os.Getenv("OPENAI_MODEL")
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &InsightService{
		apiKey:  os.Getenv("OPENAI_API_KEY"),
		baseURL: baseURL,
		model:   model,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// BuildSummary condenses a comparison into the structured summary sent
// to the model. Exported so the scheduler can log the same numbers.
func BuildSummary(result *models.ComparisonResult) models.InsightSummary {
	summary := models.InsightSummary{
		Brand:         result.BrandName,
		Product:       result.ProductName,
		TotalEntries:  len(result.Entries),
		PriceByRegion: make(map[string]float64, len(result.Entries)),
	}

	first := true
	var total float64
	for code, entry := range result.Entries {
		summary.PriceByRegion[code] = entry.Price
		total += entry.Price
		if first || entry.Price < summary.MinPrice {
			summary.MinPrice = entry.Price
			summary.CheapestRegion = code
		}
		if first || entry.Price > summary.MaxPrice {
			summary.MaxPrice = entry.Price
		}
		first = false
	}
	if summary.TotalEntries > 0 {
		summary.AvgPrice = total / float64(summary.TotalEntries)
	}
	summary.PriceDifference = summary.MaxPrice - summary.MinPrice
	return summary
}

// GenerateInsight asks the model for a buyer-facing summary of the
// comparison. Prices in the summary are nominal values in each region's
// own currency; the prompt says so to keep the model from converting.
func (s *InsightService) GenerateInsight(ctx context.Context, result *models.ComparisonResult) (string, error) {
	if s.apiKey == "" {
		return "", fmt.Errorf("OPENAI_API_KEY is not configured")
	}

	summary := BuildSummary(result)
	summaryJSON, err := json.Marshal(summary)
	if err != nil {
		return "", fmt.Errorf("failed to serialize summary: %v", err)
	}

	prompt := fmt.Sprintf(
		"You are a shopping assistant. Given this regional price summary for %q by %s, "+
			"write 2-3 sentences for a buyer: where it is cheapest, how large the spread is, "+
			"and anything notable. Prices are in each region's local currency and are NOT "+
			"converted to a common one. Summary: %s",
		result.ProductName, result.BrandName, string(summaryJSON))

	body, err := json.Marshal(chatRequest{
		Model: s.model,
		Messages: []chatMessage{
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to build request: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("insight request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("insight request returned status %d", resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("failed to decode insight response: %v", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("insight response contained no choices")
	}

	log.Printf("Generated insight for %s / %s", result.BrandName, result.ProductName)
	return parsed.Choices[0].Message.Content, nil
}
