// Package menugen fills empty meal plan slots using an external generation
// service.
package menugen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Slot identifies one meal on the calendar.
type Slot struct {
	Date     string `json:"date"` // YYYY-MM-DD
	MealType string `json:"meal_type"`
}

// CatalogItem is one entree the service may choose from. The score lets
// the service bias toward well-liked meals.
type CatalogItem struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	Genre           string `json:"genre"`
	PopularityScore int    `json:"popularity_score"`
}

// Request is the full prompt context sent to the generation service.
type Request struct {
	Catalog             []CatalogItem  `json:"catalog"`
	Slots               []Slot         `json:"slots"`
	DietaryInstructions string         `json:"dietary_instructions"`
	GenreWeights        map[string]int `json:"genre_weights"`
	ExcludeNames        []string       `json:"exclude_names"`
}

// Assignment is one proposed slot fill.
type Assignment struct {
	Date         string `json:"date"`
	MealType     string `json:"meal_type"`
	MenuItemName string `json:"menu_item_name"`
}

// Client produces meal assignments for a set of slots.
type Client interface {
	Generate(ctx context.Context, req Request) ([]Assignment, error)
}

// HTTPClient talks to a generation service over HTTP. The service receives
// the request as JSON and responds with a JSON array of assignments.
type HTTPClient struct {
	baseURL string
	client  *http.Client
}

func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

func (c *HTTPClient) Generate(ctx context.Context, req Request) ([]Assignment, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal generation request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build generation request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("generation service request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("generation service returned status %d", resp.StatusCode)
	}

	var assignments []Assignment
	if err := json.NewDecoder(resp.Body).Decode(&assignments); err != nil {
		return nil, fmt.Errorf("decode generation response: %w", err)
	}
	return assignments, nil
}
