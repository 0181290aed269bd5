package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"
)

// ScoringClient calls the external engine that recomputes a company's
// reputation score from its approved evidence. The algorithm lives there;
// this side only triggers it.
type ScoringClient struct {
	baseURL string
	client  *http.Client
}

func NewScoringClient() *ScoringClient {
	return &ScoringClient{
		baseURL: strings.TrimRight(os.Getenv("SCORING_URL"), "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *ScoringClient) RecomputeScore(companyID int) error {
	if c.baseURL == "" {
		return fmt.Errorf("scoring not configured (SCORING_URL)")
	}

	payload, err := json.Marshal(map[string]int{"company_id": companyID})
	if err != nil {
		return err
	}

	resp, err := c.client.Post(c.baseURL+"/recompute", "application/json", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("scoring service returned %s", resp.Status)
	}
	return nil
}
