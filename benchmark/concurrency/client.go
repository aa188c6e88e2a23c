package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ballEntryRequest is the wire form of one scorer's submission.
type ballEntryRequest struct {
	ScorerID   string `json:"scorer_id"`
	Innings    int    `json:"innings"`
	OverNumber int    `json:"over_number"`
	BallNumber int    `json:"ball_number"`
	BowlerID   string `json:"bowler_id"`
	StrikerID  string `json:"striker_id"`
	Runs       int    `json:"runs"`
	BallType   string `json:"ball_type"`
}

// scoringClient speaks the service's scoring endpoints for load generation.
type scoringClient struct {
	baseURL string
	client  *http.Client
}

func newScoringClient(baseURL string) *scoringClient {
	return &scoringClient{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *scoringClient) postJSON(endpoint string, body interface{}) (int, []byte, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return 0, nil, err
	}

	req, err := http.NewRequest("POST", c.baseURL+endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "*/*")

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, err
	}
	return resp.StatusCode, respBody, nil
}

// AssignScorers appoints the scorer pair for the match. A conflict means
// they are already assigned from an earlier run and is not an error.
func (c *scoringClient) AssignScorers(matchID, teamAScorerID, teamBScorerID, appointedBy string) error {
	status, body, err := c.postJSON(fmt.Sprintf("/match/%s/scorers", matchID), map[string]string{
		"team_a_scorer_id": teamAScorerID,
		"team_b_scorer_id": teamBScorerID,
		"appointed_by":     appointedBy,
	})
	if err != nil {
		return err
	}
	if status >= 400 && status != http.StatusConflict {
		return fmt.Errorf("HTTP %d: %s", status, body)
	}
	return nil
}

// SubmitBall submits one scorer's entry and returns the verification verdict.
func (c *scoringClient) SubmitBall(matchID string, entry ballEntryRequest) (*SubmitResponse, error) {
	status, body, err := c.postJSON(fmt.Sprintf("/match/%s/balls", matchID), entry)
	if err != nil {
		return nil, err
	}
	if status != http.StatusCreated {
		return nil, fmt.Errorf("HTTP %d: %s", status, body)
	}

	var result SubmitResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
