package srvreg

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"scorequorum/repository"
)

// statusCodeFor maps repository error codes to HTTP status codes.
func statusCodeFor(repoErr *repository.RepositoryError) int {
	switch repoErr.Code {
	case repository.CodeUnauthorized:
		return http.StatusForbidden
	case repository.CodeValidationFailed:
		return http.StatusBadRequest
	case repository.CodeNotFound:
		return http.StatusNotFound
	case repository.CodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func errorResponse(repoErr *repository.RepositoryError) *Response {
	body, _ := json.Marshal(map[string]string{
		"error":  repoErr.Message,
		"code":   repoErr.Code,
		"detail": repoErr.Detail,
	})
	return &Response{
		StatusCode: statusCodeFor(repoErr),
		Headers:    defaultHeaders,
		Body:       string(body),
	}
}

func jsonResponse(statusCode int, payload interface{}) *Response {
	body, _ := json.Marshal(payload)
	return &Response{
		StatusCode: statusCode,
		Headers:    defaultHeaders,
		Body:       string(body),
	}
}

func badRequest(message string) *Response {
	return &Response{
		StatusCode: http.StatusBadRequest,
		Headers:    defaultHeaders,
		Body:       fmt.Sprintf(`{"error":"%s"}`, message),
	}
}

// matchIDFromPath extracts the :id segment from /match/:id/<action>
func matchIDFromPath(path string) (string, bool) {
	pathParts := strings.Split(path, "/")
	if len(pathParts) != 4 || pathParts[2] == "" {
		return "", false
	}
	return pathParts[2], true
}

// InfoHandler returns service information
func (sr *ServiceRegistry) InfoHandler(req *Request) (*Response, error) {
	return jsonResponse(http.StatusOK, map[string]interface{}{
		"node":   sr.nodeName,
		"type":   "ball scoring consensus service",
		"status": "active",
	}), nil
}

// AssignScorersHandler appoints the scorers for a match
func (sr *ServiceRegistry) AssignScorersHandler(req *Request) (*Response, error) {
	matchID, ok := matchIDFromPath(req.Path)
	if !ok {
		return badRequest("Invalid path format"), nil
	}

	var body struct {
		TeamAScorerID string `json:"team_a_scorer_id"`
		TeamBScorerID string `json:"team_b_scorer_id"`
		AppointedBy   string `json:"appointed_by"`
		UmpireID      string `json:"umpire_id"`
	}
	if err := json.Unmarshal([]byte(req.Body), &body); err != nil {
		return badRequest("Invalid request body"), nil
	}

	if body.TeamAScorerID == "" || body.TeamBScorerID == "" || body.AppointedBy == "" {
		return badRequest("team_a_scorer_id, team_b_scorer_id and appointed_by are required"), nil
	}

	assignments, dbErr := sr.repository.AssignScorers(repository.AssignScorersParams{
		MatchID:       matchID,
		TeamAScorerID: body.TeamAScorerID,
		TeamBScorerID: body.TeamBScorerID,
		AppointedBy:   body.AppointedBy,
		UmpireID:      body.UmpireID,
		Meta:          repository.RequestMeta{IP: req.IP, UserAgent: req.UserAgent},
	})
	if dbErr != nil {
		return errorResponse(dbErr), nil
	}

	return jsonResponse(http.StatusCreated, map[string]interface{}{
		"message":     "Scorers assigned successfully",
		"match_id":    matchID,
		"assignments": assignments,
	}), nil
}

// SubmitBallHandler records one scorer's entry for a delivery
func (sr *ServiceRegistry) SubmitBallHandler(req *Request) (*Response, error) {
	matchID, ok := matchIDFromPath(req.Path)
	if !ok {
		return badRequest("Invalid path format"), nil
	}

	var body struct {
		ScorerID   string `json:"scorer_id"`
		Innings    int    `json:"innings"`
		OverNumber int    `json:"over_number"`
		BallNumber int    `json:"ball_number"`
		repository.BallParticipants
		repository.BallOutcome
	}
	if err := json.Unmarshal([]byte(req.Body), &body); err != nil {
		return badRequest("Invalid request body"), nil
	}

	if body.ScorerID == "" {
		return badRequest("scorer_id is required"), nil
	}

	result, dbErr := sr.repository.SubmitBallEntry(repository.SubmitBallParams{
		MatchID:      matchID,
		ScorerID:     body.ScorerID,
		Innings:      body.Innings,
		OverNumber:   body.OverNumber,
		BallNumber:   body.BallNumber,
		Outcome:      body.BallOutcome,
		Participants: body.BallParticipants,
		Meta:         repository.RequestMeta{IP: req.IP, UserAgent: req.UserAgent},
	})
	if dbErr != nil {
		return errorResponse(dbErr), nil
	}

	return jsonResponse(http.StatusCreated, result), nil
}

// ResolveDisputeHandler lets an umpire or referee settle a disputed delivery
func (sr *ServiceRegistry) ResolveDisputeHandler(req *Request) (*Response, error) {
	matchID, ok := matchIDFromPath(req.Path)
	if !ok {
		return badRequest("Invalid path format"), nil
	}

	var body struct {
		ResolverID   string `json:"resolver_id"`
		Innings      int    `json:"innings"`
		OverNumber   int    `json:"over_number"`
		BallNumber   int    `json:"ball_number"`
		FinalEntryID string `json:"final_entry_id"`
		Notes        string `json:"notes"`
	}
	if err := json.Unmarshal([]byte(req.Body), &body); err != nil {
		return badRequest("Invalid request body"), nil
	}

	if body.ResolverID == "" || body.FinalEntryID == "" {
		return badRequest("resolver_id and final_entry_id are required"), nil
	}

	verification, dbErr := sr.repository.ResolveDispute(repository.ResolveDisputeParams{
		MatchID:      matchID,
		Innings:      body.Innings,
		OverNumber:   body.OverNumber,
		BallNumber:   body.BallNumber,
		ResolverID:   body.ResolverID,
		FinalEntryID: body.FinalEntryID,
		Notes:        body.Notes,
		Meta:         repository.RequestMeta{IP: req.IP, UserAgent: req.UserAgent},
	})
	if dbErr != nil {
		return errorResponse(dbErr), nil
	}

	return jsonResponse(http.StatusOK, map[string]interface{}{
		"message":      "Dispute resolved",
		"match_id":     matchID,
		"verification": verification,
	}), nil
}

// ScoringStatusHandler reports the scoring state of a match
func (sr *ServiceRegistry) ScoringStatusHandler(req *Request) (*Response, error) {
	matchID, ok := matchIDFromPath(req.Path)
	if !ok {
		return badRequest("Invalid path format"), nil
	}

	status, dbErr := sr.repository.GetScoringStatus(matchID)
	if dbErr != nil {
		return errorResponse(dbErr), nil
	}

	return jsonResponse(http.StatusOK, status), nil
}
