package repository

import (
	"scorequorum/repository/models"
)

// ScorerStatus describes one appointed scorer or official.
type ScorerStatus struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Role   string `json:"role"`
	Active bool   `json:"active"`
}

// DisputeStatus describes one delivery the scorers disagree on.
type DisputeStatus struct {
	Innings         int `json:"innings"`
	OverNumber      int `json:"over_number"`
	BallNumber      int `json:"ball_number"`
	TotalEntries    int `json:"total_entries"`
	MatchingEntries int `json:"matching_entries"`
}

// TeamScore is one side's verified running total.
type TeamScore struct {
	Team    string `json:"team"`
	Runs    int    `json:"runs"`
	Wickets int    `json:"wickets"`
	Overs   string `json:"overs"`
}

// ScoringStatus is a read-only snapshot of a match's scoring state.
type ScoringStatus struct {
	MatchID       string          `json:"match_id"`
	Scorers       []ScorerStatus  `json:"scorers"`
	VerifiedCount int64           `json:"verified_count"`
	PendingCount  int64           `json:"pending_count"`
	Disputes      []DisputeStatus `json:"disputes"`
	Score         []TeamScore     `json:"score"`
}

// GetScoringStatus reports who is scoring, how many deliveries are verified
// or still pending, the open disputes, and the verified totals.
func (r *Repository) GetScoringStatus(matchID string) (*ScoringStatus, *RepositoryError) {
	match, repoErr := r.GetMatch(matchID)
	if repoErr != nil {
		return nil, repoErr
	}

	var assignments []models.ScorerAssignment
	err := r.db.Preload("User").
		Where("match_id = ?", matchID).
		Order("appointed_at asc").
		Find(&assignments).Error
	if err != nil {
		return nil, &RepositoryError{
			Code:    CodeDatabaseError,
			Message: "Failed to load assignments",
			Detail:  err.Error(),
		}
	}

	scorers := make([]ScorerStatus, 0, len(assignments))
	for _, assignment := range assignments {
		status := ScorerStatus{
			UserID: assignment.UserID,
			Role:   assignment.Role,
			Active: assignment.Active,
		}
		if assignment.User != nil {
			status.Name = assignment.User.Name
		}
		scorers = append(scorers, status)
	}

	var verifiedCount int64
	err = r.db.Model(&models.OfficialBall{}).
		Where("match_id = ?", matchID).
		Count(&verifiedCount).Error
	if err != nil {
		return nil, &RepositoryError{
			Code:    CodeDatabaseError,
			Message: "Failed to count official balls",
			Detail:  err.Error(),
		}
	}

	var pendingCount int64
	err = r.db.Model(&models.BallVerification{}).
		Where("match_id = ? AND consensus_reached = ?", matchID, false).
		Count(&pendingCount).Error
	if err != nil {
		return nil, &RepositoryError{
			Code:    CodeDatabaseError,
			Message: "Failed to count pending verifications",
			Detail:  err.Error(),
		}
	}

	var disputed []models.BallVerification
	err = r.db.Where("match_id = ? AND has_dispute = ? AND consensus_reached = ?", matchID, true, false).
		Order("innings asc, over_number asc, ball_number asc").
		Find(&disputed).Error
	if err != nil {
		return nil, &RepositoryError{
			Code:    CodeDatabaseError,
			Message: "Failed to load disputes",
			Detail:  err.Error(),
		}
	}

	disputes := make([]DisputeStatus, 0, len(disputed))
	for _, verification := range disputed {
		disputes = append(disputes, DisputeStatus{
			Innings:         verification.Innings,
			OverNumber:      verification.OverNumber,
			BallNumber:      verification.BallNumber,
			TotalEntries:    verification.TotalEntries,
			MatchingEntries: verification.MatchingEntries,
		})
	}

	return &ScoringStatus{
		MatchID:       matchID,
		Scorers:       scorers,
		VerifiedCount: verifiedCount,
		PendingCount:  pendingCount,
		Disputes:      disputes,
		Score: []TeamScore{
			{Team: match.TeamAName, Runs: match.TeamARuns, Wickets: match.TeamAWickets, Overs: OversString(match.TeamABalls)},
			{Team: match.TeamBName, Runs: match.TeamBRuns, Wickets: match.TeamBWickets, Overs: OversString(match.TeamBBalls)},
		},
	}, nil
}
