package repository

import (
	"fmt"

	"scorequorum/metrics"
	"scorequorum/repository/models"

	"github.com/google/uuid"
)

// BallOutcome is what the scorers must agree on for one delivery.
type BallOutcome struct {
	Runs         int    `json:"runs"`
	Extras       int    `json:"extras"`
	BallType     string `json:"ball_type"`
	IsWicket     bool   `json:"is_wicket"`
	WicketType   string `json:"wicket_type"`
	DismissedID  string `json:"dismissed_id"`
	IsBoundary   bool   `json:"is_boundary"`
	BoundaryType string `json:"boundary_type"`
}

// BallParticipants names the players involved in the delivery.
type BallParticipants struct {
	BowlerID     string `json:"bowler_id"`
	StrikerID    string `json:"striker_id"`
	NonStrikerID string `json:"non_striker_id"`
}

// SubmitBallParams is one scorer's record of one delivery. Over and ball
// numbers are supplied by the scorer, who tracks their own running position
// like a paper scorebook.
type SubmitBallParams struct {
	MatchID      string
	ScorerID     string
	Innings      int
	OverNumber   int
	BallNumber   int
	Outcome      BallOutcome
	Participants BallParticipants
	Meta         RequestMeta
}

// SubmitResult reports the stored entry and the verification verdict after
// this submission.
type SubmitResult struct {
	EntryID          string `json:"entry_id"`
	Status           string `json:"verification_status"`
	ConsensusReached bool   `json:"consensus_reached"`
	TotalEntries     int    `json:"total_entries"`
	MatchingEntries  int    `json:"matching_entries"`
}

// SubmitBallEntry persists one scorer's entry and synchronously re-evaluates
// consensus for the delivery key, all inside one transaction. Entries are
// immutable evidence: a repeat submission by the same scorer for the same
// key is a conflict, never an update.
func (r *Repository) SubmitBallEntry(params SubmitBallParams) (*SubmitResult, *RepositoryError) {
	result, repoErr := r.submitBallEntry(params)

	record := auditRecord{
		MatchID:    params.MatchID,
		ActorID:    params.ScorerID,
		ActionType: models.ActionBallEntry,
		Innings:    params.Innings,
		OverNumber: params.OverNumber,
		BallNumber: params.BallNumber,
		Meta:       params.Meta,
		Err:        repoErr,
	}
	if result != nil {
		record.NewValue = result
	}
	r.audit(record)

	if repoErr != nil {
		metrics.EntriesRejected.WithLabelValues(repoErr.Code).Inc()
	} else {
		metrics.EntriesSubmitted.Inc()
	}

	return result, repoErr
}

func (r *Repository) submitBallEntry(params SubmitBallParams) (*SubmitResult, *RepositoryError) {
	match, repoErr := r.GetMatch(params.MatchID)
	if repoErr != nil {
		return nil, repoErr
	}

	assignment, repoErr := r.activeAssignment(r.db, params.MatchID, params.ScorerID)
	if repoErr != nil {
		return nil, repoErr
	}
	if assignment == nil {
		return nil, &RepositoryError{
			Code:    CodeUnauthorized,
			Message: "Scorer not assigned",
			Detail:  fmt.Sprintf("User %s holds no active scoring assignment for match %s", params.ScorerID, params.MatchID),
		}
	}

	if repoErr := validateBall(params); repoErr != nil {
		return nil, repoErr
	}

	dbTx := r.db.Begin()
	if dbTx.Error != nil {
		return nil, &RepositoryError{
			Code:    CodeDatabaseError,
			Message: "Failed to start transaction",
			Detail:  dbTx.Error.Error(),
		}
	}

	entry := models.BallEntry{
		ID:           fmt.Sprintf("ENT-%s", uuid.New().String()[:8]),
		MatchID:      params.MatchID,
		ScorerID:     params.ScorerID,
		Innings:      params.Innings,
		OverNumber:   params.OverNumber,
		BallNumber:   params.BallNumber,
		BowlerID:     params.Participants.BowlerID,
		StrikerID:    params.Participants.StrikerID,
		NonStrikerID: params.Participants.NonStrikerID,
		Runs:         params.Outcome.Runs,
		Extras:       params.Outcome.Extras,
		BallType:     params.Outcome.BallType,
		IsWicket:     params.Outcome.IsWicket,
		WicketType:   params.Outcome.WicketType,
		DismissedID:  params.Outcome.DismissedID,
		IsBoundary:   params.Outcome.IsBoundary,
		BoundaryType: params.Outcome.BoundaryType,
	}

	if err := dbTx.Create(&entry).Error; err != nil {
		dbTx.Rollback()
		if isDuplicateKey(err) {
			return nil, &RepositoryError{
				Code:    CodeConflict,
				Message: "Entry already recorded",
				Detail: fmt.Sprintf("Scorer %s already recorded innings %d over %d ball %d; repeats do not amend the original",
					params.ScorerID, params.Innings, params.OverNumber, params.BallNumber),
			}
		}
		return nil, &RepositoryError{
			Code:    CodeDatabaseError,
			Message: "Failed to store ball entry",
			Detail:  err.Error(),
		}
	}

	verification, status, repoErr := r.evaluateConsensus(dbTx, match, &entry)
	if repoErr != nil {
		dbTx.Rollback()
		return nil, repoErr
	}

	if err := dbTx.Commit().Error; err != nil {
		return nil, &RepositoryError{
			Code:    CodeDatabaseError,
			Message: "Failed to commit transaction",
			Detail:  err.Error(),
		}
	}

	return &SubmitResult{
		EntryID:          entry.ID,
		Status:           status,
		ConsensusReached: verification.ConsensusReached,
		TotalEntries:     verification.TotalEntries,
		MatchingEntries:  verification.MatchingEntries,
	}, nil
}

// validateBall rejects malformed outcomes before anything is persisted.
func validateBall(params SubmitBallParams) *RepositoryError {
	fail := func(detail string) *RepositoryError {
		return &RepositoryError{
			Code:    CodeValidationFailed,
			Message: "Invalid ball entry",
			Detail:  detail,
		}
	}

	if params.Innings < 1 {
		return fail("innings must be at least 1")
	}
	if params.OverNumber < 1 {
		return fail("over_number must be at least 1")
	}
	if params.BallNumber < 1 {
		return fail("ball_number must be at least 1")
	}
	if params.Outcome.Runs < 0 || params.Outcome.Extras < 0 {
		return fail("runs and extras cannot be negative")
	}
	if !models.ValidBallType(params.Outcome.BallType) {
		return fail(fmt.Sprintf("unknown ball_type %q", params.Outcome.BallType))
	}
	if params.Outcome.IsWicket && params.Outcome.WicketType == "" {
		return fail("a wicket requires a wicket_type")
	}
	if params.Outcome.IsBoundary && params.Outcome.Runs != 4 && params.Outcome.Runs != 6 {
		return fail("a boundary must score 4 or 6 runs")
	}
	return nil
}
