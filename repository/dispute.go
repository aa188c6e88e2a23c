package repository

import (
	"errors"
	"fmt"
	"time"

	"scorequorum/metrics"
	"scorequorum/repository/models"

	"gorm.io/gorm"
)

// ResolveDisputeParams identifies the disputed delivery and the entry the
// resolving official rules in favor of.
type ResolveDisputeParams struct {
	MatchID      string
	Innings      int
	OverNumber   int
	BallNumber   int
	ResolverID   string
	FinalEntryID string
	Notes        string
	Meta         RequestMeta
}

// ResolveDispute lets an umpire or referee settle a delivery the scorers
// disagree on. A delivery that already has an official ball cannot be
// re-resolved.
func (r *Repository) ResolveDispute(params ResolveDisputeParams) (*models.BallVerification, *RepositoryError) {
	before, _ := r.findVerification(r.db, params.MatchID, params.Innings, params.OverNumber, params.BallNumber)

	verification, repoErr := r.resolveDispute(params)

	r.audit(auditRecord{
		MatchID:    params.MatchID,
		ActorID:    params.ResolverID,
		ActionType: models.ActionDisputeResolution,
		Innings:    params.Innings,
		OverNumber: params.OverNumber,
		BallNumber: params.BallNumber,
		OldValue:   before,
		NewValue:   verification,
		Notes:      params.Notes,
		Meta:       params.Meta,
		Err:        repoErr,
	})

	if repoErr == nil {
		metrics.DisputesResolved.Inc()
	}

	return verification, repoErr
}

func (r *Repository) resolveDispute(params ResolveDisputeParams) (*models.BallVerification, *RepositoryError) {
	match, repoErr := r.GetMatch(params.MatchID)
	if repoErr != nil {
		return nil, repoErr
	}

	assignment, repoErr := r.activeAssignment(r.db, params.MatchID, params.ResolverID)
	if repoErr != nil {
		return nil, repoErr
	}
	if assignment == nil || (assignment.Role != models.RoleUmpire && assignment.Role != models.RoleReferee) {
		return nil, &RepositoryError{
			Code:    CodeUnauthorized,
			Message: "Resolver not authorized",
			Detail:  fmt.Sprintf("User %s is not an active umpire or referee for match %s", params.ResolverID, params.MatchID),
		}
	}

	dbTx := r.db.Begin()
	if dbTx.Error != nil {
		return nil, &RepositoryError{
			Code:    CodeDatabaseError,
			Message: "Failed to start transaction",
			Detail:  dbTx.Error.Error(),
		}
	}

	var official models.OfficialBall
	err := dbTx.Where("match_id = ? AND innings = ? AND over_number = ? AND ball_number = ?",
		params.MatchID, params.Innings, params.OverNumber, params.BallNumber).
		First(&official).Error
	if err == nil {
		dbTx.Rollback()
		return nil, &RepositoryError{
			Code:    CodeConflict,
			Message: "Delivery already verified",
			Detail: fmt.Sprintf("Innings %d over %d ball %d already has an official record",
				params.Innings, params.OverNumber, params.BallNumber),
		}
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		dbTx.Rollback()
		return nil, &RepositoryError{
			Code:    CodeDatabaseError,
			Message: "Failed to check official ball",
			Detail:  err.Error(),
		}
	}

	verification, repoErr := r.findVerification(dbTx, params.MatchID, params.Innings, params.OverNumber, params.BallNumber)
	if repoErr != nil {
		dbTx.Rollback()
		return nil, repoErr
	}

	var finalEntry models.BallEntry
	err = dbTx.Where("entry_id = ?", params.FinalEntryID).First(&finalEntry).Error
	if err != nil {
		dbTx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &RepositoryError{
				Code:    CodeNotFound,
				Message: "Entry not found",
				Detail:  fmt.Sprintf("Ball entry %s does not exist", params.FinalEntryID),
			}
		}
		return nil, &RepositoryError{
			Code:    CodeDatabaseError,
			Message: "Database error",
			Detail:  err.Error(),
		}
	}
	if finalEntry.MatchID != params.MatchID || finalEntry.Innings != params.Innings ||
		finalEntry.OverNumber != params.OverNumber || finalEntry.BallNumber != params.BallNumber {
		dbTx.Rollback()
		return nil, &RepositoryError{
			Code:    CodeValidationFailed,
			Message: "Entry does not match delivery",
			Detail:  fmt.Sprintf("Ball entry %s was recorded for a different delivery", params.FinalEntryID),
		}
	}

	now := time.Now()
	verification.ConsensusReached = true
	verification.HasDispute = false
	verification.FinalEntryID = &finalEntry.ID
	verification.ResolvedBy = &params.ResolverID
	verification.ResolutionNotes = params.Notes
	verification.VerifiedAt = &now

	if err := dbTx.Save(verification).Error; err != nil {
		dbTx.Rollback()
		return nil, &RepositoryError{
			Code:    CodeDatabaseError,
			Message: "Failed to update verification",
			Detail:  err.Error(),
		}
	}

	if repoErr := r.materializeOfficial(dbTx, match, &finalEntry, params.ResolverID); repoErr != nil {
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

	return verification, nil
}

// findVerification loads the verification row for a delivery key.
func (r *Repository) findVerification(tx *gorm.DB, matchID string, innings, over, ball int) (*models.BallVerification, *RepositoryError) {
	var verification models.BallVerification
	err := tx.Where("match_id = ? AND innings = ? AND over_number = ? AND ball_number = ?",
		matchID, innings, over, ball).
		First(&verification).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &RepositoryError{
				Code:    CodeNotFound,
				Message: "Verification not found",
				Detail: fmt.Sprintf("No entries recorded for innings %d over %d ball %d of match %s",
					innings, over, ball, matchID),
			}
		}
		return nil, &RepositoryError{
			Code:    CodeDatabaseError,
			Message: "Database error",
			Detail:  err.Error(),
		}
	}
	return &verification, nil
}
