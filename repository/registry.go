package repository

import (
	"errors"
	"fmt"

	"scorequorum/repository/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AssignScorersParams names the appointees for one match.
type AssignScorersParams struct {
	MatchID       string
	TeamAScorerID string
	TeamBScorerID string
	AppointedBy   string
	UmpireID      string // optional
	Meta          RequestMeta
}

// AssignScorers appoints the two team scorers and, optionally, an umpire
// for a match. A user who already holds an active assignment for the match
// is rejected with a conflict.
func (r *Repository) AssignScorers(params AssignScorersParams) ([]models.ScorerAssignment, *RepositoryError) {
	assignments, repoErr := r.assignScorers(params)

	r.audit(auditRecord{
		MatchID:    params.MatchID,
		ActorID:    params.AppointedBy,
		ActionType: models.ActionAssignment,
		NewValue:   assignments,
		Meta:       params.Meta,
		Err:        repoErr,
	})

	return assignments, repoErr
}

func (r *Repository) assignScorers(params AssignScorersParams) ([]models.ScorerAssignment, *RepositoryError) {
	if params.TeamAScorerID == "" || params.TeamBScorerID == "" || params.AppointedBy == "" {
		return nil, &RepositoryError{
			Code:    CodeValidationFailed,
			Message: "Missing appointee",
			Detail:  "team A scorer, team B scorer and appointer are required",
		}
	}
	if params.TeamAScorerID == params.TeamBScorerID {
		return nil, &RepositoryError{
			Code:    CodeConflict,
			Message: "Scorers must be independent",
			Detail:  fmt.Sprintf("User %s cannot score for both teams", params.TeamAScorerID),
		}
	}

	if _, repoErr := r.GetMatch(params.MatchID); repoErr != nil {
		return nil, repoErr
	}

	appointees := []struct {
		userID string
		role   string
	}{
		{params.TeamAScorerID, models.RoleTeamAScorer},
		{params.TeamBScorerID, models.RoleTeamBScorer},
	}
	if params.UmpireID != "" {
		appointees = append(appointees, struct {
			userID string
			role   string
		}{params.UmpireID, models.RoleUmpire})
	}

	dbTx := r.db.Begin()
	if dbTx.Error != nil {
		return nil, &RepositoryError{
			Code:    CodeDatabaseError,
			Message: "Failed to start transaction",
			Detail:  dbTx.Error.Error(),
		}
	}

	var created []models.ScorerAssignment
	for _, appointee := range appointees {
		var user models.User
		if err := dbTx.Where("user_id = ?", appointee.userID).First(&user).Error; err != nil {
			dbTx.Rollback()
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, &RepositoryError{
					Code:    CodeNotFound,
					Message: "User not found",
					Detail:  fmt.Sprintf("User %s does not exist", appointee.userID),
				}
			}
			return nil, &RepositoryError{
				Code:    CodeDatabaseError,
				Message: "Database error",
				Detail:  err.Error(),
			}
		}

		var existing int64
		err := dbTx.Model(&models.ScorerAssignment{}).
			Where("match_id = ? AND user_id = ? AND active = ?", params.MatchID, appointee.userID, true).
			Count(&existing).Error
		if err != nil {
			dbTx.Rollback()
			return nil, &RepositoryError{
				Code:    CodeDatabaseError,
				Message: "Database error",
				Detail:  err.Error(),
			}
		}
		if existing > 0 {
			dbTx.Rollback()
			return nil, &RepositoryError{
				Code:    CodeConflict,
				Message: "User already assigned",
				Detail:  fmt.Sprintf("User %s already holds an active assignment for match %s", appointee.userID, params.MatchID),
			}
		}

		assignment := models.ScorerAssignment{
			ID:          fmt.Sprintf("ASG-%s", uuid.New().String()[:8]),
			MatchID:     params.MatchID,
			UserID:      appointee.userID,
			Role:        appointee.role,
			AppointedBy: params.AppointedBy,
			Active:      true,
		}
		if err := dbTx.Create(&assignment).Error; err != nil {
			dbTx.Rollback()
			if isDuplicateKey(err) {
				return nil, &RepositoryError{
					Code:    CodeConflict,
					Message: "User already assigned",
					Detail:  fmt.Sprintf("User %s already holds an assignment for match %s", appointee.userID, params.MatchID),
				}
			}
			return nil, &RepositoryError{
				Code:    CodeDatabaseError,
				Message: "Failed to create assignment",
				Detail:  err.Error(),
			}
		}
		created = append(created, assignment)
	}

	if err := dbTx.Commit().Error; err != nil {
		return nil, &RepositoryError{
			Code:    CodeDatabaseError,
			Message: "Failed to commit transaction",
			Detail:  err.Error(),
		}
	}

	return created, nil
}

// activeAssignment returns the active assignment for (match, user), or nil
// when the user holds none. Every mutating operation authorizes through it.
func (r *Repository) activeAssignment(tx *gorm.DB, matchID, userID string) (*models.ScorerAssignment, *RepositoryError) {
	var assignment models.ScorerAssignment
	err := tx.Where("match_id = ? AND user_id = ? AND active = ?", matchID, userID, true).
		First(&assignment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, &RepositoryError{
			Code:    CodeDatabaseError,
			Message: "Database error",
			Detail:  err.Error(),
		}
	}
	return &assignment, nil
}

// Authorize reports whether the user holds an active scoring assignment
// for the match.
func (r *Repository) Authorize(matchID, userID string) (bool, *RepositoryError) {
	assignment, repoErr := r.activeAssignment(r.db, matchID, userID)
	if repoErr != nil {
		return false, repoErr
	}
	return assignment != nil, nil
}
