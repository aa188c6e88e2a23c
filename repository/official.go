package repository

import (
	"errors"
	"fmt"

	"scorequorum/metrics"
	"scorequorum/repository/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// VerifiedByConsensus marks official balls created by majority agreement
// rather than by a resolving official.
const VerifiedByConsensus = "consensus"

// materializeOfficial creates the canonical ball record from the winning
// entry and bumps the match aggregates for the batting side. Idempotent: an
// existing official ball at the key is left untouched, and a lost insert
// race against the unique index is treated the same way. This is the only
// code path that writes match totals.
func (r *Repository) materializeOfficial(tx *gorm.DB, match *models.Match, entry *models.BallEntry, verifiedBy string) *RepositoryError {
	var existing models.OfficialBall
	err := tx.Where("match_id = ? AND innings = ? AND over_number = ? AND ball_number = ?",
		entry.MatchID, entry.Innings, entry.OverNumber, entry.BallNumber).
		First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return &RepositoryError{
			Code:    CodeDatabaseError,
			Message: "Failed to check official ball",
			Detail:  err.Error(),
		}
	}

	official := models.OfficialBall{
		ID:            fmt.Sprintf("OFB-%s", uuid.New().String()[:8]),
		MatchID:       entry.MatchID,
		Innings:       entry.Innings,
		OverNumber:    entry.OverNumber,
		BallNumber:    entry.BallNumber,
		SourceEntryID: entry.ID,
		BowlerID:      entry.BowlerID,
		StrikerID:     entry.StrikerID,
		NonStrikerID:  entry.NonStrikerID,
		Runs:          entry.Runs,
		Extras:        entry.Extras,
		BallType:      entry.BallType,
		IsWicket:      entry.IsWicket,
		WicketType:    entry.WicketType,
		DismissedID:   entry.DismissedID,
		IsBoundary:    entry.IsBoundary,
		BoundaryType:  entry.BoundaryType,
		VerifiedBy:    verifiedBy,
	}

	if err := tx.Create(&official).Error; err != nil {
		if isDuplicateKey(err) {
			// Another submission materialized this delivery first.
			return nil
		}
		return &RepositoryError{
			Code:    CodeDatabaseError,
			Message: "Failed to create official ball",
			Detail:  err.Error(),
		}
	}

	if repoErr := applyAggregates(tx, match, entry); repoErr != nil {
		return repoErr
	}

	metrics.OfficialBallsWritten.Inc()

	return nil
}

// applyAggregates adds the delivery to the batting side's running totals
// using column expressions so concurrent transactions compose.
func applyAggregates(tx *gorm.DB, match *models.Match, entry *models.BallEntry) *RepositoryError {
	side := battingSideFor(match, entry.Innings)

	prefix := "team_a"
	if side == models.SideTeamB {
		prefix = "team_b"
	}

	updates := map[string]interface{}{
		prefix + "_runs": gorm.Expr(prefix+"_runs + ?", entry.Runs+entry.Extras),
	}
	if entry.IsWicket {
		updates[prefix+"_wickets"] = gorm.Expr(prefix + "_wickets + 1")
	}
	if countsTowardOver(entry.BallType) {
		updates[prefix+"_balls"] = gorm.Expr(prefix + "_balls + 1")
	}

	err := tx.Model(&models.Match{}).Where("match_id = ?", match.ID).Updates(updates).Error
	if err != nil {
		return &RepositoryError{
			Code:    CodeDatabaseError,
			Message: "Failed to update match totals",
			Detail:  err.Error(),
		}
	}
	return nil
}

// battingSideFor maps an innings number to the side batting it.
func battingSideFor(match *models.Match, innings int) string {
	first := match.BattingFirst
	if first != models.SideTeamB {
		first = models.SideTeamA
	}
	if innings%2 == 1 {
		return first
	}
	if first == models.SideTeamA {
		return models.SideTeamB
	}
	return models.SideTeamA
}

// countsTowardOver reports whether the delivery advances the over. Byes and
// leg byes come off legal deliveries; wides and no-balls are re-bowled.
func countsTowardOver(ballType string) bool {
	return ballType != models.BallTypeWide && ballType != models.BallTypeNoBall
}

// OversString renders a legal-ball count in cricket notation, e.g. 27 -> "4.3".
func OversString(balls int) string {
	return fmt.Sprintf("%d.%d", balls/6, balls%6)
}
