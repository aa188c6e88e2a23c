package repository

import (
	"errors"
	"fmt"
	"time"

	"scorequorum/metrics"
	"scorequorum/repository/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Verification statuses
const (
	StatusPending  = "pending"
	StatusVerified = "verified"
	StatusDisputed = "disputed"
)

// outcomeKey is the tuple entries must agree on for consensus. Participant
// identity (bowler, striker) is deliberately not part of the key.
type outcomeKey struct {
	Runs         int
	Extras       int
	BallType     string
	IsWicket     bool
	WicketType   string
	IsBoundary   bool
	BoundaryType string
}

func entryOutcomeKey(e *models.BallEntry) outcomeKey {
	return outcomeKey{
		Runs:         e.Runs,
		Extras:       e.Extras,
		BallType:     e.BallType,
		IsWicket:     e.IsWicket,
		WicketType:   e.WicketType,
		IsBoundary:   e.IsBoundary,
		BoundaryType: e.BoundaryType,
	}
}

// majority groups entries by outcome and picks the largest group.
// Consensus requires a strict majority with at least two corroborating
// entries (m > n/2 and m >= 2): two mutually conflicting entries are a
// dispute, not an agreement. The winner is the earliest-submitted entry of
// the largest group, so re-evaluation is deterministic.
func majority(entries []models.BallEntry) (winner *models.BallEntry, matching, total int, reached bool) {
	total = len(entries)
	if total == 0 {
		return nil, 0, 0, false
	}

	counts := make(map[outcomeKey]int)
	first := make(map[outcomeKey]*models.BallEntry)
	for i := range entries {
		key := entryOutcomeKey(&entries[i])
		counts[key]++
		if _, ok := first[key]; !ok {
			first[key] = &entries[i]
		}
	}

	for i := range entries {
		key := entryOutcomeKey(&entries[i])
		if counts[key] > matching {
			matching = counts[key]
			winner = first[key]
		}
	}

	reached = matching*2 > total && matching >= 2
	return winner, matching, total, reached
}

// matchingFinal counts the entries that agree with the settled outcome,
// identified by the verification's final entry. Falls back to the largest
// group size when the final entry is not among the loaded rows.
func matchingFinal(entries []models.BallEntry, finalEntryID *string, fallback int) int {
	if finalEntryID == nil {
		return fallback
	}

	var key outcomeKey
	found := false
	for i := range entries {
		if entries[i].ID == *finalEntryID {
			key = entryOutcomeKey(&entries[i])
			found = true
			break
		}
	}
	if !found {
		return fallback
	}

	count := 0
	for i := range entries {
		if entryOutcomeKey(&entries[i]) == key {
			count++
		}
	}
	return count
}

// evaluateConsensus re-runs the majority decision for the entry's delivery
// key inside the caller's transaction. A verdict only moves forward: once
// consensus is reached, later entries bump the counters but never regress
// the verification or the official ball.
func (r *Repository) evaluateConsensus(tx *gorm.DB, match *models.Match, entry *models.BallEntry) (*models.BallVerification, string, *RepositoryError) {
	verification, repoErr := r.findOrCreateVerification(tx, entry)
	if repoErr != nil {
		return nil, "", repoErr
	}

	var entries []models.BallEntry
	err := tx.Where("match_id = ? AND innings = ? AND over_number = ? AND ball_number = ?",
		entry.MatchID, entry.Innings, entry.OverNumber, entry.BallNumber).
		Order("created_at asc, entry_id asc").
		Find(&entries).Error
	if err != nil {
		return nil, "", &RepositoryError{
			Code:    CodeDatabaseError,
			Message: "Failed to load ball entries",
			Detail:  err.Error(),
		}
	}

	winner, matching, total, reached := majority(entries)

	if verification.ConsensusReached {
		// Already verified; the new entry is late evidence only. The
		// counters stay accurate against the settled outcome.
		verification.TotalEntries = total
		verification.MatchingEntries = matchingFinal(entries, verification.FinalEntryID, matching)
		if err := tx.Save(verification).Error; err != nil {
			return nil, "", &RepositoryError{
				Code:    CodeDatabaseError,
				Message: "Failed to update verification",
				Detail:  err.Error(),
			}
		}
		return verification, StatusVerified, nil
	}

	verification.TotalEntries = total
	verification.MatchingEntries = matching

	status := StatusPending
	switch {
	case total < 2:
		verification.HasDispute = false
	case reached:
		now := time.Now()
		verification.ConsensusReached = true
		verification.HasDispute = false
		verification.FinalEntryID = &winner.ID
		verification.VerifiedAt = &now
		status = StatusVerified
	default:
		verification.HasDispute = true
		status = StatusDisputed
	}

	if err := tx.Save(verification).Error; err != nil {
		return nil, "", &RepositoryError{
			Code:    CodeDatabaseError,
			Message: "Failed to update verification",
			Detail:  err.Error(),
		}
	}

	if status == StatusVerified {
		if repoErr := r.materializeOfficial(tx, match, winner, VerifiedByConsensus); repoErr != nil {
			return nil, "", repoErr
		}
	}

	metrics.ConsensusVerdicts.WithLabelValues(status).Inc()

	return verification, status, nil
}

// findOrCreateVerification loads the verification row for the entry's key,
// inserting it when absent. A lost insert race against the unique index is
// resolved by re-reading the winner's row.
func (r *Repository) findOrCreateVerification(tx *gorm.DB, entry *models.BallEntry) (*models.BallVerification, *RepositoryError) {
	lookup := func() (*models.BallVerification, error) {
		var verification models.BallVerification
		err := tx.Where("match_id = ? AND innings = ? AND over_number = ? AND ball_number = ?",
			entry.MatchID, entry.Innings, entry.OverNumber, entry.BallNumber).
			First(&verification).Error
		if err != nil {
			return nil, err
		}
		return &verification, nil
	}

	verification, err := lookup()
	if err == nil {
		return verification, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &RepositoryError{
			Code:    CodeDatabaseError,
			Message: "Failed to load verification",
			Detail:  err.Error(),
		}
	}

	fresh := models.BallVerification{
		ID:         fmt.Sprintf("VRF-%s", uuid.New().String()[:8]),
		MatchID:    entry.MatchID,
		Innings:    entry.Innings,
		OverNumber: entry.OverNumber,
		BallNumber: entry.BallNumber,
	}
	if err := tx.Create(&fresh).Error; err != nil {
		if isDuplicateKey(err) {
			verification, err = lookup()
			if err != nil {
				return nil, &RepositoryError{
					Code:    CodeDatabaseError,
					Message: "Failed to reload verification",
					Detail:  err.Error(),
				}
			}
			return verification, nil
		}
		return nil, &RepositoryError{
			Code:    CodeDatabaseError,
			Message: "Failed to create verification",
			Detail:  err.Error(),
		}
	}
	return &fresh, nil
}
