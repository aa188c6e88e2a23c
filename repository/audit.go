package repository

import (
	"encoding/json"
	"fmt"
	"log"

	"scorequorum/repository/models"

	"github.com/google/uuid"
)

// auditRecord captures one attempted mutating call for the audit trail.
type auditRecord struct {
	MatchID    string
	ActorID    string
	ActionType string
	Innings    int
	OverNumber int
	BallNumber int
	OldValue   interface{}
	NewValue   interface{}
	Notes      string
	Meta       RequestMeta
	Err        *RepositoryError
}

// audit appends one row for the attempted call, success or failure. Writes
// are best-effort: a failing or panicking audit write is logged and
// swallowed so it can never abort or roll back the primary operation.
func (r *Repository) audit(record auditRecord) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("audit write panicked: %v", rec)
		}
	}()

	notes := record.Notes
	if record.Err != nil {
		if notes != "" {
			notes += "; "
		}
		notes += fmt.Sprintf("%s: %s", record.Err.Code, record.Err.Message)
	}

	row := models.AuditLog{
		ID:         fmt.Sprintf("AUD-%s", uuid.New().String()[:8]),
		MatchID:    record.MatchID,
		ActorID:    record.ActorID,
		ActionType: record.ActionType,
		Innings:    record.Innings,
		OverNumber: record.OverNumber,
		BallNumber: record.BallNumber,
		OldValue:   marshalSnapshot(record.OldValue),
		NewValue:   marshalSnapshot(record.NewValue),
		IPAddress:  record.Meta.IP,
		UserAgent:  record.Meta.UserAgent,
		Notes:      notes,
		Success:    record.Err == nil,
	}

	if err := r.db.Create(&row).Error; err != nil {
		log.Printf("audit write failed for %s by %s: %v", record.ActionType, record.ActorID, err)
	}
}

func marshalSnapshot(v interface{}) string {
	if v == nil {
		return ""
	}
	data, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(data)
}
