package models

import "time"

// Scorer roles
const (
	RoleTeamAScorer = "team_a_scorer"
	RoleTeamBScorer = "team_b_scorer"
	RoleUmpire      = "umpire"
	RoleReferee     = "referee"
)

// Ball types
const (
	BallTypeLegal  = "legal"
	BallTypeWide   = "wide"
	BallTypeNoBall = "no_ball"
	BallTypeBye    = "bye"
	BallTypeLegBye = "leg_bye"
)

// Match sides
const (
	SideTeamA = "team_a"
	SideTeamB = "team_b"
)

// Audit action types
const (
	ActionAssignment        = "assignment"
	ActionBallEntry         = "ball_entry"
	ActionDisputeResolution = "dispute_resolution"
)

// ValidBallType reports whether t is one of the known delivery types.
func ValidBallType(t string) bool {
	switch t {
	case BallTypeLegal, BallTypeWide, BallTypeNoBall, BallTypeBye, BallTypeLegBye:
		return true
	}
	return false
}

// User represents an externally-owned identity (players, scorers, officials).
// The engine only reads users; account management lives elsewhere.
type User struct {
	ID   string `gorm:"column:user_id;primaryKey;type:varchar(50)" json:"user_id"`
	Name string `gorm:"column:name;type:varchar(100);not null" json:"name"`
	Role string `gorm:"column:role;type:varchar(30)" json:"role"`
}

// Match represents an externally-owned match. The aggregate score columns
// are written only through official-ball materialization.
type Match struct {
	ID             string `gorm:"column:match_id;primaryKey;type:varchar(50)" json:"match_id"`
	TeamAName      string `gorm:"column:team_a_name;type:varchar(100);not null" json:"team_a_name"`
	TeamBName      string `gorm:"column:team_b_name;type:varchar(100);not null" json:"team_b_name"`
	Status         string `gorm:"column:status;type:varchar(20);default:'live'" json:"status"`
	CurrentInnings int    `gorm:"column:current_innings;default:1" json:"current_innings"`
	// BattingFirst decides which side the aggregates of odd innings belong to.
	BattingFirst string `gorm:"column:batting_first;type:varchar(10);default:'team_a'" json:"batting_first"`

	// Running aggregates per side, maintained by the official record writer.
	TeamARuns    int `gorm:"column:team_a_runs;default:0" json:"team_a_runs"`
	TeamAWickets int `gorm:"column:team_a_wickets;default:0" json:"team_a_wickets"`
	TeamABalls   int `gorm:"column:team_a_balls;default:0" json:"team_a_balls"`
	TeamBRuns    int `gorm:"column:team_b_runs;default:0" json:"team_b_runs"`
	TeamBWickets int `gorm:"column:team_b_wickets;default:0" json:"team_b_wickets"`
	TeamBBalls   int `gorm:"column:team_b_balls;default:0" json:"team_b_balls"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// ScorerAssignment appoints a user to score a match in a given role.
// One assignment per (match, user); enforced by the unique index.
type ScorerAssignment struct {
	ID          string    `gorm:"column:assignment_id;primaryKey;type:varchar(50)" json:"assignment_id"`
	MatchID     string    `gorm:"column:match_id;type:varchar(50);not null;uniqueIndex:idx_assignment_match_user" json:"match_id"`
	UserID      string    `gorm:"column:user_id;type:varchar(50);not null;uniqueIndex:idx_assignment_match_user" json:"user_id"`
	Role        string    `gorm:"column:role;type:varchar(20);not null" json:"role"`
	AppointedBy string    `gorm:"column:appointed_by;type:varchar(50);not null" json:"appointed_by"`
	Active      bool      `gorm:"column:active;default:true" json:"active"`
	AppointedAt time.Time `gorm:"column:appointed_at;autoCreateTime" json:"appointed_at"`

	// Relationships
	Match *Match `gorm:"foreignKey:MatchID;references:ID" json:"-"`
	User  *User  `gorm:"foreignKey:UserID;references:ID" json:"-"`
}

// BallEntry is one scorer's record of one delivery. Rows are immutable:
// they are never updated or deleted, and a repeat submission by the same
// scorer for the same delivery is rejected by the unique index rather than
// treated as a retry.
type BallEntry struct {
	ID         string `gorm:"column:entry_id;primaryKey;type:varchar(50)" json:"entry_id"`
	MatchID    string `gorm:"column:match_id;type:varchar(50);not null;uniqueIndex:idx_entry_scorer_ball;index:idx_entry_ball" json:"match_id"`
	ScorerID   string `gorm:"column:scorer_id;type:varchar(50);not null;uniqueIndex:idx_entry_scorer_ball" json:"scorer_id"`
	Innings    int    `gorm:"column:innings;not null;uniqueIndex:idx_entry_scorer_ball;index:idx_entry_ball" json:"innings"`
	OverNumber int    `gorm:"column:over_number;not null;uniqueIndex:idx_entry_scorer_ball;index:idx_entry_ball" json:"over_number"`
	BallNumber int    `gorm:"column:ball_number;not null;uniqueIndex:idx_entry_scorer_ball;index:idx_entry_ball" json:"ball_number"`

	BowlerID     string `gorm:"column:bowler_id;type:varchar(50)" json:"bowler_id"`
	StrikerID    string `gorm:"column:striker_id;type:varchar(50)" json:"striker_id"`
	NonStrikerID string `gorm:"column:non_striker_id;type:varchar(50)" json:"non_striker_id"`

	Runs         int    `gorm:"column:runs;default:0" json:"runs"`
	Extras       int    `gorm:"column:extras;default:0" json:"extras"`
	BallType     string `gorm:"column:ball_type;type:varchar(10);default:'legal'" json:"ball_type"`
	IsWicket     bool   `gorm:"column:is_wicket;default:false" json:"is_wicket"`
	WicketType   string `gorm:"column:wicket_type;type:varchar(20)" json:"wicket_type"`
	DismissedID  string `gorm:"column:dismissed_id;type:varchar(50)" json:"dismissed_id"`
	IsBoundary   bool   `gorm:"column:is_boundary;default:false" json:"is_boundary"`
	BoundaryType string `gorm:"column:boundary_type;type:varchar(10)" json:"boundary_type"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

// BallVerification tracks the consensus state for one delivery key.
// At most one row per (match, innings, over, ball).
type BallVerification struct {
	ID         string `gorm:"column:verification_id;primaryKey;type:varchar(50)" json:"verification_id"`
	MatchID    string `gorm:"column:match_id;type:varchar(50);not null;uniqueIndex:idx_verification_ball" json:"match_id"`
	Innings    int    `gorm:"column:innings;not null;uniqueIndex:idx_verification_ball" json:"innings"`
	OverNumber int    `gorm:"column:over_number;not null;uniqueIndex:idx_verification_ball" json:"over_number"`
	BallNumber int    `gorm:"column:ball_number;not null;uniqueIndex:idx_verification_ball" json:"ball_number"`

	TotalEntries     int        `gorm:"column:total_entries;default:0" json:"total_entries"`
	MatchingEntries  int        `gorm:"column:matching_entries;default:0" json:"matching_entries"`
	ConsensusReached bool       `gorm:"column:consensus_reached;default:false" json:"consensus_reached"`
	HasDispute       bool       `gorm:"column:has_dispute;default:false" json:"has_dispute"`
	FinalEntryID     *string    `gorm:"column:final_entry_id;type:varchar(50)" json:"final_entry_id"`
	ResolvedBy       *string    `gorm:"column:resolved_by;type:varchar(50)" json:"resolved_by"`
	ResolutionNotes  string     `gorm:"column:resolution_notes;type:text" json:"resolution_notes"`
	VerifiedAt       *time.Time `gorm:"column:verified_at" json:"verified_at"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`

	// Relationships
	FinalEntry *BallEntry `gorm:"foreignKey:FinalEntryID;references:ID" json:"-"`
}

// OfficialBall is the single canonical outcome for a delivery. Created
// exactly once, by consensus or by dispute resolution, never mutated.
type OfficialBall struct {
	ID         string `gorm:"column:official_ball_id;primaryKey;type:varchar(50)" json:"official_ball_id"`
	MatchID    string `gorm:"column:match_id;type:varchar(50);not null;uniqueIndex:idx_official_ball" json:"match_id"`
	Innings    int    `gorm:"column:innings;not null;uniqueIndex:idx_official_ball" json:"innings"`
	OverNumber int    `gorm:"column:over_number;not null;uniqueIndex:idx_official_ball" json:"over_number"`
	BallNumber int    `gorm:"column:ball_number;not null;uniqueIndex:idx_official_ball" json:"ball_number"`

	SourceEntryID string `gorm:"column:source_entry_id;type:varchar(50);not null" json:"source_entry_id"`
	BowlerID      string `gorm:"column:bowler_id;type:varchar(50)" json:"bowler_id"`
	StrikerID     string `gorm:"column:striker_id;type:varchar(50)" json:"striker_id"`
	NonStrikerID  string `gorm:"column:non_striker_id;type:varchar(50)" json:"non_striker_id"`

	Runs         int    `gorm:"column:runs;default:0" json:"runs"`
	Extras       int    `gorm:"column:extras;default:0" json:"extras"`
	BallType     string `gorm:"column:ball_type;type:varchar(10);default:'legal'" json:"ball_type"`
	IsWicket     bool   `gorm:"column:is_wicket;default:false" json:"is_wicket"`
	WicketType   string `gorm:"column:wicket_type;type:varchar(20)" json:"wicket_type"`
	DismissedID  string `gorm:"column:dismissed_id;type:varchar(50)" json:"dismissed_id"`
	IsBoundary   bool   `gorm:"column:is_boundary;default:false" json:"is_boundary"`
	BoundaryType string `gorm:"column:boundary_type;type:varchar(10)" json:"boundary_type"`

	// VerifiedBy is "consensus" or the user id of the resolving official.
	VerifiedBy string    `gorm:"column:verified_by;type:varchar(50);not null" json:"verified_by"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`

	// Relationships
	SourceEntry *BallEntry `gorm:"foreignKey:SourceEntryID;references:ID" json:"-"`
}

// AuditLog records one row per attempted mutating call, success or failure.
// Append-only; writes are best-effort and never block the primary operation.
type AuditLog struct {
	ID         string `gorm:"column:audit_id;primaryKey;type:varchar(50)" json:"audit_id"`
	MatchID    string `gorm:"column:match_id;type:varchar(50);index;not null" json:"match_id"`
	ActorID    string `gorm:"column:actor_id;type:varchar(50);not null" json:"actor_id"`
	ActionType string `gorm:"column:action_type;type:varchar(30);not null" json:"action_type"`

	Innings    int `gorm:"column:innings;default:0" json:"innings"`
	OverNumber int `gorm:"column:over_number;default:0" json:"over_number"`
	BallNumber int `gorm:"column:ball_number;default:0" json:"ball_number"`

	OldValue string `gorm:"column:old_value;type:jsonb" json:"old_value"`
	NewValue string `gorm:"column:new_value;type:jsonb" json:"new_value"`

	IPAddress string `gorm:"column:ip_address;type:varchar(45)" json:"ip_address"`
	UserAgent string `gorm:"column:user_agent;type:varchar(255)" json:"user_agent"`
	Notes     string `gorm:"column:notes;type:text" json:"notes"`
	Success   bool   `gorm:"column:success;default:true" json:"success"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}
