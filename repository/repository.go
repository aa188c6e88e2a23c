package repository

import (
	"errors"
	"fmt"
	"log"
	"time"

	"scorequorum/repository/models"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// PostgreSQL error codes
const (
	PgErrForeignKeyViolation = "23503"
	PgErrUniqueViolation     = "23505"
)

// Repository error codes
const (
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeValidationFailed = "VALIDATION_FAILED"
	CodeNotFound         = "NOT_FOUND"
	CodeConflict         = "CONFLICT"
	CodeDatabaseError    = "DATABASE_ERROR"
)

// RepositoryError represents repository layer errors
type RepositoryError struct {
	Code    string
	Message string
	Detail  string
}

func (e *RepositoryError) Error() string {
	return fmt.Sprintf("%s: %s - %s", e.Code, e.Message, e.Detail)
}

// RequestMeta carries client metadata captured for the audit trail.
type RequestMeta struct {
	IP        string
	UserAgent string
}

// Repository handles all database operations for the scoring engine
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new repository instance
func NewRepository() *Repository {
	return &Repository{}
}

// NewRepositoryWithDB wraps an already-open database handle. Used by tests.
func NewRepositoryWithDB(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// DB exposes the underlying handle for tests and tooling.
func (r *Repository) DB() *gorm.DB {
	return r.db
}

// ConnectDB establishes database connection and performs migrations
func (r *Repository) ConnectDB(dsn string) error {
	for i := 0; i < 10; i++ {
		log.Printf("Database connection attempt %d...\n", i+1)
		db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
		if err != nil {
			log.Printf("Connection attempt %d failed: %v\n", i+1, err)
			time.Sleep(2 * time.Second)
			continue
		}
		r.db = db
		log.Println("✓ Connected to database")

		if err := r.Migrate(); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}

		r.Seed()

		return nil
	}
	return fmt.Errorf("failed to connect to database after 10 attempts")
}

// Migrate performs database schema migrations
func (r *Repository) Migrate() error {
	log.Println("Running database migrations...")

	migrator := r.db.Migrator()

	// Order matters due to foreign keys
	tables := []interface{}{
		&models.User{},
		&models.Match{},
		&models.ScorerAssignment{},
		&models.BallEntry{},
		&models.BallVerification{},
		&models.OfficialBall{},
		&models.AuditLog{},
	}

	for _, table := range tables {
		if !migrator.HasTable(table) {
			if err := migrator.CreateTable(table); err != nil {
				return fmt.Errorf("failed to create table: %w", err)
			}
		}
	}

	log.Println("✓ Database migrations completed")
	return nil
}

// Seed initializes database with demo users and a demo match
func (r *Repository) Seed() {
	var userCount int64
	r.db.Model(&models.User{}).Count(&userCount)
	if userCount > 0 {
		log.Println("Seed data already exists, skipping...")
		return
	}

	log.Println("Seeding database with demo data...")

	users := []models.User{
		{ID: "USR-001", Name: "Arjun Mehta", Role: "scorer"},
		{ID: "USR-002", Name: "Priya Nair", Role: "scorer"},
		{ID: "USR-003", Name: "David Shepherd", Role: "official"},
		{ID: "USR-004", Name: "Simon Taufel", Role: "official"},
		{ID: "USR-005", Name: "Tournament Desk", Role: "organizer"},
	}
	for _, user := range users {
		r.db.Create(&user)
	}

	match := models.Match{
		ID:             "MCH-001",
		TeamAName:      "Northside CC",
		TeamBName:      "Harbour XI",
		Status:         "live",
		CurrentInnings: 1,
		BattingFirst:   models.SideTeamA,
	}
	r.db.Create(&match)

	log.Println("✓ Database seeding completed")
}

// GetMatch retrieves a match by ID
func (r *Repository) GetMatch(matchID string) (*models.Match, *RepositoryError) {
	var match models.Match
	err := r.db.Where("match_id = ?", matchID).First(&match).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &RepositoryError{
				Code:    CodeNotFound,
				Message: "Match not found",
				Detail:  fmt.Sprintf("Match %s does not exist", matchID),
			}
		}
		return nil, &RepositoryError{
			Code:    CodeDatabaseError,
			Message: "Database error",
			Detail:  err.Error(),
		}
	}
	return &match, nil
}

// isDuplicateKey reports whether err is a unique-constraint violation.
// GORM translates these for both the postgres and sqlite drivers; the
// pgconn check covers raw postgres errors that bypass translation.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == PgErrUniqueViolation {
		return true
	}
	return false
}
