// Package testutil provides shared helpers for repository and handler tests.
package testutil

import (
	"fmt"
	"testing"

	"scorequorum/repository"
	"scorequorum/repository/models"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestRepo opens a fresh in-memory database, runs migrations and
// returns a repository over it. Each call gets its own named shared-cache
// database so the connection pool sees one store.
func SetupTestRepo(t *testing.T) *repository.Repository {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to access underlying database: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	repo := repository.NewRepositoryWithDB(db)
	if err := repo.Migrate(); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return repo
}


// CreateTestUser inserts a user row.
func CreateTestUser(t *testing.T, repo *repository.Repository, id, name string) {
	t.Helper()
	user := models.User{ID: id, Name: name}
	if err := UnwrapCreate(repo, &user); err != nil {
		t.Fatalf("Failed to create test user %s: %v", id, err)
	}
}

// CreateTestMatch inserts a live match with team A batting first.
func CreateTestMatch(t *testing.T, repo *repository.Repository, id string) {
	t.Helper()
	match := models.Match{
		ID:             id,
		TeamAName:      "Northside CC",
		TeamBName:      "Harbour XI",
		Status:         "live",
		CurrentInnings: 1,
		BattingFirst:   models.SideTeamA,
	}
	if err := UnwrapCreate(repo, &match); err != nil {
		t.Fatalf("Failed to create test match %s: %v", id, err)
	}
}

// SetupScoredMatch creates a match with two assigned scorers, an umpire and
// the appointing organizer, ready for ball submissions.
func SetupScoredMatch(t *testing.T, repo *repository.Repository, matchID string) (scorerA, scorerB, umpire string) {
	t.Helper()

	scorerA, scorerB, umpire = "USR-A", "USR-B", "USR-UMP"
	CreateTestMatch(t, repo, matchID)
	CreateTestUser(t, repo, scorerA, "Scorer A")
	CreateTestUser(t, repo, scorerB, "Scorer B")
	CreateTestUser(t, repo, umpire, "Umpire")
	CreateTestUser(t, repo, "USR-ORG", "Organizer")

	_, repoErr := repo.AssignScorers(repository.AssignScorersParams{
		MatchID:       matchID,
		TeamAScorerID: scorerA,
		TeamBScorerID: scorerB,
		AppointedBy:   "USR-ORG",
		UmpireID:      umpire,
	})
	if repoErr != nil {
		t.Fatalf("Failed to assign test scorers: %v", repoErr)
	}

	return scorerA, scorerB, umpire
}

// UnwrapCreate inserts a model through the repository's handle.
func UnwrapCreate(repo *repository.Repository, value interface{}) error {
	return repo.DB().Create(value).Error
}
