package repository

import (
	"testing"
	"time"

	"scorequorum/repository/models"

	"github.com/smartystreets/goconvey/convey"
)

func entryAt(id string, offset time.Duration, runs int) models.BallEntry {
	return models.BallEntry{
		ID:        id,
		Runs:      runs,
		BallType:  models.BallTypeLegal,
		CreatedAt: time.Now().Add(offset),
	}
}

func TestMajority(t *testing.T) {
	convey.Convey("Given a set of ball entries for one delivery", t, func() {
		convey.Convey("When there are no entries", func() {
			winner, matching, total, reached := majority(nil)

			convey.So(winner, convey.ShouldBeNil)
			convey.So(matching, convey.ShouldEqual, 0)
			convey.So(total, convey.ShouldEqual, 0)
			convey.So(reached, convey.ShouldBeFalse)
		})

		convey.Convey("When a single scorer has entered", func() {
			entries := []models.BallEntry{entryAt("ENT-1", 0, 4)}
			_, matching, total, reached := majority(entries)

			convey.So(matching, convey.ShouldEqual, 1)
			convey.So(total, convey.ShouldEqual, 1)
			convey.So(reached, convey.ShouldBeFalse)
		})

		convey.Convey("When two scorers agree", func() {
			entries := []models.BallEntry{
				entryAt("ENT-1", 0, 4),
				entryAt("ENT-2", time.Second, 4),
			}
			winner, matching, total, reached := majority(entries)

			convey.So(reached, convey.ShouldBeTrue)
			convey.So(matching, convey.ShouldEqual, 2)
			convey.So(total, convey.ShouldEqual, 2)
			convey.So(winner.ID, convey.ShouldEqual, "ENT-1")
		})

		convey.Convey("When two scorers disagree", func() {
			// One-of-two is not a majority of anything but itself;
			// this must surface as a dispute, never an agreement.
			entries := []models.BallEntry{
				entryAt("ENT-1", 0, 4),
				entryAt("ENT-2", time.Second, 6),
			}
			_, matching, total, reached := majority(entries)

			convey.So(reached, convey.ShouldBeFalse)
			convey.So(matching, convey.ShouldEqual, 1)
			convey.So(total, convey.ShouldEqual, 2)
		})

		convey.Convey("When two of three agree", func() {
			entries := []models.BallEntry{
				entryAt("ENT-1", 0, 4),
				entryAt("ENT-2", time.Second, 6),
				entryAt("ENT-3", 2*time.Second, 4),
			}
			winner, matching, total, reached := majority(entries)

			convey.So(reached, convey.ShouldBeTrue)
			convey.So(matching, convey.ShouldEqual, 2)
			convey.So(total, convey.ShouldEqual, 3)
			convey.So(winner.ID, convey.ShouldEqual, "ENT-1")
		})

		convey.Convey("When four entries split two against two", func() {
			entries := []models.BallEntry{
				entryAt("ENT-1", 0, 4),
				entryAt("ENT-2", time.Second, 6),
				entryAt("ENT-3", 2*time.Second, 4),
				entryAt("ENT-4", 3*time.Second, 6),
			}
			_, matching, total, reached := majority(entries)

			convey.So(reached, convey.ShouldBeFalse)
			convey.So(matching, convey.ShouldEqual, 2)
			convey.So(total, convey.ShouldEqual, 4)
		})

		convey.Convey("When the winner must be deterministic", func() {
			// Earliest entry of the largest group wins regardless of
			// which submission triggered the evaluation.
			entries := []models.BallEntry{
				entryAt("ENT-1", 0, 6),
				entryAt("ENT-2", time.Second, 6),
				entryAt("ENT-3", 2*time.Second, 6),
			}
			winner, _, _, reached := majority(entries)

			convey.So(reached, convey.ShouldBeTrue)
			convey.So(winner.ID, convey.ShouldEqual, "ENT-1")
		})

		convey.Convey("When entries differ only in participants", func() {
			a := entryAt("ENT-1", 0, 1)
			a.StrikerID = "USR-010"
			b := entryAt("ENT-2", time.Second, 1)
			b.StrikerID = "USR-011"

			_, matching, _, reached := majority([]models.BallEntry{a, b})

			convey.So(reached, convey.ShouldBeTrue)
			convey.So(matching, convey.ShouldEqual, 2)
		})
	})
}

func TestBattingSideFor(t *testing.T) {
	convey.Convey("Given a match where team A bats first", t, func() {
		match := &models.Match{BattingFirst: models.SideTeamA}

		convey.So(battingSideFor(match, 1), convey.ShouldEqual, models.SideTeamA)
		convey.So(battingSideFor(match, 2), convey.ShouldEqual, models.SideTeamB)
		convey.So(battingSideFor(match, 3), convey.ShouldEqual, models.SideTeamA)
	})

	convey.Convey("Given a match where team B bats first", t, func() {
		match := &models.Match{BattingFirst: models.SideTeamB}

		convey.So(battingSideFor(match, 1), convey.ShouldEqual, models.SideTeamB)
		convey.So(battingSideFor(match, 2), convey.ShouldEqual, models.SideTeamA)
	})
}

func TestCountsTowardOver(t *testing.T) {
	convey.Convey("Given the delivery types", t, func() {
		convey.So(countsTowardOver(models.BallTypeLegal), convey.ShouldBeTrue)
		convey.So(countsTowardOver(models.BallTypeBye), convey.ShouldBeTrue)
		convey.So(countsTowardOver(models.BallTypeLegBye), convey.ShouldBeTrue)
		convey.So(countsTowardOver(models.BallTypeWide), convey.ShouldBeFalse)
		convey.So(countsTowardOver(models.BallTypeNoBall), convey.ShouldBeFalse)
	})
}

func TestOversString(t *testing.T) {
	convey.Convey("Given legal-ball counts", t, func() {
		convey.So(OversString(0), convey.ShouldEqual, "0.0")
		convey.So(OversString(5), convey.ShouldEqual, "0.5")
		convey.So(OversString(6), convey.ShouldEqual, "1.0")
		convey.So(OversString(27), convey.ShouldEqual, "4.3")
	})
}
