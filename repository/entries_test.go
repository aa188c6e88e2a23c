package repository_test

import (
	"testing"

	"scorequorum/repository"
	"scorequorum/repository/models"
	"scorequorum/testutil"

	"github.com/smartystreets/goconvey/convey"
)

func legalBall(matchID, scorerID string, over, ball, runs int) repository.SubmitBallParams {
	return repository.SubmitBallParams{
		MatchID:    matchID,
		ScorerID:   scorerID,
		Innings:    1,
		OverNumber: over,
		BallNumber: ball,
		Outcome: repository.BallOutcome{
			Runs:     runs,
			BallType: models.BallTypeLegal,
		},
		Participants: repository.BallParticipants{
			BowlerID:  "USR-BWL",
			StrikerID: "USR-STR",
		},
	}
}

func TestSubmitBallEntry_Authorization(t *testing.T) {
	convey.Convey("Given a match with assigned scorers", t, func() {
		repo := testutil.SetupTestRepo(t)
		testutil.SetupScoredMatch(t, repo, "MCH-T01")

		convey.Convey("When an unassigned user submits an entry", func() {
			testutil.CreateTestUser(t, repo, "USR-X", "Spectator")
			result, repoErr := repo.SubmitBallEntry(legalBall("MCH-T01", "USR-X", 1, 1, 4))

			convey.Convey("Then the submission is rejected without storing evidence", func() {
				convey.So(result, convey.ShouldBeNil)
				convey.So(repoErr, convey.ShouldNotBeNil)
				convey.So(repoErr.Code, convey.ShouldEqual, repository.CodeUnauthorized)

				var entries int64
				repo.DB().Model(&models.BallEntry{}).Count(&entries)
				convey.So(entries, convey.ShouldEqual, 0)
			})

			convey.Convey("And the failed attempt is audited", func() {
				var audits []models.AuditLog
				repo.DB().Where("action_type = ?", models.ActionBallEntry).Find(&audits)
				convey.So(len(audits), convey.ShouldEqual, 1)
				convey.So(audits[0].Success, convey.ShouldBeFalse)
				convey.So(audits[0].ActorID, convey.ShouldEqual, "USR-X")
			})
		})

		convey.Convey("When the match does not exist", func() {
			_, repoErr := repo.SubmitBallEntry(legalBall("MCH-NOPE", "USR-A", 1, 1, 4))

			convey.So(repoErr, convey.ShouldNotBeNil)
			convey.So(repoErr.Code, convey.ShouldEqual, repository.CodeNotFound)
		})
	})
}

func TestSubmitBallEntry_Validation(t *testing.T) {
	convey.Convey("Given an assigned scorer", t, func() {
		repo := testutil.SetupTestRepo(t)
		scorerA, _, _ := testutil.SetupScoredMatch(t, repo, "MCH-T02")

		cases := []struct {
			name   string
			mutate func(*repository.SubmitBallParams)
		}{
			{"a zero over number", func(p *repository.SubmitBallParams) { p.OverNumber = 0 }},
			{"a zero ball number", func(p *repository.SubmitBallParams) { p.BallNumber = 0 }},
			{"negative runs", func(p *repository.SubmitBallParams) { p.Outcome.Runs = -1 }},
			{"an unknown ball type", func(p *repository.SubmitBallParams) { p.Outcome.BallType = "googly" }},
			{"a wicket without a wicket type", func(p *repository.SubmitBallParams) { p.Outcome.IsWicket = true }},
			{"a boundary scoring three", func(p *repository.SubmitBallParams) {
				p.Outcome.IsBoundary = true
				p.Outcome.Runs = 3
			}},
		}

		for _, tc := range cases {
			tc := tc
			convey.Convey("When the entry has "+tc.name, func() {
				params := legalBall("MCH-T02", scorerA, 1, 1, 1)
				tc.mutate(&params)

				result, repoErr := repo.SubmitBallEntry(params)

				convey.So(result, convey.ShouldBeNil)
				convey.So(repoErr, convey.ShouldNotBeNil)
				convey.So(repoErr.Code, convey.ShouldEqual, repository.CodeValidationFailed)
			})
		}
	})
}

func TestSubmitBallEntry_Consensus(t *testing.T) {
	convey.Convey("Given a match with two assigned scorers", t, func() {
		repo := testutil.SetupTestRepo(t)
		scorerA, scorerB, _ := testutil.SetupScoredMatch(t, repo, "MCH-T03")

		convey.Convey("When the first scorer records a boundary four", func() {
			params := legalBall("MCH-T03", scorerA, 1, 1, 4)
			params.Outcome.IsBoundary = true
			params.Outcome.BoundaryType = "four"

			result, repoErr := repo.SubmitBallEntry(params)

			convey.So(repoErr, convey.ShouldBeNil)
			convey.So(result.Status, convey.ShouldEqual, repository.StatusPending)
			convey.So(result.ConsensusReached, convey.ShouldBeFalse)
			convey.So(result.TotalEntries, convey.ShouldEqual, 1)

			convey.Convey("And the second scorer agrees", func() {
				agree := legalBall("MCH-T03", scorerB, 1, 1, 4)
				agree.Outcome.IsBoundary = true
				agree.Outcome.BoundaryType = "four"

				second, repoErr := repo.SubmitBallEntry(agree)

				convey.So(repoErr, convey.ShouldBeNil)
				convey.So(second.Status, convey.ShouldEqual, repository.StatusVerified)
				convey.So(second.ConsensusReached, convey.ShouldBeTrue)
				convey.So(second.TotalEntries, convey.ShouldEqual, 2)
				convey.So(second.MatchingEntries, convey.ShouldEqual, 2)

				convey.Convey("Then exactly one official ball exists", func() {
					var officials []models.OfficialBall
					repo.DB().Where("match_id = ?", "MCH-T03").Find(&officials)
					convey.So(len(officials), convey.ShouldEqual, 1)
					convey.So(officials[0].VerifiedBy, convey.ShouldEqual, repository.VerifiedByConsensus)
					convey.So(officials[0].SourceEntryID, convey.ShouldEqual, result.EntryID)
					convey.So(officials[0].Runs, convey.ShouldEqual, 4)
				})

				convey.Convey("And the batting side's totals advance", func() {
					match, repoErr := repo.GetMatch("MCH-T03")
					convey.So(repoErr, convey.ShouldBeNil)
					convey.So(match.TeamARuns, convey.ShouldEqual, 4)
					convey.So(match.TeamAWickets, convey.ShouldEqual, 0)
					convey.So(match.TeamABalls, convey.ShouldEqual, 1)
					convey.So(match.TeamBRuns, convey.ShouldEqual, 0)
				})
			})

			convey.Convey("And the second scorer disagrees", func() {
				second, repoErr := repo.SubmitBallEntry(legalBall("MCH-T03", scorerB, 1, 1, 6))

				convey.So(repoErr, convey.ShouldBeNil)
				convey.So(second.Status, convey.ShouldEqual, repository.StatusDisputed)
				convey.So(second.ConsensusReached, convey.ShouldBeFalse)
				convey.So(second.TotalEntries, convey.ShouldEqual, 2)
				convey.So(second.MatchingEntries, convey.ShouldEqual, 1)

				convey.Convey("Then no official ball exists and totals stay put", func() {
					var officials int64
					repo.DB().Model(&models.OfficialBall{}).Count(&officials)
					convey.So(officials, convey.ShouldEqual, 0)

					match, _ := repo.GetMatch("MCH-T03")
					convey.So(match.TeamARuns, convey.ShouldEqual, 0)
					convey.So(match.TeamABalls, convey.ShouldEqual, 0)
				})
			})
		})

		convey.Convey("When a scorer repeats a delivery they already recorded", func() {
			_, repoErr := repo.SubmitBallEntry(legalBall("MCH-T03", scorerA, 2, 3, 1))
			convey.So(repoErr, convey.ShouldBeNil)

			result, repoErr := repo.SubmitBallEntry(legalBall("MCH-T03", scorerA, 2, 3, 2))

			convey.Convey("Then the repeat is a conflict, not an amendment", func() {
				convey.So(result, convey.ShouldBeNil)
				convey.So(repoErr, convey.ShouldNotBeNil)
				convey.So(repoErr.Code, convey.ShouldEqual, repository.CodeConflict)

				var entries int64
				repo.DB().Model(&models.BallEntry{}).
					Where("match_id = ? AND innings = 1 AND over_number = 2 AND ball_number = 3", "MCH-T03").
					Count(&entries)
				convey.So(entries, convey.ShouldEqual, 1)
			})
		})
	})
}

func TestSubmitBallEntry_ForwardOnlyVerdict(t *testing.T) {
	convey.Convey("Given a delivery already verified by consensus", t, func() {
		repo := testutil.SetupTestRepo(t)
		scorerA, scorerB, umpire := testutil.SetupScoredMatch(t, repo, "MCH-T04")

		_, repoErr := repo.SubmitBallEntry(legalBall("MCH-T04", scorerA, 1, 1, 2))
		convey.So(repoErr, convey.ShouldBeNil)
		second, repoErr := repo.SubmitBallEntry(legalBall("MCH-T04", scorerB, 1, 1, 2))
		convey.So(repoErr, convey.ShouldBeNil)
		convey.So(second.ConsensusReached, convey.ShouldBeTrue)

		convey.Convey("When a later conflicting entry arrives", func() {
			// The umpire holds an active assignment, so the entry is
			// accepted as late evidence.
			late, repoErr := repo.SubmitBallEntry(legalBall("MCH-T04", umpire, 1, 1, 6))

			convey.Convey("Then the verdict does not regress", func() {
				convey.So(repoErr, convey.ShouldBeNil)
				convey.So(late.Status, convey.ShouldEqual, repository.StatusVerified)
				convey.So(late.ConsensusReached, convey.ShouldBeTrue)
				convey.So(late.TotalEntries, convey.ShouldEqual, 3)
				convey.So(late.MatchingEntries, convey.ShouldEqual, 2)
			})

			convey.Convey("And the official record and totals are untouched", func() {
				var officials []models.OfficialBall
				repo.DB().Where("match_id = ?", "MCH-T04").Find(&officials)
				convey.So(len(officials), convey.ShouldEqual, 1)
				convey.So(officials[0].Runs, convey.ShouldEqual, 2)

				match, _ := repo.GetMatch("MCH-T04")
				convey.So(match.TeamARuns, convey.ShouldEqual, 2)
				convey.So(match.TeamABalls, convey.ShouldEqual, 1)
			})
		})

		convey.Convey("When a later agreeing entry arrives", func() {
			late, repoErr := repo.SubmitBallEntry(legalBall("MCH-T04", umpire, 1, 1, 2))

			convey.Convey("Then the counters track the settled outcome", func() {
				convey.So(repoErr, convey.ShouldBeNil)
				convey.So(late.ConsensusReached, convey.ShouldBeTrue)
				convey.So(late.TotalEntries, convey.ShouldEqual, 3)
				convey.So(late.MatchingEntries, convey.ShouldEqual, 3)
			})

			convey.Convey("And still exactly one official ball exists", func() {
				var officials int64
				repo.DB().Model(&models.OfficialBall{}).Where("match_id = ?", "MCH-T04").Count(&officials)
				convey.So(officials, convey.ShouldEqual, 1)
			})
		})
	})
}

func TestSubmitBallEntry_LostMaterializationRace(t *testing.T) {
	convey.Convey("Given a delivery another submission already materialized", t, func() {
		repo := testutil.SetupTestRepo(t)
		scorerA, scorerB, _ := testutil.SetupScoredMatch(t, repo, "MCH-T06")

		// The state a losing transaction observes mid-race: the official
		// ball and the totals are committed, the verification row exists,
		// but the verdict it read is not yet settled.
		official := models.OfficialBall{
			ID:            "OFB-RACE",
			MatchID:       "MCH-T06",
			Innings:       1,
			OverNumber:    1,
			BallNumber:    1,
			SourceEntryID: "ENT-RACE",
			Runs:          4,
			BallType:      models.BallTypeLegal,
			VerifiedBy:    repository.VerifiedByConsensus,
		}
		convey.So(testutil.UnwrapCreate(repo, &official), convey.ShouldBeNil)

		verification := models.BallVerification{
			ID:         "VRF-RACE",
			MatchID:    "MCH-T06",
			Innings:    1,
			OverNumber: 1,
			BallNumber: 1,
		}
		convey.So(testutil.UnwrapCreate(repo, &verification), convey.ShouldBeNil)

		err := repo.DB().Model(&models.Match{}).Where("match_id = ?", "MCH-T06").
			Updates(map[string]interface{}{"team_a_runs": 4, "team_a_balls": 1}).Error
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("When agreeing entries drive the evaluation again", func() {
			_, repoErr := repo.SubmitBallEntry(legalBall("MCH-T06", scorerA, 1, 1, 4))
			convey.So(repoErr, convey.ShouldBeNil)
			second, repoErr := repo.SubmitBallEntry(legalBall("MCH-T06", scorerB, 1, 1, 4))
			convey.So(repoErr, convey.ShouldBeNil)
			convey.So(second.ConsensusReached, convey.ShouldBeTrue)

			convey.Convey("Then the existing official ball is left untouched", func() {
				var officials []models.OfficialBall
				repo.DB().Where("match_id = ?", "MCH-T06").Find(&officials)
				convey.So(len(officials), convey.ShouldEqual, 1)
				convey.So(officials[0].ID, convey.ShouldEqual, "OFB-RACE")
				convey.So(officials[0].SourceEntryID, convey.ShouldEqual, "ENT-RACE")
			})

			convey.Convey("And the totals are not applied twice", func() {
				match, _ := repo.GetMatch("MCH-T06")
				convey.So(match.TeamARuns, convey.ShouldEqual, 4)
				convey.So(match.TeamABalls, convey.ShouldEqual, 1)
			})
		})
	})
}

func TestSubmitBallEntry_ExtrasAndOvers(t *testing.T) {
	convey.Convey("Given a match with two assigned scorers", t, func() {
		repo := testutil.SetupTestRepo(t)
		scorerA, scorerB, _ := testutil.SetupScoredMatch(t, repo, "MCH-T05")

		agreeOn := func(params repository.SubmitBallParams) {
			a := params
			a.ScorerID = scorerA
			b := params
			b.ScorerID = scorerB
			_, repoErr := repo.SubmitBallEntry(a)
			convey.So(repoErr, convey.ShouldBeNil)
			result, repoErr := repo.SubmitBallEntry(b)
			convey.So(repoErr, convey.ShouldBeNil)
			convey.So(result.ConsensusReached, convey.ShouldBeTrue)
		}

		convey.Convey("When a wide is verified", func() {
			wide := legalBall("MCH-T05", "", 1, 1, 0)
			wide.Outcome.BallType = models.BallTypeWide
			wide.Outcome.Extras = 1
			agreeOn(wide)

			convey.Convey("Then the run counts but the ball is re-bowled", func() {
				match, _ := repo.GetMatch("MCH-T05")
				convey.So(match.TeamARuns, convey.ShouldEqual, 1)
				convey.So(match.TeamABalls, convey.ShouldEqual, 0)
			})
		})

		convey.Convey("When a leg bye is verified", func() {
			legBye := legalBall("MCH-T05", "", 1, 2, 0)
			legBye.Outcome.BallType = models.BallTypeLegBye
			legBye.Outcome.Extras = 2
			agreeOn(legBye)

			convey.Convey("Then the runs count and the over advances", func() {
				match, _ := repo.GetMatch("MCH-T05")
				convey.So(match.TeamARuns, convey.ShouldEqual, 2)
				convey.So(match.TeamABalls, convey.ShouldEqual, 1)
			})
		})

		convey.Convey("When a second-innings delivery is verified", func() {
			ball := legalBall("MCH-T05", "", 5, 1, 3)
			ball.Innings = 2
			agreeOn(ball)

			convey.Convey("Then the other side's totals advance", func() {
				match, _ := repo.GetMatch("MCH-T05")
				convey.So(match.TeamBRuns, convey.ShouldEqual, 3)
				convey.So(match.TeamBBalls, convey.ShouldEqual, 1)
				convey.So(match.TeamARuns, convey.ShouldEqual, 0)
			})
		})
	})
}
