package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/rajstories/Nexus-hackathon-platform-sub001/internal/adapters/broadcast"
	"github.com/rajstories/Nexus-hackathon-platform-sub001/internal/app"
	"github.com/rajstories/Nexus-hackathon-platform-sub001/internal/config"
	"github.com/rajstories/Nexus-hackathon-platform-sub001/internal/domain/model"
	"github.com/rajstories/Nexus-hackathon-platform-sub001/internal/domain/rounds"
	"github.com/rajstories/Nexus-hackathon-platform-sub001/pkg/logger"
)

func init() {
	// Initialize logging for tests
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

// testConfig returns defaults with broadcast debouncing disabled so
// tests observe every message.
func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	cfg.Broadcast.DebounceMS = 0
	return cfg
}

func receive(ch <-chan broadcast.Message, timeout time.Duration) (broadcast.Message, bool) {
	select {
	case msg, ok := <-ch:
		return msg, ok
	case <-time.After(timeout):
		return broadcast.Message{}, false
	}
}

func TestServiceReviews(t *testing.T) {
	Convey("Given a started service with a live subscriber", t, func() {
		ctx := context.Background()
		svc := app.New(testConfig(t))
		svc.Start(ctx)
		defer svc.Stop(ctx)

		ch := svc.Subscribe(ctx, "evt-1", "client-1")

		Convey("When a review is ingested", func() {
			isUpdate, err := svc.IngestReview(ctx, model.Review{
				ID: "rev-1", EventID: "evt-1", AuthorID: "alice",
				Role: model.RoleParticipant, Rating: 4,
			})

			Convey("Then subscribers see a review:new message", func() {
				So(err, ShouldBeNil)
				So(isUpdate, ShouldBeFalse)

				msg, got := receive(ch, 2*time.Second)
				So(got, ShouldBeTrue)
				So(msg.Type, ShouldEqual, broadcast.TypeReviewNew)
				payload := msg.Payload.(broadcast.ReviewNew)
				So(payload.Review.ID, ShouldEqual, "rev-1")
				So(payload.IsUpdate, ShouldBeFalse)
			})

			Convey("And re-posting the same review id is an update", func() {
				isUpdate, err := svc.IngestReview(ctx, model.Review{
					ID: "rev-1", EventID: "evt-1", AuthorID: "alice",
					Role: model.RoleParticipant, Rating: 5,
				})
				So(err, ShouldBeNil)
				So(isUpdate, ShouldBeTrue)
			})

			Convey("And deleting it broadcasts the id and rating", func() {
				_, _ = receive(ch, 2*time.Second) // drain review:new
				So(svc.DeleteReview(ctx, "evt-1", "rev-1"), ShouldBeNil)

				msg, got := receive(ch, 2*time.Second)
				So(got, ShouldBeTrue)
				So(msg.Type, ShouldEqual, broadcast.TypeReviewDeleted)
				payload := msg.Payload.(broadcast.ReviewDeleted)
				So(payload.ReviewID, ShouldEqual, "rev-1")
				So(payload.Rating, ShouldEqual, 4)
			})
		})

		Convey("When deleting a review that does not exist", func() {
			err := svc.DeleteReview(ctx, "evt-1", "nope")

			Convey("Then the error surfaces and nothing is broadcast", func() {
				So(err, ShouldNotBeNil)
				_, got := receive(ch, 150*time.Millisecond)
				So(got, ShouldBeFalse)
			})
		})
	})
}

func TestServiceScoring(t *testing.T) {
	Convey("Given a started service with a configured panel", t, func() {
		ctx := context.Background()
		svc := app.New(testConfig(t))
		svc.Start(ctx)
		defer svc.Stop(ctx)

		So(svc.IngestSubmission(ctx, model.Submission{
			ID: "sub-a", EventID: "evt-1", TeamID: "team-a", Title: "Demo",
		}), ShouldBeNil)
		svc.ConfigurePanel(ctx, "evt-1", 1, map[string]float64{"innovation": 1}, 2)

		ch := svc.Subscribe(ctx, "evt-1", "client-1")

		Convey("When a judge submits a score", func() {
			err := svc.SubmitScore(ctx, model.EvaluationScore{
				EventID: "evt-1", SubmissionID: "sub-a", JudgeID: "judge-1", Round: 1,
				CriteriaScores: map[string]float64{"innovation": 7},
			})

			Convey("Then the leaderboard is recomputed and broadcast", func() {
				So(err, ShouldBeNil)

				entries, err := svc.Leaderboard(ctx, "evt-1", 1)
				So(err, ShouldBeNil)
				So(entries, ShouldHaveLength, 1)
				So(entries[0].AggregateScore, ShouldAlmostEqual, 7.0, 1e-9)
				So(entries[0].TotalJudges, ShouldEqual, 2)

				msg, got := receive(ch, 2*time.Second)
				So(got, ShouldBeTrue)
				So(msg.Type, ShouldEqual, broadcast.TypeLeaderboardUpdate)
			})

			Convey("And finalizing closes the round and notifies", func() {
				_, _ = receive(ch, 2*time.Second) // drain leaderboard-update
				status, err := svc.Finalize(ctx, "evt-1", 1, "org-1")
				So(err, ShouldBeNil)
				So(status.IsFinalized, ShouldBeTrue)

				msg, got := receive(ch, 2*time.Second)
				So(got, ShouldBeTrue)
				So(msg.Type, ShouldEqual, broadcast.TypeRoundFinalized)

				err = svc.SubmitScore(ctx, model.EvaluationScore{
					EventID: "evt-1", SubmissionID: "sub-a", JudgeID: "judge-2", Round: 1,
					CriteriaScores: map[string]float64{"innovation": 9},
				})
				So(errors.Is(err, rounds.ErrAlreadyFinalized), ShouldBeTrue)
			})
		})
	})
}

// seedCorpus ingests four submissions where only sub-a and sub-b are
// near duplicates.
func seedCorpus(ctx context.Context, t *testing.T, svc *app.Service, eventID string) {
	t.Helper()

	text := "decentralized ballot ledger verifying anonymous votes using zero " +
		"knowledge proofs across precinct tallies ensuring auditable outcomes " +
		"municipal referendums provincial plebiscites transparent recounts"
	others := []string{
		"compiler optimization pipeline rewriting intermediate representation " +
			"bytecode lowering register allocation spill heuristics instruction " +
			"scheduling loop unrolling peephole transformations dataflow lattice",
		"orbital telescope spectrograph calibration measuring stellar parallax " +
			"nebula photometry detector cooling cryogenic baffles mirror coating " +
			"interferometer alignment guidance gyroscopes",
	}
	So(svc.IngestSubmission(ctx, model.Submission{ID: "sub-a", EventID: eventID, CorpusText: text}), ShouldBeNil)
	So(svc.IngestSubmission(ctx, model.Submission{ID: "sub-b", EventID: eventID, CorpusText: text + " verifiable"}), ShouldBeNil)
	So(svc.IngestSubmission(ctx, model.Submission{ID: "sub-c", EventID: eventID, CorpusText: others[0]}), ShouldBeNil)
	So(svc.IngestSubmission(ctx, model.Submission{ID: "sub-d", EventID: eventID, CorpusText: others[1]}), ShouldBeNil)
}

func TestServiceAnalysis(t *testing.T) {
	Convey("Given a service with seeded submissions and reviews", t, func() {
		ctx := context.Background()
		svc := app.New(testConfig(t))
		svc.Start(ctx)
		defer svc.Stop(ctx)

		seedCorpus(ctx, t, svc, "evt-1")

		Convey("When running similarity analysis", func() {
			report, err := svc.AnalyzeSimilarity(ctx, "evt-1")

			Convey("Then the near-duplicate pair is flagged and reviewable", func() {
				So(err, ShouldBeNil)
				So(report.Flagged, ShouldEqual, 1)

				pair, err := svc.MarkPairReviewed(ctx, "evt-1", "sub-b", "sub-a", "org-1", "shared template")
				So(err, ShouldBeNil)
				So(pair.Reviewed, ShouldBeTrue)
			})
		})

		Convey("When running integrity analysis over unverifiable reviewers", func() {
			svc.RegisterParticipant(ctx, "evt-1", "alice", model.RoleParticipant)
			_, err := svc.IngestReview(ctx, model.Review{
				ID: "rev-1", EventID: "evt-1", AuthorID: "alice",
				Role: model.RoleParticipant, Rating: 4,
			})
			So(err, ShouldBeNil)
			_, err = svc.IngestReview(ctx, model.Review{
				ID: "rev-2", EventID: "evt-1", AuthorID: "ghost",
				Role: model.RoleParticipant, Rating: 4,
			})
			So(err, ShouldBeNil)

			flags, err := svc.AnalyzeIntegrity(ctx, "evt-1")

			Convey("Then the unverifiable review is flagged", func() {
				So(err, ShouldBeNil)
				So(flags, ShouldHaveLength, 1)
				So(flags[0].ReviewID, ShouldEqual, "rev-2")
				So(flags[0].Reason, ShouldEqual, model.ReasonInvalidUser)

				flagged, err := svc.IntegrityFlags(ctx, "evt-1")
				So(err, ShouldBeNil)
				So(flagged, ShouldHaveLength, 1)
				So(flagged[0].Review, ShouldNotBeNil)
			})
		})
	})

	Convey("Given a service configured to keep a single term per document", t, func() {
		ctx := context.Background()
		cfg := testConfig(t)
		cfg.Similarity.DocTopTerms = 1
		svc := app.New(cfg)
		svc.Start(ctx)
		defer svc.Stop(ctx)

		seedCorpus(ctx, t, svc, "evt-pruned")

		Convey("When running similarity analysis", func() {
			report, err := svc.AnalyzeSimilarity(ctx, "evt-pruned")

			Convey("Then the pruned vectors no longer overlap and nothing is flagged", func() {
				So(err, ShouldBeNil)
				So(report.Flagged, ShouldEqual, 0)
			})
		})
	})
}
