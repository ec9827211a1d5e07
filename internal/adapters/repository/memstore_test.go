package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/rajstories/Nexus-hackathon-platform-sub001/internal/adapters/repository"
	"github.com/rajstories/Nexus-hackathon-platform-sub001/internal/domain/model"
)

func TestSubmissionStore(t *testing.T) {
	Convey("Given an empty store", t, func() {
		ctx := context.Background()
		store := repository.NewMemStore()

		Convey("When storing and reading a submission", func() {
			sub := model.Submission{ID: "sub-1", EventID: "evt-1", TeamID: "team-1", Title: "Demo"}
			So(store.PutSubmission(ctx, sub), ShouldBeNil)

			got, err := store.Submission(ctx, "evt-1", "sub-1")

			Convey("Then the record round-trips", func() {
				So(err, ShouldBeNil)
				So(got.TeamID, ShouldEqual, "team-1")
			})
		})

		Convey("When reading a missing submission", func() {
			_, err := store.Submission(ctx, "evt-1", "nope")

			Convey("Then it reports not found", func() {
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When listing submissions for an event", func() {
			for _, id := range []string{"sub-c", "sub-a", "sub-b"} {
				So(store.PutSubmission(ctx, model.Submission{ID: id, EventID: "evt-1"}), ShouldBeNil)
			}
			So(store.PutSubmission(ctx, model.Submission{ID: "sub-x", EventID: "evt-2"}), ShouldBeNil)

			subs, err := store.SubmissionsByEvent(ctx, "evt-1")

			Convey("Then only that event's records return, ordered by id", func() {
				So(err, ShouldBeNil)
				So(subs, ShouldHaveLength, 3)
				So(subs[0].ID, ShouldEqual, "sub-a")
				So(subs[2].ID, ShouldEqual, "sub-c")
			})
		})
	})
}

func TestReviewStore(t *testing.T) {
	Convey("Given an empty store", t, func() {
		ctx := context.Background()
		store := repository.NewMemStore()
		rev := model.Review{ID: "rev-1", EventID: "evt-1", AuthorID: "alice", Rating: 4}

		Convey("When writing a new review", func() {
			created, err := store.PutReview(ctx, rev)

			Convey("Then the write reports creation", func() {
				So(err, ShouldBeNil)
				So(created, ShouldBeTrue)
			})

			Convey("And rewriting the same id reports replacement", func() {
				rev.Rating = 5
				created, err := store.PutReview(ctx, rev)
				So(err, ShouldBeNil)
				So(created, ShouldBeFalse)

				got, err := store.Review(ctx, "evt-1", "rev-1")
				So(err, ShouldBeNil)
				So(got.Rating, ShouldEqual, 5)
			})
		})

		Convey("When deleting a review", func() {
			_, err := store.PutReview(ctx, rev)
			So(err, ShouldBeNil)

			deleted, err := store.DeleteReview(ctx, "evt-1", "rev-1")

			Convey("Then the removed record is returned", func() {
				So(err, ShouldBeNil)
				So(deleted.Rating, ShouldEqual, 4)

				_, err := store.Review(ctx, "evt-1", "rev-1")
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When deleting a missing review", func() {
			_, err := store.DeleteReview(ctx, "evt-1", "nope")

			Convey("Then it reports not found", func() {
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})
		})
	})
}

func TestPairStore(t *testing.T) {
	Convey("Given a store with a flagged pair", t, func() {
		ctx := context.Background()
		store := repository.NewMemStore()
		pair := model.SimilarityPair{
			EventID: "evt-1", Submission1ID: "sub-a", Submission2ID: "sub-b", Score: 0.93,
		}
		So(store.ReplacePairs(ctx, "evt-1", []model.SimilarityPair{pair}), ShouldBeNil)

		Convey("When looking the pair up in either id order", func() {
			forward, err1 := store.Pair(ctx, "evt-1", "sub-a", "sub-b")
			reverse, err2 := store.Pair(ctx, "evt-1", "sub-b", "sub-a")

			Convey("Then both orders resolve the canonical record", func() {
				So(err1, ShouldBeNil)
				So(err2, ShouldBeNil)
				So(forward, ShouldResemble, reverse)
			})
		})

		Convey("When replacing the event's pair set", func() {
			So(store.ReplacePairs(ctx, "evt-1", nil), ShouldBeNil)

			pairs, err := store.PairsByEvent(ctx, "evt-1")

			Convey("Then the old set is gone", func() {
				So(err, ShouldBeNil)
				So(pairs, ShouldBeEmpty)
			})
		})
	})
}

func TestScoreStore(t *testing.T) {
	Convey("Given an empty store", t, func() {
		ctx := context.Background()
		store := repository.NewMemStore()

		Convey("When upserting two sheets for the same judge and submission", func() {
			score := model.EvaluationScore{
				EventID: "evt-1", SubmissionID: "sub-a", JudgeID: "judge-1", Round: 1, TotalScore: 5,
			}
			So(store.UpsertScore(ctx, score), ShouldBeNil)
			score.TotalScore = 8
			So(store.UpsertScore(ctx, score), ShouldBeNil)

			scores, err := store.ScoresByRound(ctx, "evt-1", 1)

			Convey("Then only the latest sheet remains", func() {
				So(err, ShouldBeNil)
				So(scores, ShouldHaveLength, 1)
				So(scores[0].TotalScore, ShouldEqual, 8)
			})
		})

		Convey("When reading status of an unrecorded round", func() {
			status, err := store.RoundStatus(ctx, "evt-1", 7)

			Convey("Then the round reports open", func() {
				So(err, ShouldBeNil)
				So(status.IsFinalized, ShouldBeFalse)
				So(status.Round, ShouldEqual, 7)
			})
		})

		Convey("When recording a finalize", func() {
			status := model.RoundStatus{
				EventID: "evt-1", Round: 1, IsFinalized: true,
				FinalizedAt: time.Now().UTC(), FinalizedBy: "org-1",
			}
			So(store.SetRoundStatus(ctx, status), ShouldBeNil)

			got, err := store.RoundStatus(ctx, "evt-1", 1)

			Convey("Then the transition persists", func() {
				So(err, ShouldBeNil)
				So(got.IsFinalized, ShouldBeTrue)
				So(got.FinalizedBy, ShouldEqual, "org-1")
			})
		})
	})
}
