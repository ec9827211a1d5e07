package integrity_test

import (
	"context"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/rajstories/Nexus-hackathon-platform-sub001/internal/adapters/repository"
	"github.com/rajstories/Nexus-hackathon-platform-sub001/internal/domain/integrity"
	"github.com/rajstories/Nexus-hackathon-platform-sub001/internal/domain/model"
	"github.com/rajstories/Nexus-hackathon-platform-sub001/internal/domain/participation"
	"github.com/rajstories/Nexus-hackathon-platform-sub001/pkg/logger"
)

func init() {
	// Initialize logging for tests
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

// seedReviews stores reviews hours apart with registered authors so
// only the detector under test fires.
func seedReviews(ctx context.Context, store *repository.MemStore, verifier *participation.StaticVerifier, eventID string, ratings []int) {
	base := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	for i, rating := range ratings {
		author := "author-" + string(rune('a'+i))
		verifier.Register(ctx, eventID, author, model.RoleParticipant)
		_, _ = store.PutReview(ctx, model.Review{
			ID:        "rev-" + string(rune('a'+i)),
			EventID:   eventID,
			AuthorID:  author,
			Role:      model.RoleParticipant,
			Rating:    rating,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		})
	}
}

func TestAnalyzeOutliers(t *testing.T) {
	Convey("Given an event whose ratings contain a clear outlier", t, func() {
		ctx := context.Background()
		store := repository.NewMemStore()
		verifier := participation.NewStaticVerifier()
		// median 4, MAD 0.5: the rating of 1 scores z = -4.05.
		seedReviews(ctx, store, verifier, "evt-1", []int{4, 4, 4, 5, 5, 1})
		analyzer := integrity.NewAnalyzer(store, store, verifier)

		Convey("When analyzing the event", func() {
			flags, err := analyzer.Analyze(ctx, "evt-1")

			Convey("Then exactly the outlier review is flagged", func() {
				So(err, ShouldBeNil)
				So(flags, ShouldHaveLength, 1)
				So(flags[0].ReviewID, ShouldEqual, "rev-f")
				So(flags[0].Reason, ShouldEqual, model.ReasonOutlierRating)
				So(flags[0].Score, ShouldAlmostEqual, -4.047, 0.001)
				So(flags[0].Metadata.DetectionMethod, ShouldEqual, "modified_zscore_mad")
				So(flags[0].Metadata.EventAverageRating, ShouldAlmostEqual, 23.0/6.0, 1e-9)
			})
		})

		Convey("When analyzing twice", func() {
			first, err := analyzer.Analyze(ctx, "evt-1")
			So(err, ShouldBeNil)
			second, err := analyzer.Analyze(ctx, "evt-1")

			Convey("Then the reconfirmed flag keeps its original detection time", func() {
				So(err, ShouldBeNil)
				So(second, ShouldHaveLength, 1)
				So(second[0].FlaggedAt.Equal(first[0].FlaggedAt), ShouldBeTrue)
			})
		})
	})

	Convey("Given an event where the MAD is zero", t, func() {
		ctx := context.Background()
		store := repository.NewMemStore()
		verifier := participation.NewStaticVerifier()
		seedReviews(ctx, store, verifier, "evt-2", []int{5, 5, 5, 5, 1})
		analyzer := integrity.NewAnalyzer(store, store, verifier)

		Convey("When analyzing the event", func() {
			flags, err := analyzer.Analyze(ctx, "evt-2")

			Convey("Then outlier detection is skipped outright", func() {
				So(err, ShouldBeNil)
				So(flags, ShouldBeEmpty)
			})
		})
	})

	Convey("Given an event with no reviews", t, func() {
		ctx := context.Background()
		store := repository.NewMemStore()
		analyzer := integrity.NewAnalyzer(store, store, participation.NewStaticVerifier())

		Convey("When analyzing the event", func() {
			flags, err := analyzer.Analyze(ctx, "evt-3")

			Convey("Then the run succeeds with no flags", func() {
				So(err, ShouldBeNil)
				So(flags, ShouldBeEmpty)
			})
		})
	})
}

func TestAnalyzeInvalidUsers(t *testing.T) {
	Convey("Given a review by an author with no event role", t, func() {
		ctx := context.Background()
		store := repository.NewMemStore()
		verifier := participation.NewStaticVerifier()
		seedReviews(ctx, store, verifier, "evt-1", []int{4, 4, 4, 5, 5})
		_, _ = store.PutReview(ctx, model.Review{
			ID: "rev-ghost", EventID: "evt-1", AuthorID: "ghost",
			Role: model.RoleParticipant, Rating: 4,
			CreatedAt: time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC),
		})
		analyzer := integrity.NewAnalyzer(store, store, verifier)

		Convey("When analyzing the event", func() {
			flags, err := analyzer.Analyze(ctx, "evt-1")

			Convey("Then only the unverifiable review is flagged", func() {
				So(err, ShouldBeNil)
				So(flags, ShouldHaveLength, 1)
				So(flags[0].ReviewID, ShouldEqual, "rev-ghost")
				So(flags[0].Reason, ShouldEqual, model.ReasonInvalidUser)
				So(flags[0].Metadata.DetectionMethod, ShouldEqual, "participation_lookup")
			})
		})
	})
}

func TestAnalyzeSuspiciousPatterns(t *testing.T) {
	Convey("Given one author posting a burst of reviews", t, func() {
		ctx := context.Background()
		store := repository.NewMemStore()
		verifier := participation.NewStaticVerifier()
		verifier.Register(ctx, "evt-1", "spammer", model.RoleParticipant)
		base := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
		for i := 0; i < 3; i++ {
			_, _ = store.PutReview(ctx, model.Review{
				ID:       "rev-" + string(rune('1'+i)),
				EventID:  "evt-1", AuthorID: "spammer",
				Role: model.RoleParticipant, Rating: 3 + i%2,
				CreatedAt: base.Add(time.Duration(i) * time.Minute),
			})
		}
		analyzer := integrity.NewAnalyzer(store, store, verifier)

		Convey("When analyzing the event", func() {
			flags, err := analyzer.Analyze(ctx, "evt-1")

			Convey("Then the review completing the burst is flagged", func() {
				So(err, ShouldBeNil)
				So(flags, ShouldHaveLength, 1)
				So(flags[0].ReviewID, ShouldEqual, "rev-3")
				So(flags[0].Reason, ShouldEqual, model.ReasonSuspiciousPattern)
				So(flags[0].Metadata.DetectionMethod, ShouldEqual, "burst_window")
			})
		})
	})

	Convey("Given two reviews with near-identical long bodies", t, func() {
		ctx := context.Background()
		store := repository.NewMemStore()
		verifier := participation.NewStaticVerifier()
		verifier.Register(ctx, "evt-2", "alice", model.RoleParticipant)
		verifier.Register(ctx, "evt-2", "bob", model.RoleParticipant)
		base := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
		body := "Amazing event, great mentors and really well organized overall!"
		_, _ = store.PutReview(ctx, model.Review{
			ID: "rev-orig", EventID: "evt-2", AuthorID: "alice",
			Role: model.RoleParticipant, Rating: 4, Body: body,
			CreatedAt: base,
		})
		_, _ = store.PutReview(ctx, model.Review{
			ID: "rev-copy", EventID: "evt-2", AuthorID: "bob",
			Role: model.RoleParticipant, Rating: 4, Body: body + "!",
			CreatedAt: base.Add(time.Hour),
		})
		analyzer := integrity.NewAnalyzer(store, store, verifier)

		Convey("When analyzing the event", func() {
			flags, err := analyzer.Analyze(ctx, "evt-2")

			Convey("Then the later copy is flagged", func() {
				So(err, ShouldBeNil)
				So(flags, ShouldHaveLength, 1)
				So(flags[0].ReviewID, ShouldEqual, "rev-copy")
				So(flags[0].Reason, ShouldEqual, model.ReasonSuspiciousPattern)
				So(flags[0].Metadata.DetectionMethod, ShouldEqual, "near_duplicate_body")
			})
		})
	})
}

func TestFlags(t *testing.T) {
	Convey("Given a persisted flag whose review is later deleted", t, func() {
		ctx := context.Background()
		store := repository.NewMemStore()
		verifier := participation.NewStaticVerifier()
		seedReviews(ctx, store, verifier, "evt-1", []int{4, 4, 4, 5, 5, 1})
		analyzer := integrity.NewAnalyzer(store, store, verifier)
		_, err := analyzer.Analyze(ctx, "evt-1")
		So(err, ShouldBeNil)

		Convey("When reading flags before the deletion", func() {
			flagged, err := analyzer.Flags(ctx, "evt-1")

			Convey("Then the flag is joined with its review", func() {
				So(err, ShouldBeNil)
				So(flagged, ShouldHaveLength, 1)
				So(flagged[0].Review, ShouldNotBeNil)
				So(flagged[0].Review.Rating, ShouldEqual, 1)
			})
		})

		Convey("When reading flags after the deletion", func() {
			_, err := store.DeleteReview(ctx, "evt-1", "rev-f")
			So(err, ShouldBeNil)
			flagged, err := analyzer.Flags(ctx, "evt-1")

			Convey("Then the flag is kept with no review reference", func() {
				So(err, ShouldBeNil)
				So(flagged, ShouldHaveLength, 1)
				So(flagged[0].Review, ShouldBeNil)
			})
		})
	})
}
