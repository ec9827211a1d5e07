package integrity

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestStats(t *testing.T) {
	Convey("Given rating samples", t, func() {
		Convey("When computing the median", func() {
			Convey("Then odd and even counts are handled", func() {
				So(median([]float64{3, 1, 2}), ShouldEqual, 2)
				So(median([]float64{4, 1, 2, 3}), ShouldEqual, 2.5)
				So(median(nil), ShouldEqual, 0)
			})
		})

		Convey("When computing the MAD", func() {
			Convey("Then it is the median absolute deviation", func() {
				// sorted deviations around 4: [0 0 0 1 1 3]
				So(mad([]float64{1, 4, 4, 4, 5, 5}, 4), ShouldEqual, 0.5)
			})

			Convey("Then identical samples yield zero", func() {
				So(mad([]float64{5, 5, 5, 5}, 5), ShouldEqual, 0)
			})
		})

		Convey("When computing the modified z-score", func() {
			Convey("Then it scales deviation by the consistency factor", func() {
				So(modifiedZ(1, 4, 0.5), ShouldAlmostEqual, -4.047, 0.001)
				So(modifiedZ(4, 4, 0.5), ShouldEqual, 0)
			})
		})

		Convey("When computing the mean", func() {
			So(mean([]float64{2, 4}), ShouldEqual, 3)
			So(mean(nil), ShouldEqual, 0)
		})
	})
}

func TestActivityLog(t *testing.T) {
	Convey("Given a bounded activity log", t, func() {
		log := newActivityLog(2)
		base := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

		Convey("When recording reviews inside and outside a window", func() {
			log.record("alice", base)
			log.record("alice", base.Add(time.Minute))
			log.record("alice", base.Add(10*time.Minute))

			Convey("Then only timestamps within the window are counted", func() {
				So(log.countWithin("alice", 5*time.Minute, base.Add(time.Minute)), ShouldEqual, 2)
				So(log.countWithin("alice", 5*time.Minute, base.Add(10*time.Minute)), ShouldEqual, 1)
				So(log.countWithin("unknown", 5*time.Minute, base), ShouldEqual, 0)
			})
		})

		Convey("When the author bound is exceeded", func() {
			log.record("alice", base)
			log.record("bob", base.Add(time.Minute))
			log.record("carol", base.Add(2*time.Minute))

			Convey("Then the least recently active author is evicted", func() {
				So(log.size(), ShouldEqual, 2)
				So(log.countWithin("alice", time.Hour, base.Add(2*time.Minute)), ShouldEqual, 0)
				So(log.countWithin("carol", time.Hour, base.Add(2*time.Minute)), ShouldEqual, 1)
			})
		})
	})
}
