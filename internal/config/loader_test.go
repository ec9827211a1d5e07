package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/rajstories/Nexus-hackathon-platform-sub001/internal/config"
)

func TestLoad(t *testing.T) {
	Convey("Given a clean environment", t, func() {
		Convey("When loading with no overrides", func() {
			cfg, err := config.Load()

			Convey("Then the documented defaults apply", func() {
				So(err, ShouldBeNil)
				So(cfg.Server.Addr, ShouldEqual, ":8080")
				So(cfg.Log.Level, ShouldEqual, "info")
				So(cfg.Similarity.Threshold, ShouldEqual, 0.80)
				So(cfg.Similarity.MinTokenCount, ShouldEqual, 15)
				So(cfg.Integrity.MADZThreshold, ShouldEqual, 3.5)
				So(cfg.Integrity.BurstWindow, ShouldEqual, 5*time.Minute)
				So(cfg.Broadcast.DebounceMS, ShouldEqual, 2000)
				So(cfg.Broadcast.Debounce(), ShouldEqual, 2*time.Second)
			})
		})

		Convey("When environment variables override defaults", func() {
			t.Setenv("NEXUS_SIMILARITY_THRESHOLD", "0.9")
			t.Setenv("NEXUS_LOG_LEVEL", "debug")
			cfg, err := config.Load()

			Convey("Then the overrides win", func() {
				So(err, ShouldBeNil)
				So(cfg.Similarity.Threshold, ShouldEqual, 0.9)
				So(cfg.Log.Level, ShouldEqual, "debug")
				So(cfg.Server.Addr, ShouldEqual, ":8080")
			})
		})

		Convey("When a config file is named", func() {
			dir := t.TempDir()
			path := filepath.Join(dir, "nexus.yaml")
			So(os.WriteFile(path, []byte("broadcast:\n  debounce_ms: 500\n"), 0o600), ShouldBeNil)
			t.Setenv("NEXUS_CONFIG", path)
			cfg, err := config.Load()

			Convey("Then file values layer over the defaults", func() {
				So(err, ShouldBeNil)
				So(cfg.Broadcast.DebounceMS, ShouldEqual, 500)
				So(cfg.Broadcast.QueueSize, ShouldEqual, 10000)
			})
		})

		Convey("When a value is out of range", func() {
			t.Setenv("NEXUS_SIMILARITY_THRESHOLD", "1.5")
			_, err := config.Load()

			Convey("Then loading fails with a validation error", func() {
				So(errors.Is(err, config.ErrInvalidConfig), ShouldBeTrue)
			})
		})

		Convey("When the named config file does not exist", func() {
			t.Setenv("NEXUS_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
			_, err := config.Load()

			Convey("Then loading fails", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}
