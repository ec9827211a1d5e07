package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/rajstories/Nexus-hackathon-platform-sub001/internal/adapters/http/api"
	"github.com/rajstories/Nexus-hackathon-platform-sub001/internal/app"
	"github.com/rajstories/Nexus-hackathon-platform-sub001/internal/config"
	"github.com/rajstories/Nexus-hackathon-platform-sub001/pkg/logger"
)

func init() {
	// Initialize logging for tests
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

// newTestServer starts a full service behind an httptest server.
func newTestServer(t *testing.T) (*httptest.Server, *app.Service) {
	t.Helper()

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	cfg.Broadcast.DebounceMS = 0

	ctx := context.Background()
	svc := app.New(cfg)
	svc.Start(ctx)
	t.Cleanup(func() { svc.Stop(ctx) })

	mux := http.NewServeMux()
	api.NewServer(svc).Register(ctx, mux)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, svc
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("post %s: %v", url, err)
	}
	return resp
}

func decode(t *testing.T, resp *http.Response, dst any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestSubmissionRoutes(t *testing.T) {
	Convey("Given a running API server", t, func() {
		srv, _ := newTestServer(t)

		Convey("When posting a valid submission", func() {
			resp := postJSON(t, srv.URL+"/events/evt-1/submissions", map[string]any{
				"id": "sub-1", "team_id": "team-1", "title": "Demo",
				"corpus_text": "a working demo of our project",
			})
			defer resp.Body.Close()

			Convey("Then it is accepted", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusAccepted)
			})
		})

		Convey("When posting a submission missing required fields", func() {
			resp := postJSON(t, srv.URL+"/events/evt-1/submissions", map[string]any{
				"id": "sub-1",
			})
			defer resp.Body.Close()

			Convey("Then it is rejected", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When posting a review with an out-of-range rating", func() {
			resp := postJSON(t, srv.URL+"/events/evt-1/reviews", map[string]any{
				"id": "rev-1", "author_id": "alice", "role": "participant", "rating": 9,
			})
			defer resp.Body.Close()

			Convey("Then it is rejected", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When deleting a review that does not exist", func() {
			req, err := http.NewRequest(http.MethodDelete, srv.URL+"/events/evt-1/reviews/nope", nil)
			So(err, ShouldBeNil)
			resp, err := http.DefaultClient.Do(req)
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then it reports not found", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusNotFound)
			})
		})
	})
}

func TestScoringRoutes(t *testing.T) {
	Convey("Given a server with a submission and panel", t, func() {
		srv, _ := newTestServer(t)

		resp := postJSON(t, srv.URL+"/events/evt-1/submissions", map[string]any{
			"id": "sub-a", "team_id": "team-a", "title": "Demo",
		})
		resp.Body.Close()
		resp = postJSON(t, srv.URL+"/events/evt-1/rounds/1/panel", map[string]any{
			"weights": map[string]float64{"innovation": 1}, "total_judges": 2,
		})
		resp.Body.Close()

		Convey("When a judge posts a score", func() {
			resp := postJSON(t, srv.URL+"/events/evt-1/rounds/1/scores", map[string]any{
				"submission_id": "sub-a", "judge_id": "judge-1",
				"criteria_scores": map[string]float64{"innovation": 8},
			})
			defer resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusAccepted)

			Convey("Then the leaderboard reflects it", func() {
				resp, err := http.Get(srv.URL + "/events/evt-1/rounds/1/leaderboard")
				So(err, ShouldBeNil)

				var body struct {
					Round   int `json:"round"`
					Entries []struct {
						SubmissionID   string  `json:"submission_id"`
						AggregateScore float64 `json:"aggregate_score"`
						Rank           int     `json:"rank"`
					} `json:"entries"`
				}
				decode(t, resp, &body)
				So(body.Round, ShouldEqual, 1)
				So(body.Entries, ShouldHaveLength, 1)
				So(body.Entries[0].AggregateScore, ShouldAlmostEqual, 8.0, 1e-9)
				So(body.Entries[0].Rank, ShouldEqual, 1)
			})

			Convey("And finalizing gates later writes with 409", func() {
				resp := postJSON(t, srv.URL+"/events/evt-1/rounds/1/finalize", map[string]any{
					"actor_id": "org-1",
				})
				resp.Body.Close()
				So(resp.StatusCode, ShouldEqual, http.StatusOK)

				resp = postJSON(t, srv.URL+"/events/evt-1/rounds/1/scores", map[string]any{
					"submission_id": "sub-a", "judge_id": "judge-2",
					"criteria_scores": map[string]float64{"innovation": 9},
				})
				defer resp.Body.Close()
				So(resp.StatusCode, ShouldEqual, http.StatusConflict)

				Convey("And repeat finalize stays idempotent", func() {
					resp := postJSON(t, srv.URL+"/events/evt-1/rounds/1/finalize", map[string]any{
						"actor_id": "org-2",
					})
					var status struct {
						IsFinalized bool   `json:"is_finalized"`
						FinalizedBy string `json:"finalized_by"`
					}
					decode(t, resp, &status)
					So(resp.StatusCode, ShouldEqual, http.StatusOK)
					So(status.IsFinalized, ShouldBeTrue)
					So(status.FinalizedBy, ShouldEqual, "org-1")
				})
			})
		})

		Convey("When posting a score to an invalid round", func() {
			resp := postJSON(t, srv.URL+"/events/evt-1/rounds/zero/scores", map[string]any{
				"submission_id": "sub-a", "judge_id": "judge-1",
			})
			defer resp.Body.Close()

			Convey("Then it is rejected", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When reading status of an untouched round", func() {
			resp, err := http.Get(srv.URL + "/events/evt-1/rounds/3/status")
			So(err, ShouldBeNil)

			var status struct {
				Round       int  `json:"round"`
				IsFinalized bool `json:"is_finalized"`
			}
			decode(t, resp, &status)

			Convey("Then it reports open", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				So(status.Round, ShouldEqual, 3)
				So(status.IsFinalized, ShouldBeFalse)
			})
		})
	})
}

func TestLiveRoute(t *testing.T) {
	Convey("Given a live websocket client", t, func() {
		srv, _ := newTestServer(t)
		resp := postJSON(t, srv.URL+"/events/evt-1/submissions", map[string]any{
			"id": "sub-a", "team_id": "team-a", "title": "Demo",
		})
		resp.Body.Close()

		wsURL := strings.Replace(srv.URL, "http", "ws", 1) + "/events/evt-1/live"
		conn, dialResp, err := websocket.DefaultDialer.Dial(wsURL, nil)
		So(err, ShouldBeNil)
		if dialResp != nil {
			dialResp.Body.Close()
		}
		defer conn.Close()

		Convey("When a score lands for the event", func() {
			resp := postJSON(t, srv.URL+"/events/evt-1/rounds/1/scores", map[string]any{
				"submission_id": "sub-a", "judge_id": "judge-1",
				"criteria_scores": map[string]float64{"innovation": 8},
				"total_score":     8,
			})
			resp.Body.Close()

			Convey("Then the client receives a leaderboard update", func() {
				_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
				var msg struct {
					Type    string `json:"type"`
					EventID string `json:"event_id"`
				}
				So(conn.ReadJSON(&msg), ShouldBeNil)
				So(msg.Type, ShouldEqual, "leaderboard-update")
				So(msg.EventID, ShouldEqual, "evt-1")
			})
		})
	})
}

func TestHealthRoute(t *testing.T) {
	Convey("Given a running API server", t, func() {
		srv, _ := newTestServer(t)

		Convey("When probing /healthz", func() {
			resp, err := http.Get(srv.URL + "/healthz")
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then the metrics endpoint answers", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
			})
		})
	})
}
