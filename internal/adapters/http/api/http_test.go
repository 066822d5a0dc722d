package api_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gamekeep/gamekeep/internal/adapters/http/api"
	"github.com/gamekeep/gamekeep/internal/adapters/store"
	"github.com/gamekeep/gamekeep/internal/app"
	. "github.com/smartystreets/goconvey/convey"
)

func newTestServer(t *testing.T, guard api.Middleware) *httptest.Server {
	t.Helper()
	svc := app.New(
		app.WithStore(store.NewMemory()),
		app.WithNow(func() time.Time {
			return time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)
		}),
	)
	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("start service: %v", err)
	}
	t.Cleanup(svc.Stop)

	mux := http.NewServeMux()
	api.NewServer(svc, svc, svc).Register(mux, guard)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url, body string) (int, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	var decoded map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&decoded)
	return resp.StatusCode, decoded
}

func createBoard(t *testing.T, srv *httptest.Server, app, key string) {
	t.Helper()
	status, _ := doJSON(t, http.MethodPut,
		srv.URL+"/v1/admin/apps/"+app+"/leaderboards/"+key,
		`{"sortDirection":"descending","updateStrategy":"highest_wins","resetPolicy":{"kind":"permanent"}}`)
	if status != http.StatusOK {
		t.Fatalf("create leaderboard: status %d", status)
	}
}

func TestScoreRoutes(t *testing.T) {
	Convey("Given a server with one leaderboard", t, func() {
		srv := newTestServer(t, nil)
		createBoard(t, srv, "app-1", "arena")

		Convey("When a score is posted", func() {
			status, body := doJSON(t, http.MethodPost,
				srv.URL+"/v1/apps/app-1/leaderboards/arena/scores",
				`{"playerId":"p1","value":120}`)

			Convey("Then the merged value comes back", func() {
				So(status, ShouldEqual, http.StatusOK)
				So(body["playerId"], ShouldEqual, "p1")
				So(body["value"], ShouldEqual, 120)
			})

			Convey("And a lower score under highest_wins is absorbed", func() {
				status, body := doJSON(t, http.MethodPost,
					srv.URL+"/v1/apps/app-1/leaderboards/arena/scores",
					`{"playerId":"p1","value":40}`)
				So(status, ShouldEqual, http.StatusOK)
				So(body["value"], ShouldEqual, 120)
			})
		})

		Convey("When the ranked read runs", func() {
			for i, player := range []string{"p1", "p2", "p3"} {
				status, _ := doJSON(t, http.MethodPost,
					srv.URL+"/v1/apps/app-1/leaderboards/arena/scores",
					fmt.Sprintf(`{"playerId":%q,"value":%d}`, player, (i+1)*100))
				So(status, ShouldEqual, http.StatusOK)
			}

			status, body := doJSON(t, http.MethodGet,
				srv.URL+"/v1/apps/app-1/leaderboards/arena/top?start=0&count=2", "")

			Convey("Then entries come back ranked and paged", func() {
				So(status, ShouldEqual, http.StatusOK)
				entries := body["entries"].([]any)
				So(len(entries), ShouldEqual, 2)
				first := entries[0].(map[string]any)
				So(first["playerId"], ShouldEqual, "p3")
				So(first["rank"], ShouldEqual, 1)
			})

			Convey("And a direction override flips the order", func() {
				status, body := doJSON(t, http.MethodGet,
					srv.URL+"/v1/apps/app-1/leaderboards/arena/top?count=1&direction=ascending", "")
				So(status, ShouldEqual, http.StatusOK)
				first := body["entries"].([]any)[0].(map[string]any)
				So(first["playerId"], ShouldEqual, "p1")
			})
		})

		Convey("When requests are malformed", func() {
			Convey("A missing playerId is rejected", func() {
				status, body := doJSON(t, http.MethodPost,
					srv.URL+"/v1/apps/app-1/leaderboards/arena/scores",
					`{"value":10}`)
				So(status, ShouldEqual, http.StatusBadRequest)
				So(body["code"], ShouldEqual, "bad_request")
			})

			Convey("A bogus direction is rejected", func() {
				status, body := doJSON(t, http.MethodGet,
					srv.URL+"/v1/apps/app-1/leaderboards/arena/top?direction=sideways", "")
				So(status, ShouldEqual, http.StatusBadRequest)
				So(body["code"], ShouldEqual, "invalid_argument")
			})

			Convey("A non-numeric count is rejected", func() {
				status, _ := doJSON(t, http.MethodGet,
					srv.URL+"/v1/apps/app-1/leaderboards/arena/top?count=lots", "")
				So(status, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When the leaderboard does not exist", func() {
			status, body := doJSON(t, http.MethodPost,
				srv.URL+"/v1/apps/app-1/leaderboards/ghost/scores",
				`{"playerId":"p1","value":10}`)

			Convey("Then the API answers 404", func() {
				So(status, ShouldEqual, http.StatusNotFound)
				So(body["code"], ShouldEqual, "not_found")
			})
		})
	})
}

func TestCounterRoutes(t *testing.T) {
	Convey("Given a server with one counter", t, func() {
		srv := newTestServer(t, nil)
		status, _ := doJSON(t, http.MethodPut,
			srv.URL+"/v1/admin/apps/app-1/counters/logins",
			`{"description":"daily logins","resetPolicy":{"kind":"daily"}}`)
		So(status, ShouldEqual, http.StatusOK)

		Convey("When increments arrive", func() {
			status, body := doJSON(t, http.MethodPost,
				srv.URL+"/v1/apps/app-1/counters/logins/increment",
				`{"delta":3}`)
			So(status, ShouldEqual, http.StatusOK)
			So(body["value"], ShouldEqual, 3)

			status, body = doJSON(t, http.MethodGet,
				srv.URL+"/v1/apps/app-1/counters/logins", "")
			So(status, ShouldEqual, http.StatusOK)
			So(body["value"], ShouldEqual, 3)
		})

		Convey("When the delta is not positive", func() {
			status, body := doJSON(t, http.MethodPost,
				srv.URL+"/v1/apps/app-1/counters/logins/increment",
				`{"delta":0}`)

			Convey("Then the API answers 400", func() {
				So(status, ShouldEqual, http.StatusBadRequest)
				So(body["code"], ShouldEqual, "invalid_argument")
			})
		})

		Convey("When the counter was never defined", func() {
			status, _ := doJSON(t, http.MethodPost,
				srv.URL+"/v1/apps/app-1/counters/ghost/increment",
				`{"delta":1}`)
			So(status, ShouldEqual, http.StatusNotFound)
		})

		Convey("When the counter is reconfigured", func() {
			status, body := doJSON(t, http.MethodPost,
				srv.URL+"/v1/admin/apps/app-1/counters/logins/reconfigure",
				`{"resetPolicy":{"kind":"custom","customHours":6}}`)

			Convey("Then the new policy is reflected", func() {
				So(status, ShouldEqual, http.StatusOK)
				policy := body["resetPolicy"].(map[string]any)
				So(policy["kind"], ShouldEqual, "custom")
			})

			Convey("And a broken policy is rejected", func() {
				status, body := doJSON(t, http.MethodPost,
					srv.URL+"/v1/admin/apps/app-1/counters/logins/reconfigure",
					`{"resetPolicy":{"kind":"custom"}}`)
				So(status, ShouldEqual, http.StatusBadRequest)
				So(body["code"], ShouldEqual, "invalid_policy")
			})
		})

		Convey("When the counter is deleted", func() {
			req, _ := http.NewRequest(http.MethodDelete, srv.URL+"/v1/admin/apps/app-1/counters/logins", nil)
			resp, err := http.DefaultClient.Do(req)
			So(err, ShouldBeNil)
			resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusNoContent)

			status, _ := doJSON(t, http.MethodGet, srv.URL+"/v1/apps/app-1/counters/logins", "")
			So(status, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestAdminGuard(t *testing.T) {
	Convey("Given a server whose admin routes require a header", t, func() {
		guard := func(next http.HandlerFunc) http.HandlerFunc {
			return func(w http.ResponseWriter, r *http.Request) {
				if r.Header.Get("Authorization") == "" {
					http.Error(w, "unauthorized", http.StatusUnauthorized)
					return
				}
				next.ServeHTTP(w, r)
			}
		}
		srv := newTestServer(t, guard)

		Convey("When an unauthenticated definition write arrives", func() {
			status, _ := doJSON(t, http.MethodPut,
				srv.URL+"/v1/admin/apps/app-1/leaderboards/arena",
				`{"sortDirection":"descending","updateStrategy":"highest_wins","resetPolicy":{"kind":"permanent"}}`)

			Convey("Then it is refused", func() {
				So(status, ShouldEqual, http.StatusUnauthorized)
			})
		})

		Convey("But player routes stay open", func() {
			status, _ := doJSON(t, http.MethodGet, srv.URL+"/v1/apps/app-1/counters/ghost", "")
			So(status, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestHealthAndStats(t *testing.T) {
	Convey("Given a running server", t, func() {
		srv := newTestServer(t, nil)

		Convey("The health endpoint serves metrics", func() {
			resp, err := http.Get(srv.URL + "/healthz")
			So(err, ShouldBeNil)
			defer resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
		})

		Convey("The stats endpoint reports service state", func() {
			status, body := doJSON(t, http.MethodGet, srv.URL+"/stats", "")
			So(status, ShouldEqual, http.StatusOK)
			So(body["started"], ShouldEqual, true)
			So(body["store"], ShouldEqual, "memory")
		})
	})
}
