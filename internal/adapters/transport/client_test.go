package transport_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/okian/reelrank/internal/adapters/transport"
	"github.com/okian/reelrank/internal/domain/model"
	"github.com/okian/reelrank/internal/domain/types"
	"github.com/okian/reelrank/internal/session"
	. "github.com/smartystreets/goconvey/convey"
)

func newClient(t *testing.T, h http.HandlerFunc, opts ...transport.Option) *transport.Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := transport.New(srv.URL, opts...)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c
}

func TestClientRequests(t *testing.T) {
	ctx := context.Background()

	Convey("Given an authenticated client", t, func() {
		var gotAuth, gotPath, gotQuery, gotMethod string
		var gotBody map[string]any
		s := session.New(session.WithCredentials("alice", "tok-1"))

		c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			gotPath = r.URL.Path
			gotQuery = r.URL.RawQuery
			gotMethod = r.Method
			gotBody = nil
			_ = json.NewDecoder(r.Body).Decode(&gotBody)
			w.Header().Set("Content-Type", "application/json")
			switch r.URL.Path {
			case "/scores/item 1":
				_, _ = w.Write([]byte(`{"mean":3.5,"count":2}`))
			case "/ranking":
				_, _ = w.Write([]byte(`{"items":[{"user_id":"u1","total_score":120,"position":1}],"total":3,"total_pages":2,"current_page":1}`))
			case "/items":
				_, _ = w.Write([]byte(`{"items":null,"total":0,"total_pages":0,"current_page":3}`))
			case "/comments/item-1":
				_, _ = w.Write([]byte(`null`))
			default:
				w.WriteHeader(http.StatusNoContent)
			}
		}, transport.WithSession(s))

		Convey("When submitting a score", func() {
			agg, err := c.SubmitScore(ctx, "item 1", 4)

			Convey("Then it should POST the value with the bearer token", func() {
				So(err, ShouldBeNil)
				So(agg, ShouldResemble, model.AggregateScore{Mean: 3.5, Count: 2})
				So(gotMethod, ShouldEqual, http.MethodPost)
				So(gotPath, ShouldEqual, "/scores/item 1")
				So(gotAuth, ShouldEqual, "Bearer tok-1")
				So(gotBody["value"], ShouldEqual, 4.0)
			})
		})

		Convey("When fetching a ranking window", func() {
			page, err := c.Ranking(ctx, 2, 0)

			Convey("Then limit and offset should be sent as query params", func() {
				So(err, ShouldBeNil)
				So(gotQuery, ShouldEqual, "limit=2&offset=0")
				So(page.Total, ShouldEqual, 3)
				So(page.TotalPages, ShouldEqual, 2)
				So(page.Items[0].UserID, ShouldEqual, "u1")
			})
		})

		Convey("When listing an author's items", func() {
			page, err := c.Items(ctx, "dave", 5, 10)

			Convey("Then author, limit and offset should be sent as query params", func() {
				So(err, ShouldBeNil)
				So(gotMethod, ShouldEqual, http.MethodGet)
				So(gotQuery, ShouldEqual, "author=dave&limit=5&offset=10")
				So(page.Items, ShouldNotBeNil)
				So(page.CurrentPage, ShouldEqual, 3)
			})
		})

		Convey("When listing every author's items", func() {
			_, err := c.Items(ctx, "", 5, 0)
			So(err, ShouldBeNil)
			So(gotQuery, ShouldEqual, "limit=5&offset=0")
		})

		Convey("When the comment list is null", func() {
			comments, err := c.Comments(ctx, "item-1")

			Convey("Then an empty non-nil slice should be returned", func() {
				So(err, ShouldBeNil)
				So(comments, ShouldNotBeNil)
				So(comments, ShouldBeEmpty)
			})
		})

		Convey("When logging out", func() {
			err := c.Logout(ctx)
			So(err, ShouldBeNil)
			So(gotPath, ShouldEqual, "/auth/logout")
		})

		Convey("When the session is cleared", func() {
			s.Logout()
			_, _ = c.ScoreAverage(ctx, "item 1")

			Convey("Then no Authorization header should be sent", func() {
				So(gotAuth, ShouldBeEmpty)
			})
		})
	})
}

func TestClientErrorMapping(t *testing.T) {
	ctx := context.Background()

	Convey("Given an authority replying with errors", t, func() {
		Convey("When the reply is 404", func() {
			c := newClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusNotFound)
				_, _ = w.Write([]byte(`{"code":"not_found","message":"item not found"}`))
			})
			_, err := c.ScoreAverage(ctx, "missing")

			Convey("Then it should be a NotFound error with the body message", func() {
				So(errors.Is(err, types.ErrNotFound), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "item not found")
			})
		})

		Convey("When the reply carries both error and msg", func() {
			c := newClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(`{"msg":"second","error":"first","message":"third"}`))
			})
			_, err := c.SubmitScore(ctx, "i", 3)

			Convey("Then error should win", func() {
				var te *types.Error
				So(errors.As(err, &te), ShouldBeTrue)
				So(te.Kind, ShouldEqual, types.ErrServer)
				So(te.Status, ShouldEqual, http.StatusBadRequest)
				So(te.Message, ShouldEqual, "first")
			})
		})

		Convey("When the reply has only msg", func() {
			c := newClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusConflict)
				_, _ = w.Write([]byte(`{"msg":"conflict here"}`))
			})
			_, err := c.SubmitScore(ctx, "i", 3)
			var te *types.Error
			So(errors.As(err, &te), ShouldBeTrue)
			So(te.Message, ShouldEqual, "conflict here")
		})

		Convey("When the reply has no usable body", func() {
			c := newClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte(`<html>oops</html>`))
			})
			_, err := c.RankingTop(ctx, 3)

			Convey("Then the status line should be used", func() {
				var te *types.Error
				So(errors.As(err, &te), ShouldBeTrue)
				So(te.Message, ShouldEqual, "Error 500: Internal Server Error")
			})
		})

		Convey("When a 2xx body is malformed", func() {
			c := newClient(t, func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"mean":`))
			})
			_, err := c.ScoreAverage(ctx, "i")
			So(errors.Is(err, types.ErrServer), ShouldBeTrue)
		})

		Convey("When the server is too slow", func() {
			c := newClient(t, func(w http.ResponseWriter, _ *http.Request) {
				time.Sleep(200 * time.Millisecond)
				_, _ = w.Write([]byte(`{"mean":1,"count":1}`))
			}, transport.WithTimeout(20*time.Millisecond))
			_, err := c.ScoreAverage(ctx, "i")

			Convey("Then it should be a Network error", func() {
				So(errors.Is(err, types.ErrNetwork), ShouldBeTrue)
			})
		})
	})

	Convey("Given an unreachable authority", t, func() {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()
		c, err := transport.New(url)
		So(err, ShouldBeNil)

		_, err = c.Comments(ctx, "i")
		So(errors.Is(err, types.ErrNetwork), ShouldBeTrue)
	})
}

func TestNew(t *testing.T) {
	Convey("Given base URL validation", t, func() {
		_, err := transport.New("ftp://example.com")
		So(errors.Is(err, transport.ErrInvalidBaseURL), ShouldBeTrue)

		_, err = transport.New("://bad")
		So(errors.Is(err, transport.ErrInvalidBaseURL), ShouldBeTrue)

		_, err = transport.New("http://localhost:9080/")
		So(err, ShouldBeNil)
	})
}
