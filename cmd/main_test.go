package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/reelrank/internal/adapters/http/api"
	"github.com/okian/reelrank/internal/authority"
	"github.com/okian/reelrank/internal/config"
	"github.com/okian/reelrank/internal/domain/model"
	"github.com/okian/reelrank/pkg/logger"
)

// clearEnv hides REELRANK_ variables from the host for the duration of t.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, kv := range os.Environ() {
		if k, _, ok := strings.Cut(kv, "="); ok && strings.HasPrefix(k, config.EnvPrefix) {
			t.Setenv(k, "")
			_ = os.Unsetenv(k)
		}
	}
}

// execute runs the root command with args and returns stdout.
func execute(args ...string) (string, error) {
	var out, errOut bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func startAuthority() (*httptest.Server, func()) {
	svc := authority.New(authority.WithLogger(logger.Nop()))
	_ = svc.Start(context.Background())
	ts := httptest.NewServer(api.NewRouter(svc, authority.DefaultMaxPageSize))
	return ts, func() {
		ts.Close()
		svc.Stop()
	}
}

// exported parses the export lines printed by login.
func exported(out string) map[string]string {
	vars := map[string]string{}
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		k, v, ok := strings.Cut(strings.TrimPrefix(line, "export "), "=")
		if ok {
			vars[k] = v
		}
	}
	return vars
}

func TestCLI(t *testing.T) {
	clearEnv(t)
	ts, stop := startAuthority()
	defer stop()

	convey.Convey("Given a running authority", t, func() {
		out, err := execute("login", "dana", "--name", "Dana", "--url", ts.URL)
		convey.So(err, convey.ShouldBeNil)
		vars := exported(out)
		token := vars[config.EnvPrefix+"TOKEN"]
		convey.So(vars[config.EnvPrefix+"USER_ID"], convey.ShouldEqual, "dana")
		convey.So(token, convey.ShouldNotBeEmpty)

		auth := []string{"--url", ts.URL, "--token", token, "--user", "dana"}

		convey.Convey("When dana publishes and rates an item", func() {
			out, err := execute(append([]string{"item", "create", "--title", "kickflip"}, auth...)...)
			convey.So(err, convey.ShouldBeNil)
			var item model.ContentItem
			convey.So(json.Unmarshal([]byte(out), &item), convey.ShouldBeNil)
			convey.So(item.AuthorID, convey.ShouldEqual, "dana")

			out, err = execute(append([]string{"item", "score", item.ID, "4"}, auth...)...)
			convey.So(err, convey.ShouldBeNil)
			var agg model.AggregateScore
			convey.So(json.Unmarshal([]byte(out), &agg), convey.ShouldBeNil)
			convey.So(agg.Mean, convey.ShouldEqual, 4)
			convey.So(agg.Count, convey.ShouldEqual, 1)

			convey.Convey("Then the item shows the score and comment", func() {
				_, err := execute(append([]string{"item", "comment", item.ID, "clean landing"}, auth...)...)
				convey.So(err, convey.ShouldBeNil)

				out, err := execute("item", "show", item.ID, "--url", ts.URL)
				convey.So(err, convey.ShouldBeNil)
				var snap model.ItemSnapshot
				convey.So(json.Unmarshal([]byte(out), &snap), convey.ShouldBeNil)
				convey.So(snap.Aggregate.Mean, convey.ShouldEqual, 4)
				convey.So(len(snap.Comments), convey.ShouldEqual, 1)
				convey.So(snap.Comments[0].Text, convey.ShouldEqual, "clean landing")
			})

			convey.Convey("Then the item is listed under dana", func() {
				out, err := execute("item", "list", "--author", "dana", "--url", ts.URL)
				convey.So(err, convey.ShouldBeNil)
				convey.So(out, convey.ShouldContainSubstring, "kickflip")

				out, err = execute("item", "list", "--author", "nobody", "--url", ts.URL)
				convey.So(err, convey.ShouldBeNil)
				convey.So(out, convey.ShouldNotContainSubstring, "kickflip")
			})

			convey.Convey("Then dana appears in the ranking", func() {
				out, err := execute(append([]string{"ranking", "me"}, auth...)...)
				convey.So(err, convey.ShouldBeNil)
				var st model.UserStanding
				convey.So(json.Unmarshal([]byte(out), &st), convey.ShouldBeNil)
				convey.So(st.UserID, convey.ShouldEqual, "dana")
				convey.So(st.Position, convey.ShouldBeGreaterThan, 0)

				out, err = execute("ranking", "top", "--limit", "5", "--url", ts.URL)
				convey.So(err, convey.ShouldBeNil)
				convey.So(out, convey.ShouldContainSubstring, `"user_id": "dana"`)

				out, err = execute("ranking", "page", "1", "--size", "5", "--url", ts.URL)
				convey.So(err, convey.ShouldBeNil)
				convey.So(out, convey.ShouldContainSubstring, `"page_number": 1`)
			})
		})

		convey.Convey("When creating an item without a token", func() {
			_, err := execute("item", "create", "--title", "x", "--url", ts.URL)

			convey.Convey("Then the command fails", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When the score is not a number", func() {
			_, err := execute(append([]string{"item", "score", "any", "five"}, auth...)...)
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}

func TestSimulateEmbedded(t *testing.T) {
	clearEnv(t)

	convey.Convey("Given an embedded authority", t, func() {
		out, err := execute("simulate", "--embedded",
			"--users", "4", "--items", "1", "--ratings", "2",
			"--workers", "2", "--page-size", "3", "--seed", "7")

		convey.Convey("Then the run verifies cleanly", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(out, convey.ShouldContainSubstring, "4 users")
			convey.So(out, convey.ShouldContainSubstring, "4 items")
		})
	})
}

func TestServe(t *testing.T) {
	clearEnv(t)

	convey.Convey("Given serve on a loopback listener", t, func() {
		cfg := config.New()
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		convey.So(err, convey.ShouldBeNil)

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- serve(ctx, cfg, logger.Nop(), ln) }()

		convey.Convey("Then health answers until the context ends", func() {
			var resp *http.Response
			for i := 0; i < 50; i++ {
				resp, err = http.Get("http://" + ln.Addr().String() + "/healthz")
				if err == nil {
					break
				}
				time.Sleep(10 * time.Millisecond)
			}
			convey.So(err, convey.ShouldBeNil)
			_ = resp.Body.Close()
			convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)

			resp, err = http.Get("http://" + ln.Addr().String() + "/openapi.yaml")
			convey.So(err, convey.ShouldBeNil)
			_ = resp.Body.Close()
			convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)

			cancel()
			convey.So(<-done, convey.ShouldBeNil)
		})
	})

	convey.Convey("Given an unreachable redis store", t, func() {
		cfg := config.New()
		cfg.RankingStore = config.StoreRedis
		cfg.RedisAddr = "127.0.0.1:1"
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		convey.So(err, convey.ShouldBeNil)
		defer func() { _ = ln.Close() }()

		convey.Convey("Then serve fails before listening", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			convey.So(serve(ctx, cfg, logger.Nop(), ln), convey.ShouldNotBeNil)
		})
	})
}

func TestMetricsUpdaters(t *testing.T) {
	convey.Convey("Given the metrics updaters", t, func() {
		convey.Convey("When the system updater runs until its context ends", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
			defer cancel()

			convey.So(func() {
				startSystemMetricsUpdater(ctx)
			}, convey.ShouldNotPanic)
		})

		convey.Convey("When the service updater runs until its context ends", func() {
			svc := authority.New(authority.WithLogger(logger.Nop()))
			convey.So(svc.Start(context.Background()), convey.ShouldBeNil)
			defer svc.Stop()

			ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
			defer cancel()

			convey.So(func() {
				startServiceMetricsUpdater(ctx, svc)
			}, convey.ShouldNotPanic)
		})

		convey.Convey("When updating system metrics directly", func() {
			convey.So(updateSystemMetrics, convey.ShouldNotPanic)
		})
	})
}

func TestOrDefault(t *testing.T) {
	convey.Convey("Given flag values", t, func() {
		convey.So(orDefault(0, 9), convey.ShouldEqual, 9)
		convey.So(orDefault(-1, 9), convey.ShouldEqual, 9)
		convey.So(orDefault(3, 9), convey.ShouldEqual, 3)
	})
}
