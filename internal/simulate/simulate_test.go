package simulate

import (
	"context"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/reelrank/internal/adapters/http/api"
	"github.com/okian/reelrank/internal/authority"
)

func startAuthority() (*httptest.Server, func()) {
	svc := authority.New()
	if err := svc.Start(context.Background()); err != nil {
		panic(err)
	}
	ts := httptest.NewServer(api.NewRouter(svc, 100))
	return ts, func() {
		ts.Close()
		svc.Stop()
	}
}

func TestBuildPlan(t *testing.T) {
	Convey("Given users and items", t, func() {
		users := []string{"u0", "u1", "u2", "u3"}
		items := []string{"i0", "i1", "i2"}
		owners := map[string]string{"i0": "u0", "i1": "u0", "i2": "u1"}

		plans, exp := buildPlan(7, users, items, owners, 2)

		Convey("Then every user rates distinct items", func() {
			for _, u := range users {
				p := plans[u]
				So(len(p.ratings), ShouldEqual, 2)
				So(p.ratings[0].itemID, ShouldNotEqual, p.ratings[1].itemID)
				So(p.commentOn, ShouldNotBeEmpty)
			}
		})

		Convey("Then only the last value of each rating is live", func() {
			for _, u := range users {
				for _, r := range plans[u].ratings {
					So(exp.scores[r.itemID][u], ShouldEqual, r.values[len(r.values)-1])
				}
			}
		})

		Convey("Then totals should equal the live values per owner", func() {
			sums := map[string]int{}
			for item, raters := range exp.scores {
				for _, v := range raters {
					sums[owners[item]] += v
				}
			}
			So(exp.totals["u0"], ShouldEqual, sums["u0"])
			So(exp.totals["u1"], ShouldEqual, sums["u1"])
		})

		Convey("Then the same seed should give the same plan", func() {
			again, _ := buildPlan(7, users, items, owners, 2)
			So(again, ShouldResemble, plans)
		})

		Convey("Then the expected aggregate should use distinct raters", func() {
			agg := exp.aggregate("i0")
			So(agg.Count, ShouldEqual, len(exp.scores["i0"]))
		})
	})
}

func TestMismatches(t *testing.T) {
	Convey("Given more mismatches than are reported", t, func() {
		var m mismatches
		So(m.err(), ShouldBeNil)
		for i := 0; i < maxReported+3; i++ {
			m.add("problem %d", i)
		}
		err := m.err()
		So(err, ShouldNotBeNil)
		So(err.Error(), ShouldContainSubstring, "problem 0")
		So(err.Error(), ShouldContainSubstring, "and 3 more")
	})
}

func TestRun(t *testing.T) {
	Convey("Given a running authority", t, func() {
		ts, stop := startAuthority()
		defer stop()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		Convey("When a simulation runs", func() {
			stats, err := Run(ctx, Config{
				BaseURL:        ts.URL,
				Users:          12,
				ItemsPerUser:   2,
				RatingsPerUser: 4,
				Workers:        4,
				PageSize:       5,
				Seed:           42,
			})

			Convey("Then every invariant should hold", func() {
				So(err, ShouldBeNil)
				So(stats.UsersCreated, ShouldEqual, 12)
				So(stats.ItemsCreated, ShouldEqual, 24)
				So(stats.ScoresSubmitted, ShouldBeGreaterThanOrEqualTo, 48)
				So(stats.CommentsSubmitted, ShouldEqual, 12)
				So(stats.ItemsVerified, ShouldEqual, 24)
				So(stats.StandingsRetrieved, ShouldEqual, 12)
			})

			Convey("And a second run should coexist with the first", func() {
				stats2, err := Run(ctx, Config{BaseURL: ts.URL, Users: 5, Workers: 2, PageSize: 3, Seed: 9})
				So(err, ShouldBeNil)
				So(stats2.RunID, ShouldNotEqual, stats.RunID)
				So(stats2.StandingsRetrieved, ShouldEqual, 17)
			})
		})
	})

	Convey("Given no authority", t, func() {
		ts, stop := startAuthority()
		url := ts.URL
		stop()

		Convey("Run should fail the health check", func() {
			_, err := Run(context.Background(), Config{BaseURL: url, Timeout: time.Second})
			So(err, ShouldNotBeNil)
			So(fmt.Sprint(err), ShouldContainSubstring, "health check")
		})
	})
}
