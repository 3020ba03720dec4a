package ranking_test

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/reelrank/internal/adapters/transport/mock"
	"github.com/okian/reelrank/internal/app/ranking"
	"github.com/okian/reelrank/internal/cache"
	"github.com/okian/reelrank/internal/domain/model"
	"github.com/okian/reelrank/internal/domain/types"
	"github.com/okian/reelrank/internal/session"
)

var board = []model.UserStanding{
	{UserID: "u1", TotalScore: 120, Position: 1},
	{UserID: "u2", TotalScore: 95, Position: 2},
	{UserID: "u3", TotalScore: 80, Position: 3},
}

// window serves board the way the authority does.
func window(_ context.Context, limit, offset int) (model.RankingPage, error) {
	items := []model.UserStanding{}
	if offset < len(board) {
		end := offset + limit
		if end > len(board) {
			end = len(board)
		}
		items = append(items, board[offset:end]...)
	}
	return model.RankingPage{
		Items:       items,
		Total:       len(board),
		TotalPages:  types.TotalPages(len(board), limit),
		CurrentPage: offset/limit + 1,
	}, nil
}

func TestFetchPage(t *testing.T) {
	ctx := context.Background()

	Convey("Given a ranking of 120, 95 and 80", t, func() {
		ctrl := gomock.NewController(t)
		remote := mock.NewMockRankings(ctrl)
		c := cache.New()
		p := ranking.New(remote, session.New(), c)

		Convey("When fetching page 1 of size 2", func() {
			remote.EXPECT().Ranking(gomock.Any(), 2, 0).DoAndReturn(window)
			page, err := p.FetchPage(ctx, 1, 2)

			Convey("Then it should hold the top two and report two pages", func() {
				So(err, ShouldBeNil)
				So(page.Items, ShouldHaveLength, 2)
				So(page.Items[0].TotalScore, ShouldEqual, 120)
				So(page.Items[1].TotalScore, ShouldEqual, 95)
				So(page.TotalPages, ShouldEqual, 2)
				So(page.Total, ShouldEqual, 3)

				cur, ok := p.Current()
				So(ok, ShouldBeTrue)
				So(cur.PageNumber, ShouldEqual, 1)

				_, ok = c.Get(cache.PageKey(1, 2))
				So(ok, ShouldBeTrue)
			})
		})

		Convey("When fetching page 2 of size 2", func() {
			remote.EXPECT().Ranking(gomock.Any(), 2, 2).DoAndReturn(window)
			page, err := p.FetchPage(ctx, 2, 2)

			Convey("Then it should hold only the last user", func() {
				So(err, ShouldBeNil)
				So(page.Items, ShouldHaveLength, 1)
				So(page.Items[0].TotalScore, ShouldEqual, 80)
				So(page.HasNext(), ShouldBeFalse)
			})
		})

		Convey("When fetching a page beyond the last", func() {
			remote.EXPECT().Ranking(gomock.Any(), 2, 8).DoAndReturn(window)
			page, err := p.FetchPage(ctx, 5, 2)

			Convey("Then items should be empty without an error", func() {
				So(err, ShouldBeNil)
				So(page.Items, ShouldNotBeNil)
				So(page.Items, ShouldBeEmpty)
				So(page.TotalPages, ShouldEqual, 2)
			})
		})

		Convey("When the page arguments are invalid", func() {
			for _, args := range [][2]int{{0, 2}, {1, 0}, {1, 101}, {-3, 10}} {
				_, err := p.FetchPage(ctx, args[0], args[1])
				So(errors.Is(err, types.ErrValidation), ShouldBeTrue)
			}
		})

		Convey("When a later fetch fails", func() {
			remote.EXPECT().Ranking(gomock.Any(), 2, 0).DoAndReturn(window)
			remote.EXPECT().Ranking(gomock.Any(), 2, 2).Return(model.RankingPage{}, types.Network("ranking", context.DeadlineExceeded))

			_, err := p.FetchPage(ctx, 1, 2)
			So(err, ShouldBeNil)
			_, err = p.FetchPage(ctx, 2, 2)

			Convey("Then the current page should not advance", func() {
				So(errors.Is(err, types.ErrNetwork), ShouldBeTrue)
				cur, ok := p.Current()
				So(ok, ShouldBeTrue)
				So(cur.PageNumber, ShouldEqual, 1)
				So(c.State(cache.PageKey(2, 2)), ShouldEqual, cache.Unloaded)
			})
		})
	})
}

func TestFetchSelf(t *testing.T) {
	ctx := context.Background()

	Convey("Given a projector", t, func() {
		ctrl := gomock.NewController(t)
		remote := mock.NewMockRankings(ctrl)
		sess := session.New()
		c := cache.New()
		p := ranking.New(remote, sess, c)

		Convey("When no one is logged in", func() {
			_, err := p.FetchSelf(ctx)

			Convey("Then it should fail validation without a request", func() {
				So(errors.Is(err, types.ErrValidation), ShouldBeTrue)
				_, ok := p.Self()
				So(ok, ShouldBeFalse)
			})
		})

		Convey("When logged in", func() {
			sess.Login("u2", "tok")
			remote.EXPECT().RankingSelf(gomock.Any()).Return(board[1], nil)

			st, err := p.FetchSelf(ctx)

			Convey("Then the standing should be returned and cached", func() {
				So(err, ShouldBeNil)
				So(st.Position, ShouldEqual, 2)
				cached, ok := p.Self()
				So(ok, ShouldBeTrue)
				So(cached, ShouldResemble, board[1])
			})
		})
	})
}

func TestFetchUserAndTop(t *testing.T) {
	ctx := context.Background()

	Convey("Given a projector", t, func() {
		ctrl := gomock.NewController(t)
		remote := mock.NewMockRankings(ctrl)
		c := cache.New()
		p := ranking.New(remote, nil, c, ranking.WithMaxPageSize(10))

		Convey("When fetching another user's standing", func() {
			remote.EXPECT().RankingUser(gomock.Any(), "u3").Return(board[2], nil)
			st, err := p.FetchUser(ctx, "u3")
			So(err, ShouldBeNil)
			So(st.TotalScore, ShouldEqual, 80)

			v, _, ok := cache.Lookup[model.UserStanding](c, cache.UserKey("u3"))
			So(ok, ShouldBeTrue)
			So(v.UserID, ShouldEqual, "u3")
		})

		Convey("When the user is unknown", func() {
			remote.EXPECT().RankingUser(gomock.Any(), "ghost").Return(model.UserStanding{}, types.NotFound("ranking_user", "user not ranked"))
			_, err := p.FetchUser(ctx, "ghost")
			So(errors.Is(err, types.ErrNotFound), ShouldBeTrue)
			So(c.State(cache.UserKey("ghost")), ShouldEqual, cache.Unloaded)
		})

		Convey("When fetching the top two", func() {
			remote.EXPECT().RankingTop(gomock.Any(), 2).Return(board[:2], nil)
			top, err := p.FetchTop(ctx, 2)
			So(err, ShouldBeNil)
			So(top, ShouldHaveLength, 2)
		})

		Convey("When the top limit exceeds the cap", func() {
			_, err := p.FetchTop(ctx, 11)
			So(errors.Is(err, types.ErrValidation), ShouldBeTrue)
		})
	})
}

func TestFetchAll(t *testing.T) {
	ctx := context.Background()

	Convey("Given an unchanging ranking spread over several pages", t, func() {
		ctrl := gomock.NewController(t)
		remote := mock.NewMockRankings(ctrl)
		p := ranking.New(remote, nil, cache.New(), ranking.WithConcurrency(2))
		remote.EXPECT().Ranking(gomock.Any(), 1, gomock.Any()).DoAndReturn(window).Times(3)

		all, err := p.FetchAll(ctx, 1)

		Convey("Then every user should appear exactly once, in order", func() {
			So(err, ShouldBeNil)
			So(all, ShouldResemble, board)
			_, ok := p.Current()
			So(ok, ShouldBeFalse)
		})
	})

	Convey("Given a page that fails mid-walk", t, func() {
		ctrl := gomock.NewController(t)
		remote := mock.NewMockRankings(ctrl)
		p := ranking.New(remote, nil, cache.New())
		remote.EXPECT().Ranking(gomock.Any(), 1, 0).DoAndReturn(window)
		remote.EXPECT().Ranking(gomock.Any(), 1, 1).DoAndReturn(window).AnyTimes()
		remote.EXPECT().Ranking(gomock.Any(), 1, 2).Return(model.RankingPage{}, types.Server("ranking", 500, "boom"))

		_, err := p.FetchAll(ctx, 1)
		So(errors.Is(err, types.ErrServer), ShouldBeTrue)
	})
}
