package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okian/reelrank/internal/adapters/http/api"
	"github.com/okian/reelrank/internal/authority"
	"github.com/okian/reelrank/internal/domain/model"
)

type fixture struct {
	t      *testing.T
	svc    *authority.Service
	router http.Handler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	svc := authority.New()
	require.NoError(t, svc.Start(context.Background()))
	t.Cleanup(svc.Stop)
	return &fixture{t: t, svc: svc, router: api.NewRouter(svc, 50)}
}

func (f *fixture) do(method, path, token string, body any) *httptest.ResponseRecorder {
	f.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(f.t, json.NewEncoder(&buf).Encode(body))
	}
	r, err := http.NewRequest(method, path, &buf)
	require.NoError(f.t, err)
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, r)
	return w
}

func (f *fixture) login(user string) string {
	f.t.Helper()
	w := f.do(http.MethodPost, "/auth/login", "", model.LoginRequest{UserID: user, DisplayName: user + "!"})
	require.Equal(f.t, http.StatusOK, w.Code, w.Body.String())
	var resp model.LoginResponse
	require.NoError(f.t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.AccessToken
}

func (f *fixture) item(token string) model.ContentItem {
	f.t.Helper()
	w := f.do(http.MethodPost, "/items", token, model.ItemRequest{Title: "clip"})
	require.Equal(f.t, http.StatusCreated, w.Code, w.Body.String())
	var item model.ContentItem
	require.NoError(f.t, json.Unmarshal(w.Body.Bytes(), &item))
	return item
}

func Test_health(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = f.do(http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "reelrank_")

	w = f.do(http.MethodGet, "/stats", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"started":true`)
}

func Test_auth(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodPost, "/auth/login", "", model.LoginRequest{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(http.MethodPost, "/items", "", model.ItemRequest{Title: "x"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"unauthorized"`)

	w = f.do(http.MethodPost, "/items", "bogus", model.ItemRequest{Title: "x"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token := f.login("alice")
	w = f.do(http.MethodPost, "/auth/logout", token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = f.do(http.MethodGet, "/ranking/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func Test_scores(t *testing.T) {
	f := newFixture(t)
	item := f.item(f.login("carol"))
	a, b := f.login("A"), f.login("B")

	steps := []struct {
		token string
		value int
		want  string
	}{
		{a, 4, `{"mean":4,"count":1}`},
		{b, 2, `{"mean":3,"count":2}`},
		{a, 5, `{"mean":3.5,"count":2}`},
	}
	for _, s := range steps {
		w := f.do(http.MethodPost, "/scores/"+item.ID, s.token, model.ScoreRequest{Value: s.value})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.JSONEq(t, s.want, w.Body.String())
	}

	w := f.do(http.MethodGet, "/scores/"+item.ID, "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"mean":3.5,"count":2}`, w.Body.String())

	w = f.do(http.MethodPost, "/scores/"+item.ID, a, model.ScoreRequest{Value: 6})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(http.MethodPost, "/scores/"+item.ID, a, "not an object")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(http.MethodGet, "/scores/missing", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"not_found"`)
}

func Test_comments(t *testing.T) {
	f := newFixture(t)
	token := f.login("carol")
	item := f.item(token)

	w := f.do(http.MethodGet, "/comments/"+item.ID, "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = f.do(http.MethodPost, "/comments/"+item.ID, token, model.CommentRequest{Text: "   "})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(http.MethodPost, "/comments/"+item.ID, token, model.CommentRequest{Text: "hi"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = f.do(http.MethodGet, "/comments/"+item.ID, "", nil)
	var list []model.Comment
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "hi", list[0].Text)
	assert.Equal(t, "carol", list[0].AuthorID)
}

func Test_items(t *testing.T) {
	f := newFixture(t)
	token := f.login("dave")
	item := f.item(token)

	w := f.do(http.MethodGet, "/items/"+item.ID, "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	var got model.ContentItem
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "dave", got.AuthorID)

	w = f.do(http.MethodPost, "/items", token, model.ItemRequest{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(http.MethodGet, "/items/missing", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func Test_itemList(t *testing.T) {
	f := newFixture(t)
	dave := f.login("dave")
	f.item(dave)
	f.item(dave)
	f.item(f.login("erin"))

	w := f.do(http.MethodGet, "/items?limit=10", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page model.ItemPage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Equal(t, 3, page.Total)
	assert.Len(t, page.Items, 3)

	w = f.do(http.MethodGet, "/items?author=dave&limit=1&offset=1", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	page = model.ItemPage{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Equal(t, 2, page.Total)
	assert.Equal(t, 2, page.CurrentPage)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "dave", page.Items[0].AuthorID)

	w = f.do(http.MethodGet, "/items?author=nobody", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"items":[]`)

	for _, q := range []string{"limit=0", "limit=51", "limit=x", "offset=-1"} {
		w = f.do(http.MethodGet, "/items?"+q, "", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, q)
	}
}

func Test_ranking(t *testing.T) {
	f := newFixture(t)
	rater := f.login("rater")
	for i, v := range []int{5, 3, 1} {
		user := fmt.Sprintf("u%d", i+1)
		item := f.item(f.login(user))
		w := f.do(http.MethodPost, "/scores/"+item.ID, rater, model.ScoreRequest{Value: v})
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := f.do(http.MethodGet, "/ranking?limit=2&offset=0", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page model.RankingPage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Equal(t, 3, page.Total)
	assert.Equal(t, 2, page.TotalPages)
	assert.Equal(t, 1, page.CurrentPage)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "u1", page.Items[0].UserID)
	assert.Equal(t, "u1!", page.Items[0].DisplayName)

	w = f.do(http.MethodGet, "/ranking?limit=2&offset=10", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"items":[]`)

	for _, q := range []string{"limit=0", "limit=51", "limit=x", "offset=-1"} {
		w = f.do(http.MethodGet, "/ranking?"+q, "", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, q)
	}

	w = f.do(http.MethodGet, "/ranking/top?limit=1", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	var top []model.UserStanding
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &top))
	require.Len(t, top, 1)
	assert.Equal(t, 5.0, top[0].TotalScore)

	w = f.do(http.MethodGet, "/ranking/users/u3", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"position":3`)

	w = f.do(http.MethodGet, "/ranking/users/rater", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = f.do(http.MethodGet, "/ranking/me", f.login("u2"), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"position":2`)
}

type failingRanking struct {
	*authority.Service
}

func (failingRanking) Ranking(context.Context, int, int) (model.RankingPage, error) {
	return model.RankingPage{}, errors.New("disk on fire")
}

func Test_internalError(t *testing.T) {
	svc := authority.New()
	require.NoError(t, svc.Start(context.Background()))
	defer svc.Stop()

	router := api.NewRouter(failingRanking{svc}, 10)
	r := httptest.NewRequest(http.MethodGet, "/ranking?limit=5", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"code":"internal_error","message":"disk on fire"}`, w.Body.String())
}
