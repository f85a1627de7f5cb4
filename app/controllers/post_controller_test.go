package controllers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"pressroom/app/middleware"
	"pressroom/app/models"
	"pressroom/app/repositories/mock"
	"pressroom/app/services"
)

// testBasePath locates app/views from this package during tests.
const testBasePath = "../.."

type testApp struct {
	store    *mock.Store
	posts    *services.PostService
	comments *services.CommentService
	profiles *services.ProfileService

	postCtrl    *PostController
	commentCtrl *CommentController
	profileCtrl *ProfileController

	now   time.Time
	alice *models.User
	bob   *models.User
	news  *models.Category
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	store := mock.NewStore()
	log := zap.NewNop()

	posts := services.NewPostService(store.Posts(), store.Comments(), store.Categories(), store.Locations())
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	posts.SetClock(func() time.Time { return now })
	comments := services.NewCommentService(store.Comments(), store.Posts())
	profiles := services.NewProfileService(store.Users(), store.Posts())

	app := &testApp{
		store:       store,
		posts:       posts,
		comments:    comments,
		profiles:    profiles,
		postCtrl:    NewPostController(posts, log, testBasePath, t.TempDir()),
		commentCtrl: NewCommentController(comments, posts, log, testBasePath),
		profileCtrl: NewProfileController(profiles, log, testBasePath),
		now:         now,
	}

	app.alice = &models.User{Username: "alice", Email: "alice@example.com"}
	require.NoError(t, store.Users().Create(app.alice))
	app.bob = &models.User{Username: "bob", Email: "bob@example.com"}
	require.NoError(t, store.Users().Create(app.bob))

	app.news = &models.Category{
		Title:       "News",
		Description: "daily news",
		Slug:        "news",
		Publication: models.Publication{IsPublished: true},
	}
	require.NoError(t, store.Categories().Create(app.news))

	return app
}

func (a *testApp) addPost(t *testing.T, author *models.User, pubDate time.Time, published bool, title string) *models.Post {
	t.Helper()
	post := &models.Post{
		Title:       title,
		Text:        "body of " + title,
		PubDate:     pubDate,
		AuthorID:    author.ID,
		CategoryID:  &a.news.ID,
		Publication: models.Publication{IsPublished: published},
	}
	require.NoError(t, a.store.Posts().Create(post))
	return post
}

// doGet drives a handler directly, setting route vars and the signed-in
// user the way the router middleware would.
func doGet(handler http.HandlerFunc, target string, vars map[string]string, user *models.User) *httptest.ResponseRecorder {
	r := httptest.NewRequest(http.MethodGet, target, nil)
	if vars != nil {
		r = mux.SetURLVars(r, vars)
	}
	if user != nil {
		r = middleware.WithUser(r, user)
	}
	w := httptest.NewRecorder()
	handler(w, r)
	return w
}

func doPost(handler http.HandlerFunc, target string, vars map[string]string, user *models.User, form url.Values) *httptest.ResponseRecorder {
	r := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if vars != nil {
		r = mux.SetURLVars(r, vars)
	}
	if user != nil {
		r = middleware.WithUser(r, user)
	}
	w := httptest.NewRecorder()
	handler(w, r)
	return w
}

func TestIndexListsVisiblePosts(t *testing.T) {
	app := newTestApp(t)
	app.addPost(t, app.alice, app.now.Add(-time.Hour), true, "Morning edition")
	app.addPost(t, app.alice, app.now.Add(48*time.Hour), true, "Scheduled piece")
	app.addPost(t, app.alice, app.now.Add(-time.Hour), false, "Draft piece")

	w := doGet(app.postCtrl.Index, "/", nil, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Morning edition")
	assert.NotContains(t, body, "Scheduled piece")
	assert.NotContains(t, body, "Draft piece")
	assert.Contains(t, body, "0 comments")
}

func TestIndexPagination(t *testing.T) {
	app := newTestApp(t)
	for i := 0; i < 12; i++ {
		app.addPost(t, app.alice, app.now.Add(-time.Duration(i+1)*time.Minute), true, fmt.Sprintf("Post %02d", i))
	}

	w := doGet(app.postCtrl.Index, "/?page=2", nil, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Page 2 of 2")
	assert.Contains(t, body, "Post 10")
	assert.NotContains(t, body, "Post 05")
}

func TestShowHiddenPostOnlyForAuthor(t *testing.T) {
	app := newTestApp(t)
	post := app.addPost(t, app.alice, app.now.Add(48*time.Hour), true, "Scheduled piece")
	vars := map[string]string{"id": fmt.Sprint(post.ID)}

	w := doGet(app.postCtrl.Show, "/posts/1/", vars, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doGet(app.postCtrl.Show, "/posts/1/", vars, app.bob)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doGet(app.postCtrl.Show, "/posts/1/", vars, app.alice)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Scheduled piece")
}

func TestCategoryListing(t *testing.T) {
	app := newTestApp(t)
	sport := &models.Category{
		Title:       "Sport",
		Description: "sport",
		Slug:        "sport",
		Publication: models.Publication{IsPublished: true},
	}
	require.NoError(t, app.store.Categories().Create(sport))

	app.addPost(t, app.alice, app.now.Add(-time.Hour), true, "News item")
	outside := &models.Post{
		Title:       "Sport item",
		Text:        "body",
		PubDate:     app.now.Add(-time.Hour),
		AuthorID:    app.alice.ID,
		CategoryID:  &sport.ID,
		Publication: models.Publication{IsPublished: true},
	}
	require.NoError(t, app.store.Posts().Create(outside))

	w := doGet(app.postCtrl.Category, "/category/news/", map[string]string{"slug": "news"}, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "News item")
	assert.NotContains(t, body, "Sport item")
}

func TestCategoryUnknownSlug(t *testing.T) {
	app := newTestApp(t)

	w := doGet(app.postCtrl.Category, "/category/missing/", map[string]string{"slug": "missing"}, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreatePost(t *testing.T) {
	app := newTestApp(t)

	form := url.Values{
		"title":    {"Fresh"},
		"text":     {"fresh body"},
		"pub_date": {"2025-06-15T10:00"},
		"category": {fmt.Sprint(app.news.ID)},
	}
	w := doPost(app.postCtrl.Create, "/posts/create/", nil, app.alice, form)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/profile/alice/", w.Header().Get("Location"))

	page, err := app.posts.ListPublished(1)
	require.NoError(t, err)
	require.Len(t, page.Posts, 1)
	assert.Equal(t, "Fresh", page.Posts[0].Title)
	assert.Equal(t, app.alice.ID, page.Posts[0].AuthorID)
	assert.True(t, page.Posts[0].IsPublished)
}

func TestCreatePostValidation(t *testing.T) {
	app := newTestApp(t)

	form := url.Values{"title": {""}, "text": {"body"}}
	w := doPost(app.postCtrl.Create, "/posts/create/", nil, app.alice, form)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "title is required")
}

func TestEditPostNonOwnerRedirects(t *testing.T) {
	app := newTestApp(t)
	post := app.addPost(t, app.alice, app.now.Add(-time.Hour), true, "Original")
	vars := map[string]string{"id": fmt.Sprint(post.ID)}

	form := url.Values{"title": {"Hijacked"}, "text": {"body"}, "pub_date": {"2025-06-15T10:00"}}
	w := doPost(app.postCtrl.Edit, "/posts/1/edit/", vars, app.bob, form)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, fmt.Sprintf("/posts/%d/", post.ID), w.Header().Get("Location"))

	got, err := app.store.Posts().GetByID(post.ID)
	require.NoError(t, err)
	assert.Equal(t, "Original", got.Title)
}

func TestEditPostUpdates(t *testing.T) {
	app := newTestApp(t)
	post := app.addPost(t, app.alice, app.now.Add(-time.Hour), true, "Original")
	vars := map[string]string{"id": fmt.Sprint(post.ID)}

	w := doGet(app.postCtrl.Edit, "/posts/1/edit/", vars, app.alice)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Original")

	form := url.Values{
		"title":    {"Revised"},
		"text":     {"revised body"},
		"pub_date": {"2025-06-15T10:00"},
		"category": {fmt.Sprint(app.news.ID)},
	}
	w = doPost(app.postCtrl.Edit, "/posts/1/edit/", vars, app.alice, form)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, fmt.Sprintf("/posts/%d/", post.ID), w.Header().Get("Location"))

	got, err := app.store.Posts().GetByID(post.ID)
	require.NoError(t, err)
	assert.Equal(t, "Revised", got.Title)
	assert.Equal(t, app.alice.ID, got.AuthorID)
}

func TestDeletePostNonOwnerForbidden(t *testing.T) {
	app := newTestApp(t)
	post := app.addPost(t, app.alice, app.now.Add(-time.Hour), true, "Original")
	vars := map[string]string{"id": fmt.Sprint(post.ID)}

	w := doGet(app.postCtrl.Delete, "/posts/1/delete/", vars, app.bob)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doPost(app.postCtrl.Delete, "/posts/1/delete/", vars, app.bob, url.Values{})
	assert.Equal(t, http.StatusForbidden, w.Code)

	_, err := app.store.Posts().GetByID(post.ID)
	assert.NoError(t, err)
}

func TestDeletePostFlow(t *testing.T) {
	app := newTestApp(t)
	post := app.addPost(t, app.alice, app.now.Add(-time.Hour), true, "Doomed")
	vars := map[string]string{"id": fmt.Sprint(post.ID)}

	w := doGet(app.postCtrl.Delete, "/posts/1/delete/", vars, app.alice)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Doomed")

	w = doPost(app.postCtrl.Delete, "/posts/1/delete/", vars, app.alice, url.Values{})
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))

	_, err := app.store.Posts().GetByID(post.ID)
	assert.Error(t, err)
}
