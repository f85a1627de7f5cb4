package routes

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
	"pressroom/app/repositories"
	"pressroom/app/sessions"
)

// client drives the full router the way a browser would, carrying the
// session cookie between requests.
type client struct {
	router *mux.Router
	token  string
}

func (c *client) do(t *testing.T, method, target string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	var r *http.Request
	if form != nil {
		r = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		r = httptest.NewRequest(method, target, nil)
	}
	if c.token != "" {
		r.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: c.token})
	}

	w := httptest.NewRecorder()
	c.router.ServeHTTP(w, r)

	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == middleware.SessionCookie {
			c.token = cookie.Value
		}
	}
	return w
}

func (c *client) get(t *testing.T, target string) *httptest.ResponseRecorder {
	return c.do(t, http.MethodGet, target, nil)
}

func (c *client) postForm(t *testing.T, target string, form url.Values) *httptest.ResponseRecorder {
	return c.do(t, http.MethodPost, target, form)
}

type site struct {
	db       *repositories.Database
	sessions *sessions.Store
	router   *mux.Router
}

func newSite(t *testing.T) *site {
	t.Helper()
	db, err := repositories.NewDatabase("")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	sessionStore, err := sessions.NewStore("", time.Hour)
	require.NoError(t, err)
	t.Cleanup(func() { sessionStore.Close() })

	router := Setup(Deps{
		DB:       db,
		Sessions: sessionStore,
		Log:      zap.NewNop(),
		BasePath: "..",
		MediaDir: t.TempDir(),
	})
	return &site{db: db, sessions: sessionStore, router: router}
}

func (s *site) client() *client {
	return &client{router: s.router}
}

func (s *site) category(t *testing.T, slug string) *models.Category {
	t.Helper()
	c := &models.Category{
		Title:       slug,
		Description: "about " + slug,
		Slug:        slug,
		Publication: models.Publication{IsPublished: true},
	}
	require.NoError(t, s.db.NewCategoryRepository().Create(c))
	return c
}

// signUp registers an account through the real form and returns a
// signed-in client.
func (s *site) signUp(t *testing.T, username string) *client {
	t.Helper()
	c := s.client()
	w := c.postForm(t, "/auth/registration/", url.Values{
		"username": {username},
		"email":    {username + "@example.com"},
		"password": {"sup3rsecret"},
	})
	require.Equal(t, http.StatusSeeOther, w.Code)
	require.NotEmpty(t, c.token)
	return c
}

func (s *site) createPost(t *testing.T, c *client, category *models.Category, title, pubDate string) *models.Post {
	t.Helper()
	form := url.Values{
		"title":    {title},
		"text":     {"body of " + title},
		"pub_date": {pubDate},
	}
	if category != nil {
		form.Set("category", fmt.Sprint(category.ID))
	}
	w := c.postForm(t, "/posts/create/", form)
	require.Equal(t, http.StatusSeeOther, w.Code)

	// Pull the stored post back out for its id.
	posts, err := s.db.NewPostRepository().ListByAuthor(s.userID(t, c), 100, 0)
	require.NoError(t, err)
	for _, p := range posts {
		if p.Title == title {
			return p
		}
	}
	t.Fatalf("post %q not stored", title)
	return nil
}

func (s *site) userID(t *testing.T, c *client) int {
	t.Helper()
	id, err := s.sessions.Get(c.token)
	require.NoError(t, err)
	return id
}

func TestPublicationFlow(t *testing.T) {
	s := newSite(t)
	news := s.category(t, "news")
	alice := s.signUp(t, "alice")

	s.createPost(t, alice, news, "Morning edition", "2020-01-01T09:00")

	// The post is visible to everyone on the index with a zero comment
	// count.
	anon := s.client()
	w := anon.get(t, "/")
	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Morning edition")
	assert.Contains(t, body, "0 comments")

	// And on the category page.
	w = anon.get(t, "/category/news/")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Morning edition")
}

func TestScheduledPostHiddenUntilPubDate(t *testing.T) {
	s := newSite(t)
	news := s.category(t, "news")
	alice := s.signUp(t, "alice")

	future := time.Now().Add(48 * time.Hour).Format("2006-01-02T15:04")
	post := s.createPost(t, alice, news, "Scheduled piece", future)
	detail := fmt.Sprintf("/posts/%d/", post.ID)

	anon := s.client()
	w := anon.get(t, "/")
	assert.NotContains(t, w.Body.String(), "Scheduled piece")

	w = anon.get(t, detail)
	assert.Equal(t, http.StatusNotFound, w.Code)

	bob := s.signUp(t, "bob")
	w = bob.get(t, detail)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// The author still sees their own scheduled post.
	w = alice.get(t, detail)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Scheduled piece")

	// And it shows on the author's profile regardless of viewer.
	w = anon.get(t, "/profile/alice/")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Scheduled piece")
}

func TestCommentLifecycle(t *testing.T) {
	s := newSite(t)
	news := s.category(t, "news")
	alice := s.signUp(t, "alice")
	post := s.createPost(t, alice, news, "Morning edition", "2020-01-01T09:00")
	detail := fmt.Sprintf("/posts/%d/", post.ID)

	bob := s.signUp(t, "bob")
	w := bob.postForm(t, detail+"comment/", url.Values{"text": {"great read"}})
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, detail, w.Header().Get("Location"))

	w = s.client().get(t, detail)
	assert.Contains(t, w.Body.String(), "great read")

	comments, err := s.db.NewCommentRepository().ListByPost(post.ID)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	deleteURL := fmt.Sprintf("%sdelete_comment/%d/", detail, comments[0].ID)

	// Two-step removal: confirmation page first, then the delete.
	w = bob.get(t, deleteURL)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "great read")

	w = bob.postForm(t, deleteURL, url.Values{})
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, detail, w.Header().Get("Location"))

	w = s.client().get(t, detail)
	assert.NotContains(t, w.Body.String(), "great read")
}

func TestForeignEditLeavesPostUnchanged(t *testing.T) {
	s := newSite(t)
	news := s.category(t, "news")
	alice := s.signUp(t, "alice")
	post := s.createPost(t, alice, news, "Original", "2020-01-01T09:00")
	detail := fmt.Sprintf("/posts/%d/", post.ID)
	editURL := detail + "edit/"

	bob := s.signUp(t, "bob")
	w := bob.get(t, editURL)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, detail, w.Header().Get("Location"))

	w = bob.postForm(t, editURL, url.Values{
		"title":    {"Hijacked"},
		"text":     {"hijacked body"},
		"pub_date": {"2020-01-01T09:00"},
	})
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, detail, w.Header().Get("Location"))

	w = s.client().get(t, detail)
	assert.Contains(t, w.Body.String(), "Original")
	assert.NotContains(t, w.Body.String(), "Hijacked")
}

func TestAnonymousMutationsRedirectToLogin(t *testing.T) {
	s := newSite(t)
	anon := s.client()

	for _, target := range []string{
		"/posts/create/",
		"/posts/1/edit/",
		"/posts/1/delete/",
		"/profile/alice/edit/",
	} {
		w := anon.get(t, target)
		assert.Equal(t, http.StatusSeeOther, w.Code, target)
		assert.Equal(t, "/auth/login/", w.Header().Get("Location"), target)
	}

	w := anon.postForm(t, "/posts/1/comment/", url.Values{"text": {"hi"}})
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/auth/login/", w.Header().Get("Location"))
}

func TestLoginLogoutFlow(t *testing.T) {
	s := newSite(t)
	s.signUp(t, "alice")

	c := s.client()
	w := c.postForm(t, "/auth/login/", url.Values{
		"username": {"alice"},
		"password": {"sup3rsecret"},
	})
	require.Equal(t, http.StatusSeeOther, w.Code)
	require.NotEmpty(t, c.token)

	// The nav now greets the signed-in user.
	w = c.get(t, "/")
	assert.Contains(t, w.Body.String(), "/profile/alice/")

	w = c.postForm(t, "/auth/logout/", url.Values{})
	assert.Equal(t, http.StatusSeeOther, w.Code)

	w = c.get(t, "/")
	assert.Contains(t, w.Body.String(), "/auth/login/")
}
