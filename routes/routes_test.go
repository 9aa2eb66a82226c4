package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"quill/config"
	"quill/database"
	"quill/logging"
	"quill/models"
	"quill/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testApp struct {
	t      *testing.T
	db     *gorm.DB
	router *gin.Engine
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := database.OpenTest(t)
	cfg := &config.Config{
		JWTSecret:          "test-secret",
		SessionCookie:      "quill_session",
		SessionTTL:         time.Hour,
		MediaRoot:          t.TempDir(),
		MediaURL:           "/media/",
		MaxAvatarBytes:     1 << 20,
		FeedPageSize:       2,
		SearchPageSize:     5,
		DefaultPermissions: []string{models.PermCreateComment},
	}
	hub := services.NewHubService()
	t.Cleanup(hub.Stop)

	logger := logging.NewWithWriter(io.Discard, "error", "json")
	return &testApp{t: t, db: db, router: SetupRouter(db, cfg, hub, logger)}
}

func (a *testApp) do(method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	a.t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

func data(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	d, ok := decode(t, w)["data"].(map[string]interface{})
	require.True(t, ok, w.Body.String())
	return d
}

func (a *testApp) signup(username string) string {
	a.t.Helper()
	w := a.do(http.MethodPost, "/account/signup/", gin.H{
		"username":         username,
		"email":            username + "@example.com",
		"password":         "s3cret-pass",
		"password_confirm": "s3cret-pass",
	}, "")
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	return data(a.t, w)["token"].(string)
}

func (a *testApp) createPost(token, title string, status models.PostStatus, tags string) string {
	a.t.Helper()
	w := a.do(http.MethodPost, "/new/", gin.H{
		"title":      title,
		"content":    "Some words about " + title,
		"status":     status,
		"tags_input": tags,
	}, token)
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	return decode(a.t, w)["redirect"].(string)
}

func TestHealth(t *testing.T) {
	app := newTestApp(t)

	w := app.do(http.MethodGet, "/health", nil, "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestAnonymousDetailRedirectsToLogin(t *testing.T) {
	app := newTestApp(t)
	alice := app.signup("alice")
	path := app.createPost(alice, "Hello", models.StatusPublished, "")

	w := app.do(http.MethodGet, path, nil, "")

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/account/login/?next="+url.QueryEscape(path), w.Header().Get("Location"))
	assert.Equal(t, "You need to be logged in to view this post.", decode(t, w)["message"])
}

func TestMissingPostIs404BeforeLogin(t *testing.T) {
	app := newTestApp(t)

	w := app.do(http.MethodGet, "/@nobody/missing/", nil, "")

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDuplicateTitlesGetSuffixedSlugs(t *testing.T) {
	app := newTestApp(t)
	alice := app.signup("alice")

	first := app.createPost(alice, "Hello World", models.StatusPublished, "")
	second := app.createPost(alice, "Hello World", models.StatusPublished, "")

	assert.Equal(t, "/@alice/hello-world/", first)
	assert.Equal(t, "/@alice/hello-world-1/", second)
}

func TestPostDetail(t *testing.T) {
	app := newTestApp(t)
	alice := app.signup("alice")
	bob := app.signup("bob")
	path := app.createPost(alice, "Hello", models.StatusPublished, "Go, web")

	w := app.do(http.MethodGet, path, nil, bob)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	post := data(t, w)["post"].(map[string]interface{})
	assert.Equal(t, "Hello", post["title"])
	assert.Equal(t, []interface{}{"Go", "web"}, post["tags"])
	assert.Equal(t, false, post["can_edit"])

	recent := data(t, w)["recently_viewed"].([]interface{})
	require.Len(t, recent, 1)
	assert.Equal(t, "hello", recent[0].(map[string]interface{})["slug"])
}

func TestDraftHiddenFromOtherUsers(t *testing.T) {
	app := newTestApp(t)
	alice := app.signup("alice")
	bob := app.signup("bob")
	path := app.createPost(alice, "Secret", models.StatusDrafted, "")

	w := app.do(http.MethodGet, path, nil, bob)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/account/@bob/", w.Header().Get("Location"))

	w = app.do(http.MethodGet, path, nil, alice)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLikeToggle(t *testing.T) {
	app := newTestApp(t)
	alice := app.signup("alice")
	bob := app.signup("bob")
	path := app.createPost(alice, "Hello", models.StatusPublished, "")

	w := app.do(http.MethodPost, path+"like/", nil, bob)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"liked":true,"like_count":1}`, w.Body.String())

	w = app.do(http.MethodPost, path+"like/", nil, bob)
	assert.JSONEq(t, `{"liked":false,"like_count":0}`, w.Body.String())

	w = app.do(http.MethodPost, path+"like/", nil, "")
	assert.Equal(t, http.StatusFound, w.Code)

	draft := app.createPost(alice, "Draft", models.StatusDrafted, "")
	w = app.do(http.MethodPost, draft+"like/", nil, bob)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFeedPagination(t *testing.T) {
	app := newTestApp(t)
	alice := app.signup("alice")
	for _, title := range []string{"One", "Two", "Three"} {
		app.createPost(alice, title, models.StatusPublished, "")
	}
	app.createPost(alice, "Hidden", models.StatusDrafted, "")

	w := app.do(http.MethodGet, "/", nil, "")
	page := data(t, w)
	assert.EqualValues(t, 3, page["total"])
	assert.EqualValues(t, 1, page["page"])
	assert.Len(t, page["items"], 2)
	assert.Equal(t, "Three", page["items"].([]interface{})[0].(map[string]interface{})["title"])

	page = data(t, app.do(http.MethodGet, "/?page=99", nil, ""))
	assert.EqualValues(t, 2, page["page"])
	assert.Len(t, page["items"], 1)

	page = data(t, app.do(http.MethodGet, "/?page=abc", nil, ""))
	assert.EqualValues(t, 1, page["page"])
}

func TestSearch(t *testing.T) {
	app := newTestApp(t)
	alice := app.signup("alice")
	app.createPost(alice, "Go tips", models.StatusPublished, "golang")
	app.createPost(alice, "Go secrets", models.StatusDrafted, "golang")
	app.createPost(alice, "Archived go", models.StatusArchived, "")

	page := data(t, app.do(http.MethodGet, "/search/?q=go", nil, ""))
	assert.EqualValues(t, 1, page["total"])

	page = data(t, app.do(http.MethodGet, "/search/?q=GOLANG", nil, ""))
	assert.EqualValues(t, 1, page["total"], "tag names are searched case-insensitively")

	body := decode(t, app.do(http.MethodGet, "/search/?q=zzz", nil, ""))
	assert.Equal(t, "No posts found for 'zzz'.", body["message"])

	body = decode(t, app.do(http.MethodGet, "/search/?q=%20%20%20", nil, ""))
	assert.NotContains(t, body, "message")
	assert.Equal(t, "", body["form"].(map[string]interface{})["q"])
}

func TestAddComment(t *testing.T) {
	app := newTestApp(t)
	alice := app.signup("alice")
	bob := app.signup("bob")
	app.createPost(alice, "Hello", models.StatusPublished, "")
	app.createPost(alice, "Draft", models.StatusDrafted, "")

	w := app.do(http.MethodPost, "/posts/hello/comment/add/", gin.H{"content": "  Nice post  "}, bob)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, "Your comment was added successfully.", body["message"])
	assert.Equal(t, "/@alice/hello/", body["redirect"])
	assert.Equal(t, "Nice post", body["data"].(map[string]interface{})["content"])

	w = app.do(http.MethodPost, "/posts/hello/comment/add/", gin.H{"content": "   "}, bob)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Error! Please retry: Content: This field is required.", decode(t, w)["message"])

	w = app.do(http.MethodPost, "/posts/draft/comment/add/", gin.H{"content": "hi"}, bob)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = app.do(http.MethodPost, "/posts/hello/comment/add/", gin.H{"content": "hi"}, "")
	assert.Equal(t, http.StatusFound, w.Code)

	var count int64
	app.db.Model(&models.Comment{}).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestCommentNeedsPermission(t *testing.T) {
	app := newTestApp(t)
	alice := app.signup("alice")
	app.createPost(alice, "Hello", models.StatusPublished, "")

	require.NoError(t, app.db.Where("codename = ?", models.PermCreateComment).Delete(&models.UserPermission{}).Error)

	w := app.do(http.MethodPost, "/posts/hello/comment/add/", gin.H{"content": "hi"}, alice)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestSignupLoginLogout(t *testing.T) {
	app := newTestApp(t)

	w := app.do(http.MethodPost, "/account/signup/", gin.H{
		"username":         "alice",
		"email":            "alice@example.com",
		"password":         "s3cret-pass",
		"password_confirm": "different",
	}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Passwords are not same!")

	token := app.signup("alice")
	assert.Contains(t, decode(t, app.do(http.MethodGet, "/account/signup/", nil, token)), "message")

	w = app.do(http.MethodPost, "/account/login/", gin.H{"username": "alice", "password": "wrong-pass"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = app.do(http.MethodPost, "/account/login/?next=/new/", gin.H{"username": "alice", "password": "s3cret-pass"}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "/new/", decode(t, w)["redirect"])
	assert.NotEmpty(t, w.Result().Cookies())

	w = app.do(http.MethodPost, "/account/login/", gin.H{"username": "alice", "password": "s3cret-pass", "next": "https://evil.test/"}, "")
	assert.Equal(t, "/", decode(t, w)["redirect"])

	w = app.do(http.MethodPost, "/account/logout/", nil, token)
	assert.Equal(t, "You have been successfully logged out.", decode(t, w)["message"])

	w = app.do(http.MethodPost, "/account/logout/", nil, token)
	assert.Equal(t, "You are not currently logged in.", decode(t, w)["message"])
}

func TestLoginWhenAlreadyLoggedIn(t *testing.T) {
	app := newTestApp(t)
	alice := app.signup("alice")

	var before int64
	require.NoError(t, app.db.Model(&models.Session{}).Count(&before).Error)

	w := app.do(http.MethodPost, "/account/login/", gin.H{"username": "alice", "password": "s3cret-pass"}, alice)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, "You are already logged in.", body["message"])
	assert.Equal(t, "info", body["level"])
	assert.Equal(t, "/", body["redirect"])
	assert.Empty(t, w.Result().Cookies())

	var after int64
	require.NoError(t, app.db.Model(&models.Session{}).Count(&after).Error)
	assert.Equal(t, before, after)
}

func TestProfile(t *testing.T) {
	app := newTestApp(t)
	alice := app.signup("alice")
	bob := app.signup("bob")
	app.createPost(alice, "Public", models.StatusPublished, "")
	app.createPost(alice, "Private", models.StatusDrafted, "")

	profile := data(t, app.do(http.MethodGet, "/account/@alice/", nil, bob))
	assert.Len(t, profile["posts"], 1)
	assert.NotContains(t, profile, "email")

	profile = data(t, app.do(http.MethodGet, "/account/@alice/", nil, alice))
	assert.Len(t, profile["posts"], 2)
	assert.Equal(t, "alice@example.com", profile["email"])

	w := app.do(http.MethodGet, "/account/alice/", nil, alice)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProfileEdit(t *testing.T) {
	app := newTestApp(t)
	alice := app.signup("alice")
	bob := app.signup("bob")

	edit := gin.H{"username": "alice", "email": "new@example.com", "bio": "hi"}

	w := app.do(http.MethodPost, "/account/@alice/edit/", edit, bob)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = app.do(http.MethodPost, "/account/@alice/edit/", edit, alice)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var user models.User
	require.NoError(t, app.db.Where("username = ?", "alice").First(&user).Error)
	assert.Equal(t, "new@example.com", user.Email)
	assert.Equal(t, "hi", user.Bio)

	w = app.do(http.MethodPost, "/account/@alice/edit/", gin.H{"username": "bob", "email": "x@example.com"}, alice)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEditPostOwnerOnly(t *testing.T) {
	app := newTestApp(t)
	alice := app.signup("alice")
	bob := app.signup("bob")
	path := app.createPost(alice, "Hello", models.StatusDrafted, "")

	update := gin.H{"title": "Hello again", "content": "More", "status": models.StatusPublished}

	w := app.do(http.MethodPost, path+"edit/", update, bob)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = app.do(http.MethodPost, path+"edit/", update, alice)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "/@alice/hello/", decode(t, w)["redirect"], "slugs survive title edits")
}

func TestContact(t *testing.T) {
	app := newTestApp(t)

	w := app.do(http.MethodPost, "/contact/", gin.H{"name": "Bob", "email": "bob@example.com", "message": "Hi there"}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "Your message successfully sent. Thank you!", decode(t, w)["message"])

	w = app.do(http.MethodPost, "/contact/", gin.H{"name": "Bob", "email": "not-an-email", "message": "Hi"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "There was an error in your form. Please check it.", decode(t, w)["message"])
}

func TestAdminIsStaffOnly(t *testing.T) {
	app := newTestApp(t)
	alice := app.signup("alice")

	_, err := services.NewUserService(app.db).CreateSuperuser(context.Background(), "root", "root@example.com", "root-pass-123")
	require.NoError(t, err)
	w := app.do(http.MethodPost, "/account/login/", gin.H{"username": "root", "password": "root-pass-123"}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	root := data(t, w)["token"].(string)

	app.do(http.MethodPost, "/contact/", gin.H{"name": "Bob", "email": "bob@example.com", "message": "Hi there"}, "")

	assert.Equal(t, http.StatusUnauthorized, app.do(http.MethodGet, "/admin/contacts", nil, "").Code)
	assert.Equal(t, http.StatusForbidden, app.do(http.MethodGet, "/admin/contacts", nil, alice).Code)

	w = app.do(http.MethodGet, "/admin/contacts", nil, root)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	items := data(t, w)["items"].([]interface{})
	require.Len(t, items, 1)
	id := items[0].(map[string]interface{})["id"]

	w = app.do(http.MethodDelete, "/admin/contacts/"+jsonNumber(id), nil, root)
	assert.Equal(t, http.StatusOK, w.Code)
	w = app.do(http.MethodDelete, "/admin/contacts/"+jsonNumber(id), nil, root)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = app.do(http.MethodGet, "/admin/users?is_staff=true", nil, root)
	assert.EqualValues(t, 1, data(t, w)["total"])
}

func jsonNumber(v interface{}) string {
	raw, _ := json.Marshal(v)
	return string(raw)
}
