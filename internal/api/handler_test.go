package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mavecode/portfolio/internal/agent"
	"github.com/mavecode/portfolio/internal/session"
	"github.com/mavecode/portfolio/internal/storage"
)

// echoGenerator always answers with a fixed text so agent endpoints can be
// exercised without a provider.
type echoGenerator struct{ text string }

func (g echoGenerator) Generate(ctx context.Context, model, systemInstruction, userMessage string) (string, error) {
	return g.text, nil
}

type testEnv struct {
	store    *storage.MemoryStore
	sessions *session.Store
	handler  http.Handler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := storage.NewMemoryStore()
	sessions := session.NewStore(time.Hour)
	ag := agent.New(store, echoGenerator{text: "ok"}, []string{"test-model"})

	handler := NewHandler(Deps{
		Store:         store,
		Sessions:      sessions,
		Agent:         ag,
		Version:       "test",
		AdminUsername: "admin",
		AdminPassword: "secret",
	})
	return &testEnv{store: store, sessions: sessions, handler: handler}
}

func (e *testEnv) request(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), dst); err != nil {
		t.Fatalf("decoding response %q: %v", w.Body.String(), err)
	}
}

func (e *testEnv) login(t *testing.T) (token, userID string) {
	t.Helper()
	w := e.request(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "miryam", "password": "pw",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("register returned %d: %s", w.Code, w.Body.String())
	}
	var resp map[string]string
	decodeBody(t, w, &resp)
	return resp["token"], resp["user_id"]
}

func TestRootAndHealth(t *testing.T) {
	e := newTestEnv(t)

	w := e.request(t, http.MethodGet, "/api/", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("root returned %d", w.Code)
	}
	var root map[string]string
	decodeBody(t, w, &root)
	if root["version"] != "test" {
		t.Errorf("version = %q", root["version"])
	}

	w = e.request(t, http.MethodGet, "/api/health", "", nil)
	if w.Code != http.StatusOK {
		t.Errorf("health returned %d", w.Code)
	}
}

func TestRegisterLoginVerifyLogout(t *testing.T) {
	e := newTestEnv(t)
	token, userID := e.login(t)
	if token == "" || userID == "" {
		t.Fatal("register must return a token and user id")
	}

	// A portfolio skeleton exists for the new owner.
	if _, err := e.store.GetPortfolioByUserID(userID); err != nil {
		t.Errorf("no portfolio for new account: %v", err)
	}

	// Duplicate registration is rejected.
	w := e.request(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "miryam", "password": "other",
	})
	if w.Code != http.StatusConflict {
		t.Errorf("duplicate register returned %d", w.Code)
	}

	// Login with the stored credentials.
	w = e.request(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": "miryam", "password": "pw",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("login returned %d: %s", w.Code, w.Body.String())
	}
	var loginResp map[string]string
	decodeBody(t, w, &loginResp)

	w = e.request(t, http.MethodGet, "/api/auth/verify", loginResp["token"], nil)
	if w.Code != http.StatusOK {
		t.Fatalf("verify returned %d", w.Code)
	}
	var verify map[string]any
	decodeBody(t, w, &verify)
	if verify["valid"] != true || verify["username"] != "miryam" {
		t.Errorf("verify = %v", verify)
	}

	w = e.request(t, http.MethodPost, "/api/auth/logout", loginResp["token"], nil)
	if w.Code != http.StatusOK {
		t.Fatalf("logout returned %d", w.Code)
	}
	w = e.request(t, http.MethodGet, "/api/auth/verify", loginResp["token"], nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("verify after logout returned %d", w.Code)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	e := newTestEnv(t)
	e.login(t)

	w := e.request(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": "miryam", "password": "wrong",
	})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("login returned %d", w.Code)
	}
}

func TestLegacyAdminLogin(t *testing.T) {
	e := newTestEnv(t)

	w := e.request(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": "admin", "password": "secret",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("admin login returned %d: %s", w.Code, w.Body.String())
	}
	var resp map[string]string
	decodeBody(t, w, &resp)
	if resp["role"] != "admin" {
		t.Errorf("role = %q", resp["role"])
	}
}

func TestAuthRequired(t *testing.T) {
	e := newTestEnv(t)

	for _, path := range []string{"/api/tasks", "/api/ai/memory", "/api/stats", "/api/notifications"} {
		w := e.request(t, http.MethodGet, path, "", nil)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("GET %s without token returned %d", path, w.Code)
		}
	}
}

func TestTokenAcceptedAsQueryParameter(t *testing.T) {
	e := newTestEnv(t)
	token, _ := e.login(t)

	w := e.request(t, http.MethodGet, "/api/tasks?token="+token, "", nil)
	if w.Code != http.StatusOK {
		t.Errorf("query token returned %d", w.Code)
	}
}

func TestPortfolioRoundTrip(t *testing.T) {
	e := newTestEnv(t)
	token, userID := e.login(t)

	w := e.request(t, http.MethodPut, "/api/portfolio", token, map[string]any{
		"name":  "Miryam Abida",
		"title": "Engineer",
		"bio":   "Hello.",
		"skills": []map[string]any{
			{"name": "Go", "level": 90, "category": "backend"},
		},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("update returned %d: %s", w.Code, w.Body.String())
	}
	var updated storage.Portfolio
	decodeBody(t, w, &updated)
	if updated.UserID != userID {
		t.Errorf("user id = %q, body must never override the session owner", updated.UserID)
	}

	w = e.request(t, http.MethodGet, "/api/portfolio/miryam", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get returned %d", w.Code)
	}
	var got storage.Portfolio
	decodeBody(t, w, &got)
	if got.Name != "Miryam Abida" || len(got.Skills) != 1 {
		t.Errorf("portfolio = %+v", got)
	}

	w = e.request(t, http.MethodGet, "/api/portfolio/ghost", "", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown username returned %d", w.Code)
	}
}

func TestPortfolioUpdateKeepsRecordID(t *testing.T) {
	e := newTestEnv(t)
	token, userID := e.login(t)

	before, err := e.store.GetPortfolioByUserID(userID)
	if err != nil {
		t.Fatal(err)
	}

	w := e.request(t, http.MethodPut, "/api/portfolio", token, map[string]any{"name": "New Name"})
	if w.Code != http.StatusOK {
		t.Fatalf("update returned %d", w.Code)
	}
	after, err := e.store.GetPortfolioByUserID(userID)
	if err != nil {
		t.Fatal(err)
	}
	if after.ID != before.ID {
		t.Errorf("record id changed on update: %q -> %q", before.ID, after.ID)
	}
	if after.Name != "New Name" {
		t.Errorf("name = %q", after.Name)
	}
}

func TestTaskLifecycle(t *testing.T) {
	e := newTestEnv(t)
	token, _ := e.login(t)

	w := e.request(t, http.MethodPost, "/api/tasks", token, map[string]any{
		"title": "Write tests", "priority": "high", "deadline": "2026-03-01",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create returned %d: %s", w.Code, w.Body.String())
	}
	var created storage.Task
	decodeBody(t, w, &created)
	if created.ID == "" || created.Completed {
		t.Errorf("created task = %+v", created)
	}

	// Patch with only one field; the rest must survive.
	w = e.request(t, http.MethodPut, "/api/tasks/"+created.ID, token, map[string]any{"completed": true})
	if w.Code != http.StatusOK {
		t.Fatalf("patch returned %d: %s", w.Code, w.Body.String())
	}
	var patched storage.Task
	decodeBody(t, w, &patched)
	if !patched.Completed || patched.Title != "Write tests" || patched.Deadline != "2026-03-01" {
		t.Errorf("patched task = %+v", patched)
	}

	w = e.request(t, http.MethodGet, "/api/tasks", token, nil)
	var tasks []storage.Task
	decodeBody(t, w, &tasks)
	if len(tasks) != 1 {
		t.Fatalf("got %d tasks", len(tasks))
	}

	w = e.request(t, http.MethodDelete, "/api/tasks/"+created.ID, token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("delete returned %d", w.Code)
	}
	w = e.request(t, http.MethodDelete, "/api/tasks/"+created.ID, token, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("double delete returned %d", w.Code)
	}
}

func TestCreateTaskRequiresTitle(t *testing.T) {
	e := newTestEnv(t)
	token, _ := e.login(t)

	w := e.request(t, http.MethodPost, "/api/tasks", token, map[string]any{"priority": "low"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("create without title returned %d", w.Code)
	}
}

func TestMemoryEndpoints(t *testing.T) {
	e := newTestEnv(t)
	token, _ := e.login(t)

	w := e.request(t, http.MethodPost, "/api/ai/memory", token, map[string]any{
		"type": "preference", "content": "prefers dark mode",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create returned %d: %s", w.Code, w.Body.String())
	}
	var created storage.MemoryEntry
	decodeBody(t, w, &created)

	w = e.request(t, http.MethodGet, "/api/ai/memory", token, nil)
	var memories []storage.MemoryEntry
	decodeBody(t, w, &memories)
	if len(memories) != 1 {
		t.Fatalf("got %d memories", len(memories))
	}

	w = e.request(t, http.MethodDelete, "/api/ai/memory/"+created.ID, token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("delete returned %d", w.Code)
	}

	e.request(t, http.MethodPost, "/api/ai/memory", token, map[string]any{"content": "a"})
	e.request(t, http.MethodPost, "/api/ai/memory", token, map[string]any{"content": "b"})
	w = e.request(t, http.MethodDelete, "/api/ai/memory", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("clear returned %d", w.Code)
	}
	w = e.request(t, http.MethodGet, "/api/ai/memory", token, nil)
	memories = nil
	decodeBody(t, w, &memories)
	if len(memories) != 0 {
		t.Errorf("got %d memories after clear", len(memories))
	}
}

func TestChatEndpointAlwaysOK(t *testing.T) {
	e := newTestEnv(t)

	w := e.request(t, http.MethodPost, "/api/ai/chat", "", map[string]string{"message": "hello"})
	if w.Code != http.StatusOK {
		t.Fatalf("chat returned %d", w.Code)
	}
	var reply agent.Reply
	decodeBody(t, w, &reply)
	if !reply.Success || reply.Response != "ok" {
		t.Errorf("reply = %+v", reply)
	}

	w = e.request(t, http.MethodPost, "/api/ai/chat", "", map[string]string{})
	if w.Code != http.StatusBadRequest {
		t.Errorf("empty message returned %d", w.Code)
	}
}

func TestSuggestionsEndpoint(t *testing.T) {
	e := newTestEnv(t)
	token, _ := e.login(t)

	w := e.request(t, http.MethodGet, "/api/ai/suggestions", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("suggestions returned %d", w.Code)
	}
	var resp struct {
		Suggestions []agent.Suggestion `json:"suggestions"`
	}
	decodeBody(t, w, &resp)
	if len(resp.Suggestions) != 1 || resp.Suggestions[0].Type != "encouragement" {
		t.Errorf("suggestions = %+v", resp.Suggestions)
	}
}

func TestArticleLifecycle(t *testing.T) {
	e := newTestEnv(t)
	token, _ := e.login(t)

	w := e.request(t, http.MethodPost, "/api/articles", token, map[string]any{
		"title": "First Post", "content": "Hello world", "published": true,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create returned %d: %s", w.Code, w.Body.String())
	}
	var created storage.Article
	decodeBody(t, w, &created)

	// Draft article for the published_only filter.
	e.request(t, http.MethodPost, "/api/articles", token, map[string]any{
		"title": "Draft", "content": "...",
	})

	w = e.request(t, http.MethodGet, "/api/articles?published_only=true", "", nil)
	var published []storage.Article
	decodeBody(t, w, &published)
	if len(published) != 1 || published[0].Title != "First Post" {
		t.Errorf("published = %+v", published)
	}

	w = e.request(t, http.MethodGet, "/api/articles", "", nil)
	var all []storage.Article
	decodeBody(t, w, &all)
	if len(all) != 2 {
		t.Errorf("got %d articles", len(all))
	}

	// Public like and comment.
	w = e.request(t, http.MethodPost, "/api/articles/"+created.ID+"/like", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("like returned %d", w.Code)
	}
	var likes map[string]int
	decodeBody(t, w, &likes)
	if likes["likes"] != 1 {
		t.Errorf("likes = %d", likes["likes"])
	}

	w = e.request(t, http.MethodPost, "/api/articles/"+created.ID+"/comment", "", map[string]string{
		"content": "Great read",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("comment returned %d: %s", w.Code, w.Body.String())
	}
	var comment storage.Comment
	decodeBody(t, w, &comment)
	if comment.AuthorName != "Anonymous" {
		t.Errorf("author = %q, want the anonymous default", comment.AuthorName)
	}

	w = e.request(t, http.MethodPut, "/api/articles/"+created.ID, token, map[string]any{"title": "Renamed"})
	if w.Code != http.StatusOK {
		t.Fatalf("update returned %d", w.Code)
	}
	got, _ := e.store.GetArticle(created.ID)
	if got.Title != "Renamed" || got.Likes != 1 || len(got.Comments) != 1 {
		t.Errorf("article after patch = %+v", got)
	}

	w = e.request(t, http.MethodDelete, "/api/articles/"+created.ID, token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("delete returned %d", w.Code)
	}
}

func TestGalleryLifecycle(t *testing.T) {
	e := newTestEnv(t)
	token, _ := e.login(t)

	var ids []string
	for _, caption := range []string{"one", "two"} {
		w := e.request(t, http.MethodPost, "/api/gallery/upload", token, map[string]any{
			"url": "https://example.com/" + caption + ".jpg", "caption": caption,
		})
		if w.Code != http.StatusCreated {
			t.Fatalf("upload returned %d: %s", w.Code, w.Body.String())
		}
		var p storage.GalleryPhoto
		decodeBody(t, w, &p)
		ids = append(ids, p.ID)
	}

	// Uploads are appended at the end of the display order.
	w := e.request(t, http.MethodGet, "/api/gallery", "", nil)
	var photos []storage.GalleryPhoto
	decodeBody(t, w, &photos)
	if len(photos) != 2 || photos[0].Caption != "one" {
		t.Fatalf("photos = %+v", photos)
	}
	if photos[1].Order != photos[0].Order+1 {
		t.Errorf("orders = %d, %d", photos[0].Order, photos[1].Order)
	}

	// Hide one and filter.
	w = e.request(t, http.MethodPut, "/api/gallery/"+ids[0], token, map[string]any{"visible": false})
	if w.Code != http.StatusOK {
		t.Fatalf("patch returned %d", w.Code)
	}
	w = e.request(t, http.MethodGet, "/api/gallery?visible_only=true", "", nil)
	photos = nil
	decodeBody(t, w, &photos)
	if len(photos) != 1 || photos[0].ID != ids[1] {
		t.Errorf("visible photos = %+v", photos)
	}

	// Reorder swaps the two.
	w = e.request(t, http.MethodPut, "/api/gallery/reorder", token, map[string]any{
		"order": map[string]int{ids[0]: 2, ids[1]: 1},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("reorder returned %d: %s", w.Code, w.Body.String())
	}
	w = e.request(t, http.MethodGet, "/api/gallery", "", nil)
	photos = nil
	decodeBody(t, w, &photos)
	if photos[0].ID != ids[1] {
		t.Errorf("photos after reorder = %+v", photos)
	}

	w = e.request(t, http.MethodDelete, "/api/gallery/"+ids[0], token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("delete returned %d", w.Code)
	}
}

func TestNotificationEndpoints(t *testing.T) {
	e := newTestEnv(t)
	token, _ := e.login(t)

	w := e.request(t, http.MethodPost, "/api/notifications", token, map[string]any{
		"title": "Hi", "message": "Something happened",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create returned %d: %s", w.Code, w.Body.String())
	}
	var created storage.Notification
	decodeBody(t, w, &created)
	if created.Type != "info" {
		t.Errorf("type = %q, want the info default", created.Type)
	}

	w = e.request(t, http.MethodPut, "/api/notifications/"+created.ID+"/read", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("mark read returned %d", w.Code)
	}

	w = e.request(t, http.MethodGet, "/api/notifications", token, nil)
	var list []storage.Notification
	decodeBody(t, w, &list)
	if len(list) != 1 || !list[0].Read {
		t.Errorf("notifications = %+v", list)
	}

	w = e.request(t, http.MethodDelete, "/api/notifications/"+created.ID, token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("delete returned %d", w.Code)
	}
}

func TestStatsAndAdminEndpoints(t *testing.T) {
	e := newTestEnv(t)
	token, _ := e.login(t)

	e.request(t, http.MethodPost, "/api/tasks", token, map[string]any{"title": "x"})

	w := e.request(t, http.MethodGet, "/api/stats", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("stats returned %d", w.Code)
	}
	var stats storage.Stats
	decodeBody(t, w, &stats)
	if stats.Tasks != 1 || stats.Users != 1 {
		t.Errorf("stats = %+v", stats)
	}

	w = e.request(t, http.MethodGet, "/api/admin/users", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("admin users returned %d", w.Code)
	}
	var users []storage.Account
	decodeBody(t, w, &users)
	if len(users) != 1 {
		t.Fatalf("got %d users", len(users))
	}
	if users[0].Password != "" || users[0].SecretKey != "" {
		t.Error("credentials must not leave the service")
	}

	w = e.request(t, http.MethodGet, "/api/admin/activity", token, nil)
	if w.Code != http.StatusOK {
		t.Errorf("admin activity returned %d", w.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	e := newTestEnv(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/tasks", nil)
	req.Header.Set("Origin", "https://example.com")
	req.Header.Set("Access-Control-Request-Method", "GET")
	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("preflight returned %d", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "https://example.com" {
		t.Errorf("allow origin = %q", w.Header().Get("Access-Control-Allow-Origin"))
	}
}
