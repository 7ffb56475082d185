package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/keremar/sift/internal/agent"
	"github.com/keremar/sift/internal/history"
	"github.com/keremar/sift/internal/profile"
)

const testToken = "test-token-12345"

type fakeAsker struct {
	answer     agent.Answer
	err        error
	lastUserID string
	lastQuery  string
}

func (f *fakeAsker) Ask(_ context.Context, userID, query string) (agent.Answer, error) {
	f.lastUserID, f.lastQuery = userID, query
	return f.answer, f.err
}

func setupAppHandler(t *testing.T, asker Asker) (http.Handler, *profile.Store, *history.Store) {
	t.Helper()

	profiles, err := profile.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	hist, err := history.Open(":memory:")
	if err != nil {
		t.Fatalf("Open(:memory:) failed: %v", err)
	}
	t.Cleanup(func() { hist.Close() })

	handler := NewAppHandler(AppDeps{
		Agent:    asker,
		Profiles: profiles,
		History:  hist,
		Token:    testToken,
	})
	return handler, profiles, hist
}

func authReq(method, url, body, token string) *http.Request {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, url, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func TestHealth_NoAuthRequired(t *testing.T) {
	h, _, _ := setupAppHandler(t, &fakeAsker{})

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	if !strings.Contains(rr.Body.String(), `"ok"`) {
		t.Errorf("unexpected body: %s", rr.Body.String())
	}
}

func TestAuth_RejectsMissingToken(t *testing.T) {
	h, _, _ := setupAppHandler(t, &fakeAsker{})

	rr := httptest.NewRecorder()
	req := authReq(http.MethodPost, "/ask", `{"query":"q"}`, "")
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestAuth_RejectsWrongToken(t *testing.T) {
	h, _, _ := setupAppHandler(t, &fakeAsker{})

	rr := httptest.NewRecorder()
	req := authReq(http.MethodPost, "/ask", `{"query":"q"}`, "wrong")
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestAsk_ReturnsAnswer(t *testing.T) {
	asker := &fakeAsker{answer: agent.Answer{
		UserID: "u1", Text: "the answer", Sources: []string{"https://a.example"}, Model: "test-model",
	}}
	h, _, _ := setupAppHandler(t, asker)

	rr := httptest.NewRecorder()
	req := authReq(http.MethodPost, "/ask", `{"user_id":"u1","query":"what is alpha?"}`, testToken)
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d; body = %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	var resp agent.Answer
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Text != "the answer" || resp.UserID != "u1" {
		t.Errorf("unexpected response: %+v", resp)
	}
	if asker.lastQuery != "what is alpha?" || asker.lastUserID != "u1" {
		t.Errorf("agent called with userID=%q query=%q", asker.lastUserID, asker.lastQuery)
	}
}

func TestAsk_MissingQuery(t *testing.T) {
	h, _, _ := setupAppHandler(t, &fakeAsker{})

	rr := httptest.NewRecorder()
	req := authReq(http.MethodPost, "/ask", `{"user_id":"u1"}`, testToken)
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestAsk_AgentFailure(t *testing.T) {
	h, _, _ := setupAppHandler(t, &fakeAsker{err: errors.New("web search failed: boom")})

	rr := httptest.NewRecorder()
	req := authReq(http.MethodPost, "/ask", `{"query":"q"}`, testToken)
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusBadGateway)
	}
}

func TestProfiles_ListAndGet(t *testing.T) {
	h, profiles, _ := setupAppHandler(t, &fakeAsker{})

	if _, err := profiles.GetOrCreate("alpha"); err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, authReq(http.MethodGet, "/profiles", "", testToken))
	if rr.Code != http.StatusOK {
		t.Fatalf("list status = %d; body = %s", rr.Code, rr.Body.String())
	}
	var list map[string][]string
	json.NewDecoder(rr.Body).Decode(&list)
	if len(list["user_ids"]) != 1 || list["user_ids"][0] != "alpha" {
		t.Errorf("unexpected ids: %v", list["user_ids"])
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, authReq(http.MethodGet, "/profiles/alpha", "", testToken))
	if rr.Code != http.StatusOK {
		t.Fatalf("get status = %d", rr.Code)
	}
	var p profile.Profile
	json.NewDecoder(rr.Body).Decode(&p)
	if p.UserID != "alpha" || p.Name == "" {
		t.Errorf("unexpected profile: %+v", p)
	}
}

func TestProfiles_GetNotFound(t *testing.T) {
	h, _, _ := setupAppHandler(t, &fakeAsker{})

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, authReq(http.MethodGet, "/profiles/missing", "", testToken))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestProfiles_Patch(t *testing.T) {
	h, profiles, _ := setupAppHandler(t, &fakeAsker{})

	if _, err := profiles.GetOrCreate("alpha"); err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}

	rr := httptest.NewRecorder()
	req := authReq(http.MethodPatch, "/profiles/alpha", `{"city":"Boston","interests":"go, sailing"}`, testToken)
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d; body = %s", rr.Code, rr.Body.String())
	}

	p, err := profiles.Get("alpha")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if p.City != "Boston" {
		t.Errorf("city = %q, want Boston", p.City)
	}
	if len(p.Interests) != 2 || p.Interests[0] != "go" {
		t.Errorf("interests = %v", p.Interests)
	}
}

func TestProfiles_PatchUnknownField(t *testing.T) {
	h, profiles, _ := setupAppHandler(t, &fakeAsker{})

	if _, err := profiles.GetOrCreate("alpha"); err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}

	rr := httptest.NewRecorder()
	req := authReq(http.MethodPatch, "/profiles/alpha", `{"favorite_color":"red"}`, testToken)
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestProfiles_Delete(t *testing.T) {
	h, profiles, _ := setupAppHandler(t, &fakeAsker{})

	if _, err := profiles.GetOrCreate("alpha"); err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, authReq(http.MethodDelete, "/profiles/alpha", "", testToken))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, authReq(http.MethodDelete, "/profiles/alpha", "", testToken))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("second delete status = %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestInteractions_ListGetDelete(t *testing.T) {
	h, _, hist := setupAppHandler(t, &fakeAsker{})

	in := history.Interaction{
		ID:        uuid.New().String(),
		CreatedAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		UserID:    "u1",
		Query:     "what is alpha?",
		Answer:    "alpha is first",
	}
	if err := hist.SaveInteraction(in); err != nil {
		t.Fatalf("SaveInteraction failed: %v", err)
	}

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, authReq(http.MethodGet, "/interactions?limit=10", "", testToken))
	if rr.Code != http.StatusOK {
		t.Fatalf("list status = %d", rr.Code)
	}
	var list []history.Interaction
	json.NewDecoder(rr.Body).Decode(&list)
	if len(list) != 1 || list[0].ID != in.ID {
		t.Errorf("unexpected list: %+v", list)
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, authReq(http.MethodGet, "/interactions/"+in.ID, "", testToken))
	if rr.Code != http.StatusOK {
		t.Fatalf("get status = %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, authReq(http.MethodDelete, "/interactions/"+in.ID, "", testToken))
	if rr.Code != http.StatusOK {
		t.Fatalf("delete status = %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, authReq(http.MethodGet, "/interactions/"+in.ID, "", testToken))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("get after delete status = %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestInteractions_EmptyListIsArray(t *testing.T) {
	h, _, _ := setupAppHandler(t, &fakeAsker{})

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, authReq(http.MethodGet, "/interactions", "", testToken))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if got := strings.TrimSpace(rr.Body.String()); got != "[]" {
		t.Errorf("expected empty array, got %s", got)
	}
}
