package server

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"socialnet/backend/internal/config"
	"socialnet/backend/internal/database"
	"socialnet/backend/internal/hub"
	"socialnet/backend/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testUser struct {
	ID    uint
	Token string
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	config.AppConfig = &config.Config{
		JWTSecret:     "test-secret",
		TokenTTLHours: 1,
		UploadDir:     t.TempDir(),
		AuthRateLimit: 1000,
		AuthRateBurst: 1000,
	}

	db, err := database.OpenInMemory()
	require.NoError(t, err)
	database.DB = db

	r, err := NewRouter()
	require.NoError(t, err)
	return r
}

func doJSON(t *testing.T, r http.Handler, method, path, token string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var out map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return w, out
}

func register(t *testing.T, r http.Handler, nick string) testUser {
	t.Helper()
	w, body := doJSON(t, r, http.MethodPost, "/api/user/registro", "", gin.H{
		"name":     "Test",
		"surname":  "User",
		"nick":     nick,
		"email":    nick + "@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	user := body["user"].(map[string]interface{})
	assert.NotContains(t, user, "password")

	w, body = doJSON(t, r, http.MethodPost, "/api/user/login", "", gin.H{
		"email":    nick + "@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return testUser{ID: uint(user["id"].(float64)), Token: body["token"].(string)}
}

func TestPing(t *testing.T) {
	r := newTestRouter(t)
	w, body := doJSON(t, r, http.MethodGet, "/ping", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", body["message"])
}

func TestFollowScenario(t *testing.T) {
	r := newTestRouter(t)
	x := register(t, r, "xavier")
	y := register(t, r, "yolanda")

	w, body := doJSON(t, r, http.MethodPost, "/api/follow/save", x.Token, gin.H{"followed": y.ID})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	stored := body["followStored"].(map[string]interface{})
	assert.Equal(t, float64(x.ID), stored["user_id"])
	assert.Equal(t, float64(y.ID), stored["followed_id"])

	w, body = doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/user/profile/%d", y.ID), x.Token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, map[string]interface{}{"following": true, "follower": false}, body["followInfo"])
	counters := body["counters"].(map[string]interface{})
	assert.Equal(t, float64(1), counters["followed"])
	assert.Equal(t, float64(0), counters["following"])
	assert.NotContains(t, body["user"], "email")

	// The same profile seen from the other side.
	w, body = doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/user/profile/%d", x.ID), y.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]interface{}{"following": false, "follower": true}, body["followInfo"])

	// Anonymous viewers get no relationship.
	w, body = doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/user/profile/%d", y.ID), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]interface{}{"following": false, "follower": false}, body["followInfo"])

	w, body = doJSON(t, r, http.MethodPost, "/api/follow/save", x.Token, gin.H{"followed": y.ID})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "warning", body["status"])

	w, _ = doJSON(t, r, http.MethodPost, "/api/follow/save", x.Token, gin.H{"followed": x.ID})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = doJSON(t, r, http.MethodPost, "/api/follow/save", x.Token, gin.H{"followed": 9999})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = doJSON(t, r, http.MethodDelete, fmt.Sprintf("/api/follow/unfollow/%d", y.ID), x.Token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = doJSON(t, r, http.MethodDelete, fmt.Sprintf("/api/follow/unfollow/%d", y.ID), x.Token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, body = doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/user/counters/%d", y.ID), x.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(0), body["followed"])
}

func TestFollowRequiresAuth(t *testing.T) {
	r := newTestRouter(t)
	y := register(t, r, "yolanda")

	w, body := doJSON(t, r, http.MethodPost, "/api/follow/save", "", gin.H{"followed": y.ID})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "error", body["status"])

	w, _ = doJSON(t, r, http.MethodPost, "/api/follow/save", "garbage", gin.H{"followed": y.ID})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestDeletedAccountTokenIsRejected(t *testing.T) {
	r := newTestRouter(t)
	x := register(t, r, "xavier")
	y := register(t, r, "yolanda")

	require.NoError(t, database.DB.Delete(&models.User{}, x.ID).Error)

	w, _ := doJSON(t, r, http.MethodPost, "/api/follow/save", x.Token, gin.H{"followed": y.ID})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var edges int64
	require.NoError(t, database.DB.Model(&models.Follow{}).Count(&edges).Error)
	assert.Zero(t, edges)
}

func TestRejectsUnknownFields(t *testing.T) {
	r := newTestRouter(t)
	x := register(t, r, "xavier")
	y := register(t, r, "yolanda")

	w, _ := doJSON(t, r, http.MethodPost, "/api/follow/save", x.Token, gin.H{"followed": y.ID, "user": 1})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = doJSON(t, r, http.MethodPost, "/api/user/registro", "", gin.H{
		"name": "Eve", "surname": "Smith", "nick": "eve", "email": "eve@example.com",
		"password": "password123", "role": "role_admin",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = doJSON(t, r, http.MethodPost, "/api/follow/save", x.Token, `{"followed": "two"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegistrationRules(t *testing.T) {
	r := newTestRouter(t)
	register(t, r, "ana")

	w, body := doJSON(t, r, http.MethodPost, "/api/user/registro", "", gin.H{
		"name": "Ana", "surname": "Other", "nick": "ANA", "email": "other@example.com", "password": "password123",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "warning", body["status"])

	w, _ = doJSON(t, r, http.MethodPost, "/api/user/registro", "", gin.H{
		"name": "B", "surname": "Other", "nick": "bee", "email": "bee@example.com", "password": "password123",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code, "single letter name")

	w, _ = doJSON(t, r, http.MethodPost, "/api/user/registro", "", gin.H{
		"name": "Bee", "surname": "Other", "nick": "bee", "email": "bee@example.com", "password": "short",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code, "short password")

	w, body = doJSON(t, r, http.MethodPost, "/api/user/login", "", gin.H{"email": "ana@example.com", "password": "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid credentials", body["message"])
}

func TestFollowListing(t *testing.T) {
	r := newTestRouter(t)
	me := register(t, r, "me")
	var others []testUser
	for i := 0; i < 6; i++ {
		others = append(others, register(t, r, fmt.Sprintf("user%d", i)))
	}
	for _, o := range others {
		w, _ := doJSON(t, r, http.MethodPost, "/api/follow/save", me.Token, gin.H{"followed": o.ID})
		require.Equal(t, http.StatusOK, w.Code)
	}
	// An edge between two other users must not count towards my totals.
	w, _ := doJSON(t, r, http.MethodPost, "/api/follow/save", others[0].Token, gin.H{"followed": others[1].ID})
	require.Equal(t, http.StatusOK, w.Code)

	w, body := doJSON(t, r, http.MethodGet, "/api/follow/following", me.Token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, float64(6), body["total"])
	assert.Equal(t, float64(2), body["pages"])
	assert.Len(t, body["result"], 5)
	info := body["user_follow_info"].(map[string]interface{})
	assert.Len(t, info["following"], 6)

	w, body = doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/follow/following/%d/2", me.ID), me.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body["result"], 1)

	w, body = doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/follow/following/%d/3", me.ID), me.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, body["result"])

	w, body = doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/follow/following/%d/2305843009213693953", me.ID), me.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, body["result"])
	assert.Equal(t, float64(6), body["total"])

	// Non-numeric pages fall back to page 1.
	w, body = doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/follow/following/%d/abc", me.ID), me.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), body["page"])
	assert.Len(t, body["result"], 5)

	// Followers of user1, seen by user0: the follow sets belong to the viewer.
	w, body = doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/follow/followers/%d", others[1].ID), others[0].Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(2), body["total"])
	info = body["user_follow_info"].(map[string]interface{})
	assert.Equal(t, []interface{}{float64(others[1].ID)}, info["following"])
	assert.Equal(t, []interface{}{float64(me.ID)}, info["followers"])

	w, _ = doJSON(t, r, http.MethodGet, "/api/follow/followers/9999", me.Token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUserListAnnotations(t *testing.T) {
	r := newTestRouter(t)
	me := register(t, r, "me")
	a := register(t, r, "alpha")
	b := register(t, r, "bravo")

	w, _ := doJSON(t, r, http.MethodPost, "/api/follow/save", me.Token, gin.H{"followed": a.ID})
	require.Equal(t, http.StatusOK, w.Code)
	w, _ = doJSON(t, r, http.MethodPost, "/api/follow/save", b.Token, gin.H{"followed": me.ID})
	require.Equal(t, http.StatusOK, w.Code)

	w, body := doJSON(t, r, http.MethodGet, "/api/user/list", me.Token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, float64(3), body["total"])

	rows := map[float64]map[string]interface{}{}
	for _, raw := range body["users"].([]interface{}) {
		row := raw.(map[string]interface{})
		rows[row["id"].(float64)] = row
	}
	assert.Equal(t, true, rows[float64(a.ID)]["following"])
	assert.Equal(t, false, rows[float64(a.ID)]["follower"])
	assert.Equal(t, false, rows[float64(b.ID)]["following"])
	assert.Equal(t, true, rows[float64(b.ID)]["follower"])
}

func TestPublicationsAndFeed(t *testing.T) {
	r := newTestRouter(t)
	x := register(t, r, "xavier")
	y := register(t, r, "yolanda")

	w, _ := doJSON(t, r, http.MethodPost, "/api/follow/save", x.Token, gin.H{"followed": y.ID})
	require.Equal(t, http.StatusOK, w.Code)

	stream := make(hub.Client, 4)
	hub.GlobalHub.Subscribe(x.ID, stream)
	defer hub.GlobalHub.Unsubscribe(x.ID, stream)

	w, body := doJSON(t, r, http.MethodPost, "/api/publication/save", y.Token, gin.H{"text": "hello"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	pubID := body["publicationStored"].(map[string]interface{})["id"].(float64)

	select {
	case msg := <-stream:
		var event hub.Event
		require.NoError(t, json.Unmarshal(msg, &event))
		assert.Equal(t, hub.EventPublication, event.Type)
		assert.Equal(t, y.ID, event.ActorID)
	case <-time.After(time.Second):
		t.Fatal("follower was not notified")
	}

	w, body = doJSON(t, r, http.MethodGet, "/api/publication/feed", x.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), body["total"])

	w, body = doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/publication/user/%d", y.ID), x.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body["publications"], 1)

	w, _ = doJSON(t, r, http.MethodDelete, fmt.Sprintf("/api/publication/remove/%d", int(pubID)), x.Token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = doJSON(t, r, http.MethodDelete, fmt.Sprintf("/api/publication/remove/%d", int(pubID)), y.Token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/publication/detail/%d", int(pubID)), y.Token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = doJSON(t, r, http.MethodPost, "/api/publication/save", y.Token, gin.H{"text": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateAndAvatar(t *testing.T) {
	r := newTestRouter(t)
	ana := register(t, r, "ana")
	register(t, r, "bob")

	w, body := doJSON(t, r, http.MethodPut, "/api/user/update", ana.Token, gin.H{"bio": "Hola", "nick": "ana"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Hola", body["user"].(map[string]interface{})["bio"])

	w, body = doJSON(t, r, http.MethodPut, "/api/user/update", ana.Token, gin.H{"nick": "bob"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "warning", body["status"])

	upload := func(filename string) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		part, err := mw.CreateFormFile("file0", filename)
		require.NoError(t, err)
		_, err = part.Write([]byte("\x89PNG fake image"))
		require.NoError(t, err)
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/user/upload", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		req.Header.Set("Authorization", "Bearer "+ana.Token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusBadRequest, upload("notes.txt").Code)

	w = upload("me.png")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var avatar struct {
		Image string `json:"image"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &avatar))
	assert.Regexp(t, `^[0-9a-f-]{36}\.png$`, avatar.Image)

	w, _ = doJSON(t, r, http.MethodGet, "/api/user/avatar/"+avatar.Image, "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "\x89PNG fake image", w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Security-Policy"), "sandbox")
	assert.Empty(t, w.Header().Get("Content-Disposition"))

	w = upload("evil.svg")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &avatar))
	w, _ = doJSON(t, r, http.MethodGet, "/api/user/avatar/"+avatar.Image, "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
	assert.Contains(t, w.Header().Get("Content-Security-Policy"), "default-src 'none'")
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))

	w, _ = doJSON(t, r, http.MethodGet, "/api/user/avatar/missing.png", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestNotificationStream(t *testing.T) {
	r := newTestRouter(t)
	x := register(t, r, "xavier")
	y := register(t, r, "yolanda")

	w, _ := doJSON(t, r, http.MethodGet, "/api/notifications/stream", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// c.Stream needs a real connection, a recorder cannot be closed by the client.
	srv := httptest.NewServer(r)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/notifications/stream", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+y.Token)

	responses := make(chan *http.Response, 1)
	errs := make(chan error, 1)
	go func() {
		// Headers only arrive with the first event.
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			errs <- err
			return
		}
		responses <- resp
	}()

	require.Eventually(t, func() bool {
		return hub.GlobalHub.Subscribers(y.ID) == 1
	}, 2*time.Second, 10*time.Millisecond)

	w, _ = doJSON(t, r, http.MethodPost, "/api/follow/save", x.Token, gin.H{"followed": y.ID})
	require.Equal(t, http.StatusOK, w.Code)

	var resp *http.Response
	select {
	case resp = <-responses:
	case err := <-errs:
		t.Fatalf("stream request failed: %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("stream did not deliver the follow event")
	}
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/event-stream")

	reader := bufio.NewReader(resp.Body)
	var frame []string
	for {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimRight(line, "\n")
		if line == "" {
			break
		}
		frame = append(frame, line)
	}
	require.Len(t, frame, 2, "frame: %v", frame)
	assert.Equal(t, "event:message", frame[0])
	require.True(t, strings.HasPrefix(frame[1], "data:"), frame[1])

	var event hub.Event
	require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(frame[1], "data:")), &event))
	assert.Equal(t, hub.EventFollow, event.Type)
	assert.Equal(t, x.ID, event.ActorID)
	assert.Contains(t, frame[1], `"type":"follow"`)

	cancel()
	assert.Eventually(t, func() bool {
		return hub.GlobalHub.Subscribers(y.ID) == 0
	}, 2*time.Second, 10*time.Millisecond)
}
