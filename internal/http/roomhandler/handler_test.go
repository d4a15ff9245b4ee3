package roomhandler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"

	"chatroomgo/internal/registry"
	"chatroomgo/internal/services/room"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) (*gin.Engine, *registry.Registry) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	reg := registry.New()
	svc := room.NewRoomService(reg, 4, nil)

	engine := gin.New()
	New(svc).Register(engine)
	return engine, reg
}

func doJSON(t *testing.T, engine *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var buf *bytes.Buffer
	if body != "" {
		buf = bytes.NewBufferString(body)
	} else {
		buf = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, buf)
	req.Header.Set("Content-Type", "application/json")

	resp := httptest.NewRecorder()
	engine.ServeHTTP(resp, req)
	return resp
}

func TestCreateRoom(t *testing.T) {
	engine, reg := newTestRouter(t)

	resp := doJSON(t, engine, http.MethodPost, "/rooms", `{"name":"alice","create":true}`)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var sess room.Session
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &sess))
	require.Equal(t, "alice", sess.DisplayName)
	require.Regexp(t, regexp.MustCompile(`^[A-Z]{4}$`), sess.RoomCode)
	require.True(t, reg.Exists(sess.RoomCode))
}

func TestJoinRoom(t *testing.T) {
	engine, reg := newTestRouter(t)
	reg.Create("ABCD")

	resp := doJSON(t, engine, http.MethodPost, "/rooms", `{"name":"bob","code":"ABCD"}`)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var sess room.Session
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &sess))
	require.Equal(t, "ABCD", sess.RoomCode)
}

func TestBindValidationErrors(t *testing.T) {
	engine, _ := newTestRouter(t)

	cases := []struct {
		name   string
		body   string
		status int
	}{
		{"missing name", `{"code":"ABCD"}`, http.StatusBadRequest},
		{"missing code", `{"name":"alice"}`, http.StatusBadRequest},
		{"room not found", `{"name":"alice","code":"NOPE"}`, http.StatusNotFound},
		{"malformed json", `{"name":`, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := doJSON(t, engine, http.MethodPost, "/rooms", tc.body)
			require.Equal(t, tc.status, resp.Code, resp.Body.String())

			var body ErrorResponse
			require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
			require.NotEmpty(t, body.Error)
		})
	}
}

func TestRoomInfo(t *testing.T) {
	engine, reg := newTestRouter(t)
	reg.Create("ABCD")
	reg.IncrementMembers("ABCD")

	resp := doJSON(t, engine, http.MethodGet, "/rooms/ABCD", "")
	require.Equal(t, http.StatusOK, resp.Code)

	var dto room.RoomDTO
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &dto))
	require.Equal(t, "ABCD", dto.Code)
	require.Equal(t, 1, dto.MemberCount)

	resp = doJSON(t, engine, http.MethodGet, "/rooms/NOPE", "")
	require.Equal(t, http.StatusNotFound, resp.Code)
}

func TestRoomHistory(t *testing.T) {
	engine, reg := newTestRouter(t)
	reg.Create("ABCD")
	reg.AppendMessage("ABCD", registry.Message{SenderName: "alice", Body: "hi"})
	reg.AppendMessage("ABCD", registry.Message{SenderName: "bob", Body: "hey"})

	resp := doJSON(t, engine, http.MethodGet, "/rooms/ABCD/history", "")
	require.Equal(t, http.StatusOK, resp.Code)

	var msgs []registry.Message
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &msgs))
	require.Equal(t, []registry.Message{
		{SenderName: "alice", Body: "hi"},
		{SenderName: "bob", Body: "hey"},
	}, msgs)

	// Stale codes are normal; the history of an absent room is just empty.
	resp = doJSON(t, engine, http.MethodGet, "/rooms/NOPE/history", "")
	require.Equal(t, http.StatusOK, resp.Code)
	require.JSONEq(t, `[]`, resp.Body.String())
}
