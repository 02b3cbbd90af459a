package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omnia-ai/omnia/libs/chat-engine/cmd/omnia-api/middleware"
	"github.com/omnia-ai/omnia/libs/chat-engine/internal/catalog"
	"github.com/omnia-ai/omnia/libs/chat-engine/internal/chat"
	"github.com/omnia-ai/omnia/libs/chat-engine/internal/dialog"
	"github.com/omnia-ai/omnia/libs/chat-engine/internal/observability"
)

type recordingChatter struct {
	message string
	history []dialog.Message
	scopeID string
	resp    *chat.Response
	err     error
}

func (c *recordingChatter) Chat(_ context.Context, message string, history []dialog.Message, scopeID string) (*chat.Response, error) {
	c.message, c.history, c.scopeID = message, history, scopeID
	if strings.TrimSpace(message) == "" {
		return nil, chat.ErrEmptyMessage
	}
	return c.resp, c.err
}

func okResponse() *chat.Response {
	return &chat.Response{
		Role:     dialog.RoleAssistant,
		Content:  "Bonjour !",
		Intent:   "simple_chat",
		Mode:     chat.ModeConversation,
		Products: []catalog.ScoredProduct{},
	}
}

func serve(h http.Handler, body string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestChatHandler_Request(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		header      map[string]string
		wantMessage string
		wantScope   string
		wantHistory int
	}{
		{
			name:        "userMessage with history",
			body:        `{"userMessage":"Bonjour","history":[{"role":"user","content":"salut"},{"role":"assistant","content":"Bonjour !"}]}`,
			wantMessage: "Bonjour",
			wantHistory: 2,
		},
		{
			name:        "message alias",
			body:        `{"message":"Salut"}`,
			wantMessage: "Salut",
		},
		{
			name:        "store scope",
			body:        `{"userMessage":"table","storeId":"store-a","sellerId":"seller-9"}`,
			wantMessage: "table",
			wantScope:   "store-a",
		},
		{
			name:        "seller scope",
			body:        `{"userMessage":"table","sellerId":" seller-9 "}`,
			wantMessage: "table",
			wantScope:   "seller-9",
		},
		{
			name:        "header scope",
			body:        `{"userMessage":"table"}`,
			header:      map[string]string{middleware.HeaderStoreID: "store-b"},
			wantMessage: "table",
			wantScope:   "store-b",
		},
		{
			name:        "body scope wins over header",
			body:        `{"userMessage":"table","storeId":"store-a"}`,
			header:      map[string]string{middleware.HeaderStoreID: "store-b"},
			wantMessage: "table",
			wantScope:   "store-a",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &recordingChatter{resp: okResponse()}
			h := middleware.Scope(http.HandlerFunc(NewChatHandler(observability.NopLogger(), c).Chat))

			rec := serve(h, tt.body, tt.header)

			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.Equal(t, tt.wantMessage, c.message)
			assert.Equal(t, tt.wantScope, c.scopeID)
			assert.Len(t, c.history, tt.wantHistory)

			body := decode(t, rec)
			assert.Equal(t, "simple_chat", body["intent"])
			assert.Equal(t, []interface{}{}, body["products"])
		})
	}
}

func TestChatHandler_BadRequest(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"invalid json", `{"userMessage":`, "invalid request body"},
		{"missing message", `{"history":[]}`, "userMessage is required"},
		{"blank message", `{"userMessage":"   "}`, "userMessage is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewChatHandler(observability.NopLogger(), &recordingChatter{resp: okResponse()})
			rec := serve(http.HandlerFunc(h.Chat), tt.body, nil)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			body := decode(t, rec)
			assert.Equal(t, tt.want, body["error"])
			assert.NotContains(t, body, "message")
		})
	}
}

func TestChatHandler_EngineError(t *testing.T) {
	h := NewChatHandler(observability.NopLogger(), &recordingChatter{err: errors.New("boom")})
	rec := serve(http.HandlerFunc(h.Chat), `{"userMessage":"Bonjour"}`, nil)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "chat failed", body["error"])
	assert.Equal(t, "boom", body["message"])
}
