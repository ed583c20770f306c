package hub

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aira-hq/hubclient/pkg/apiclient"
)

func newTestService(t *testing.T, h http.Handler) *Service {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	api, err := apiclient.New(apiclient.Config{
		BaseURL:              srv.URL,
		IsNative:             true,
		Timeout:              2 * time.Second,
		UnauthorizedStatuses: []int{http.StatusUnauthorized},
		DevMode:              func() bool { return false },
	})
	require.NoError(t, err)
	return NewService(api)
}

func respond(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}
}

func TestMe(t *testing.T) {
	svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/users/me", r.URL.Path)
		respond(200, `{"id":"u-1","email":"test@aira.in","name":"Test User","is_active":true,"plan":"pro"}`)(w, r)
	}))

	u, err := svc.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "u-1", u.ID)
	assert.Equal(t, "pro", u.Plan)
	assert.True(t, u.IsActive)
}

func TestMeRejectsInvalidShape(t *testing.T) {
	svc := newTestService(t, respond(200, `{"email":"test@aira.in"}`))

	_, err := svc.Me(context.Background())
	var verr *apiclient.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestListRules(t *testing.T) {
	svc := newTestService(t, respond(200, `[
		{"rule_id":"rule-1","raw_text":"Forward urgent emails","status":"active","w_id":["group-1"],"trigger_time":"Real-time","interval":0,"created_at":"2025-01-02T03:04:05Z"},
		{"rule_id":"rule-2","raw_text":"Summarize my calendar","status":"inactive","w_id":[],"trigger_time":"09:00","interval":1}
	]`))

	rules, err := svc.ListRules(context.Background())
	require.NoError(t, err)
	require.Len(t, rules, 2)
	assert.Equal(t, []string{"group-1"}, rules[0].ChatIDs)
	assert.Equal(t, RuleInactive, rules[1].Status)
	assert.Equal(t, 1, rules[1].Interval)
}

func TestListRulesRejectsUnknownStatus(t *testing.T) {
	svc := newTestService(t, respond(200, `[{"rule_id":"r","raw_text":"x","status":"paused"}]`))

	rules, err := svc.ListRules(context.Background())
	var verr *apiclient.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Nil(t, rules)
}

func TestRuleCRUD(t *testing.T) {
	type call struct {
		method string
		path   string
		body   map[string]any
	}
	var calls []call

	svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c := call{method: r.Method, path: r.URL.EscapedPath()}
		if r.ContentLength > 0 {
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&c.body))
		}
		calls = append(calls, c)
		if r.Method == http.MethodDelete {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		respond(200, `{"rule_id":"rule 1","raw_text":"Do it","status":"active","w_id":["g"]}`)(w, r)
	}))
	ctx := context.Background()

	created, err := svc.CreateRule(ctx, RuleInput{RawText: "  Do it ", ChatIDs: []string{"g"}})
	require.NoError(t, err)
	assert.Equal(t, "rule 1", created.ID)

	_, err = svc.GetRule(ctx, "rule 1")
	require.NoError(t, err)
	_, err = svc.UpdateRule(ctx, "rule 1", RuleInput{RawText: "Do it", Status: RuleInactive, TriggerTime: "09:00", Interval: 7})
	require.NoError(t, err)
	_, err = svc.SetRuleStatus(ctx, "rule 1", RuleInactive)
	require.NoError(t, err)
	require.NoError(t, svc.DeleteRule(ctx, "rule 1"))

	require.Len(t, calls, 5)
	assert.Equal(t, http.MethodPost, calls[0].method)
	assert.Equal(t, "/rules", calls[0].path)
	assert.Equal(t, "Do it", calls[0].body["raw_text"])
	assert.Equal(t, RuleActive, calls[0].body["status"])
	assert.NotContains(t, calls[0].body, "trigger_time")

	assert.Equal(t, http.MethodGet, calls[1].method)
	assert.Equal(t, "/rules/rule%201", calls[1].path)

	assert.Equal(t, http.MethodPut, calls[2].method)
	assert.Equal(t, "09:00", calls[2].body["trigger_time"])
	assert.EqualValues(t, 7, calls[2].body["interval"])

	assert.Equal(t, http.MethodPatch, calls[3].method)
	assert.Equal(t, map[string]any{"status": RuleInactive}, calls[3].body)

	assert.Equal(t, http.MethodDelete, calls[4].method)
}

func TestRuleInputValidation(t *testing.T) {
	svc := newTestService(t, respond(500, `{}`))
	ctx := context.Background()

	_, err := svc.CreateRule(ctx, RuleInput{RawText: "  "})
	require.Error(t, err)
	_, err = svc.CreateRule(ctx, RuleInput{RawText: "x", Status: "paused"})
	require.Error(t, err)
	_, err = svc.GetRule(ctx, "")
	require.Error(t, err)
	_, err = svc.SetRuleStatus(ctx, "r", "off")
	require.Error(t, err)

	// None of the above may reach the server.
	_, ok := apiclient.AsAPIError(err)
	assert.False(t, ok)
}

func TestDeleteRuleNotFoundIsAPIError(t *testing.T) {
	svc := newTestService(t, respond(404, `{"message":"Rule not found","code":"RULE_NOT_FOUND"}`))

	err := svc.DeleteRule(context.Background(), "missing")
	apiErr, ok := apiclient.AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, 404, apiErr.Status)
	assert.Equal(t, "Rule not found", apiErr.Message)
	assert.Equal(t, "RULE_NOT_FOUND", apiErr.Code)
}

func TestConnectors(t *testing.T) {
	svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/connectors":
			respond(200, `[
				{"id":"whatsapp","type":"whatsapp","name":"WhatsApp","connected":false,"last_synced":null},
				{"id":"email_scope","type":"email_scope","name":"Email","connected":true,"last_synced":"2025-01-02T03:04:05Z","config":{"email":"demo@aira.in"}}
			]`)(w, r)
		case "/connectors/connect/google_drive":
			respond(200, `{"url":"https://accounts.example.com/auth"}`)(w, r)
		default:
			http.NotFound(w, r)
		}
	}))
	ctx := context.Background()

	cs, err := svc.ListConnectors(ctx)
	require.NoError(t, err)
	require.Len(t, cs, 2)
	assert.Nil(t, cs[0].LastSynced)
	require.NotNil(t, cs[1].LastSynced)
	assert.Equal(t, "demo@aira.in", cs[1].Config["email"])

	u, err := svc.ConnectURL(ctx, "google_drive")
	require.NoError(t, err)
	assert.Equal(t, "https://accounts.example.com/auth", u)

	_, err = svc.ConnectURL(ctx, " ")
	require.Error(t, err)
}

func TestListGroups(t *testing.T) {
	svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/waha/groups", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("moderation_status"))
		respond(200, `{
			"groups":[{"w_id":"group-1","chat_name":"Engineering Team","num_active_rules":1,"num_inactive_rules":0}],
			"chats":[{"w_id":"group-1","chat_name":"dup"},{"w_id":"chat-9","chat_name":"Alice"}]
		}`)(w, r)
	}))

	g, err := svc.ListGroups(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, 1, g.Groups[0].NumActiveRules)

	targets := g.Targets()
	require.Len(t, targets, 2)
	assert.Equal(t, "Engineering Team", targets[0].ChatName)
	assert.Equal(t, "chat-9", targets[1].ChatID)
}

func TestLinkWhatsAppSendsMultipart(t *testing.T) {
	svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.True(t, strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data"))
		assert.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "+911234567890", r.FormValue("phone_number"))

		if f, _, err := r.FormFile("avatar"); assert.NoError(t, err) {
			data, _ := io.ReadAll(f)
			assert.Equal(t, "png-bytes", string(data))
		}

		respond(200, `{"code":"ABCD1234"}`)(w, r)
	}))

	code, err := svc.LinkWhatsApp(context.Background(), " +911234567890 ", strings.NewReader("png-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "ABCD1234", code.Code)

	_, err = svc.LinkWhatsApp(context.Background(), "", nil)
	require.Error(t, err)
}

func TestSharedRequiresInitialize(t *testing.T) {
	if _, err := apiclient.Instance(); err == nil {
		t.Skip("shared client already initialized")
	}
	_, err := Shared()
	require.ErrorIs(t, err, apiclient.ErrNotInitialized)
}
