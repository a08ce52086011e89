package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/agency-funnel/internal/entity"
	"github.com/xavierca1/agency-funnel/internal/infra/memstore"
	"github.com/xavierca1/agency-funnel/internal/usecase"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func newTestRouter(t *testing.T, rl *RateLimiter) http.Handler {
	t.Helper()
	return newTestRouterWithProxy(t, rl, false)
}

func newTestRouterWithProxy(t *testing.T, rl *RateLimiter, trustProxy bool) http.Handler {
	t.Helper()
	store := memstore.New()
	engine := usecase.NewFunnelEngine(store, nil, nil)
	query := usecase.NewFunnelQueryUseCase(store.Stores())
	createLead := usecase.NewCreateLeadUseCase(store.Stores().Leads, nil)
	if rl == nil {
		rl = NewRateLimiter(1000, time.Minute)
	}
	return NewRouter(RouterConfig{
		Leads:      NewLeadHandler(createLead, engine, query, rl),
		MQLs:       NewMQLHandler(engine, query),
		SQLs:       NewSQLHandler(engine, query),
		Health:     NewHealthHandler(nil, nil, "memory"),
		TrustProxy: trustProxy,
	})
}

func do(t *testing.T, h http.Handler, method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 && rec.Header().Get("Content-Type") == "application/json" {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func decodeData[T any](t *testing.T, env envelope) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out
}

func validLead() map[string]string {
	return map[string]string{
		"name":    "Ana Souza",
		"company": "Acme",
		"website": "acme.io",
		"mobile":  "+55 11 99999-0000",
		"service": "Branding",
		"email":   "ana@acme.io",
	}
}

func createLead(t *testing.T, h http.Handler) entity.Lead {
	t.Helper()
	rec, env := do(t, h, http.MethodPost, "/leads", validLead())
	require.Equal(t, http.StatusCreated, rec.Code)
	require.True(t, env.Success)
	return decodeData[entity.Lead](t, env)
}

func TestFunnelScenario(t *testing.T) {
	h := newTestRouter(t, nil)

	lead := createLead(t, h)
	assert.Equal(t, entity.LeadNoAnswered, lead.Status)
	assert.NotEmpty(t, lead.ID)

	// answering the lead opens an MQL
	rec, env := do(t, h, http.MethodPut, "/leads/"+lead.ID, map[string]string{"status": "Answered"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, entity.LeadAnswered, decodeData[entity.Lead](t, env).Status)

	_, env = do(t, h, http.MethodGet, "/mqls", nil)
	mqls := decodeData[[]entity.MQL](t, env)
	require.Len(t, mqls, 1)
	assert.Equal(t, lead.ID, mqls[0].ContactRef)
	assert.Equal(t, entity.MQLNoShowed, mqls[0].Status)
	require.NotNil(t, mqls[0].Contact)
	assert.Equal(t, "Ana Souza", mqls[0].Contact.Name)

	// answering again does not duplicate
	rec, _ = do(t, h, http.MethodPut, "/leads/"+lead.ID, map[string]string{"status": "Answered"})
	require.Equal(t, http.StatusOK, rec.Code)
	_, env = do(t, h, http.MethodGet, "/mqls", nil)
	assert.Len(t, decodeData[[]entity.MQL](t, env), 1)

	// showing up opens an SQL
	rec, _ = do(t, h, http.MethodPut, "/mqls/"+mqls[0].ID, map[string]string{"status": "Showed"})
	require.Equal(t, http.StatusOK, rec.Code)

	_, env = do(t, h, http.MethodGet, "/sqls", nil)
	sqls := decodeData[[]entity.SQL](t, env)
	require.Len(t, sqls, 1)
	assert.Equal(t, mqls[0].ID, sqls[0].ContactRef)
	assert.Equal(t, entity.SQLPending, sqls[0].Status)
	require.NotNil(t, sqls[0].Contact)
	require.NotNil(t, sqls[0].Contact.Contact)
	assert.Equal(t, lead.ID, sqls[0].Contact.Contact.ID)

	rec, env = do(t, h, http.MethodPut, "/sqls/"+sqls[0].ID, map[string]string{"status": "Won"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, entity.SQLWon, decodeData[entity.SQL](t, env).Status)

	// un-answering tears down both stages
	rec, _ = do(t, h, http.MethodPut, "/leads/"+lead.ID, map[string]string{"status": "No Answered"})
	require.Equal(t, http.StatusOK, rec.Code)

	_, env = do(t, h, http.MethodGet, "/mqls", nil)
	assert.Empty(t, decodeData[[]entity.MQL](t, env))
	_, env = do(t, h, http.MethodGet, "/sqls", nil)
	assert.Empty(t, decodeData[[]entity.SQL](t, env))

	rec, env = do(t, h, http.MethodGet, "/leads/"+lead.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, entity.LeadNoAnswered, decodeData[entity.Lead](t, env).Status)
}

func TestMQLNoShowedRemovesSQL(t *testing.T) {
	h := newTestRouter(t, nil)
	lead := createLead(t, h)

	do(t, h, http.MethodPut, "/leads/"+lead.ID, map[string]string{"status": "Answered"})
	_, env := do(t, h, http.MethodGet, "/mqls", nil)
	mql := decodeData[[]entity.MQL](t, env)[0]

	do(t, h, http.MethodPut, "/mqls/"+mql.ID, map[string]string{"status": "Showed"})
	rec, env := do(t, h, http.MethodPut, "/mqls/"+mql.ID, map[string]string{"status": "No Showed"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, entity.MQLNoShowed, decodeData[entity.MQL](t, env).Status)

	_, env = do(t, h, http.MethodGet, "/sqls", nil)
	assert.Empty(t, decodeData[[]entity.SQL](t, env))
	_, env = do(t, h, http.MethodGet, "/mqls", nil)
	assert.Len(t, decodeData[[]entity.MQL](t, env), 1)
}

func TestCaptureLeadValidation(t *testing.T) {
	h := newTestRouter(t, nil)

	body := validLead()
	body["email"] = "not-an-email"
	rec, env := do(t, h, http.MethodPost, "/leads", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, env.Success)
	assert.Contains(t, env.Error, "email")

	body = validLead()
	body["service"] = "Catering"
	rec, env = do(t, h, http.MethodPost, "/leads", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, env.Error, "service")

	rec, env = do(t, h, http.MethodPost, "/leads", "{broken")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid JSON", env.Error)

	_, env = do(t, h, http.MethodGet, "/leads", nil)
	assert.Empty(t, decodeData[[]entity.Lead](t, env))
}

func TestStatusUpdateErrors(t *testing.T) {
	h := newTestRouter(t, nil)
	lead := createLead(t, h)

	rec, env := do(t, h, http.MethodPut, "/leads/"+lead.ID, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "status is required", env.Error)

	rec, _ = do(t, h, http.MethodPut, "/leads/"+lead.ID, map[string]string{"status": "Maybe"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, env = do(t, h, http.MethodPut, "/leads/missing", map[string]string{"status": "Answered"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, env.Success)

	rec, _ = do(t, h, http.MethodPut, "/mqls/missing", map[string]string{"status": "Showed"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = do(t, h, http.MethodPut, "/sqls/missing", map[string]string{"status": "Won"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = do(t, h, http.MethodGet, "/leads/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// a failed transition leaves no MQL behind
	_, env = do(t, h, http.MethodGet, "/mqls", nil)
	assert.Empty(t, decodeData[[]entity.MQL](t, env))
}

func TestListLeadsNewestFirst(t *testing.T) {
	h := newTestRouter(t, nil)
	first := createLead(t, h)
	time.Sleep(2 * time.Millisecond)
	second := createLead(t, h)

	rec, env := do(t, h, http.MethodGet, "/leads", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	leads := decodeData[[]entity.Lead](t, env)
	require.Len(t, leads, 2)
	assert.Equal(t, second.ID, leads[0].ID)
	assert.Equal(t, first.ID, leads[1].ID)
}

func TestOptionsReturnsEmptyOK(t *testing.T) {
	h := newTestRouter(t, nil)

	for _, path := range []string{"/leads", "/leads/abc", "/mqls/abc", "/anything"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.Zero(t, rec.Body.Len(), path)
	}
}

func TestCORS(t *testing.T) {
	h := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/leads", nil)
	req.Header.Set("Origin", "https://agency.example")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/leads/abc", nil)
	req.Header.Set("Origin", "https://agency.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPut)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCaptureLeadRateLimited(t *testing.T) {
	h := newTestRouter(t, NewRateLimiter(2, time.Hour))

	for i := 0; i < 2; i++ {
		rec, _ := do(t, h, http.MethodPost, "/leads", validLead())
		require.Equal(t, http.StatusCreated, rec.Code)
	}
	rec, env := do(t, h, http.MethodPost, "/leads", validLead())
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.False(t, env.Success)
}

func postLeadFrom(t *testing.T, h http.Handler, forwardedFor string) int {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(validLead()))
	req := httptest.NewRequest(http.MethodPost, "/leads", &buf)
	req.RemoteAddr = "192.0.2.50:40000"
	req.Header.Set("X-Forwarded-For", forwardedFor)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec.Code
}

func TestRateLimitIgnoresSpoofedForwardedFor(t *testing.T) {
	h := newTestRouter(t, NewRateLimiter(2, time.Hour))

	assert.Equal(t, http.StatusCreated, postLeadFrom(t, h, "203.0.113.1"))
	assert.Equal(t, http.StatusCreated, postLeadFrom(t, h, "203.0.113.2"))
	assert.Equal(t, http.StatusTooManyRequests, postLeadFrom(t, h, "203.0.113.3"))
}

func TestRateLimitBehindTrustedProxy(t *testing.T) {
	h := newTestRouterWithProxy(t, NewRateLimiter(1, time.Hour), true)

	assert.Equal(t, http.StatusCreated, postLeadFrom(t, h, "203.0.113.1"))
	assert.Equal(t, http.StatusTooManyRequests, postLeadFrom(t, h, "203.0.113.1"))
	assert.Equal(t, http.StatusCreated, postLeadFrom(t, h, "203.0.113.2"))
}

func TestHealthInMemory(t *testing.T) {
	h := newTestRouter(t, nil)

	rec, env := do(t, h, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)

	resp := decodeData[HealthResponse](t, env)
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "in-memory", resp.Dependencies["database"])
	assert.Equal(t, "not configured", resp.Dependencies["rabbitmq"])
}

func TestMetricsEndpoint(t *testing.T) {
	h := newTestRouter(t, nil)
	createLead(t, h)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")
}

func TestCaptureLeadMinimalPayload(t *testing.T) {
	h := newTestRouter(t, nil)

	rec, env := do(t, h, http.MethodPost, "/leads", map[string]string{
		"name": "A", "company": "B", "website": "w", "mobile": "1",
		"service": "Website Solutions", "email": "a@b.com",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	lead := decodeData[entity.Lead](t, env)
	assert.Equal(t, entity.LeadNoAnswered, lead.Status)
	assert.Equal(t, entity.ServiceWebsiteSolutions, lead.Service)
}
