package routes

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ArowuTest/sequence-draw-backend/internal/config"
	"github.com/ArowuTest/sequence-draw-backend/internal/engine"
	"github.com/ArowuTest/sequence-draw-backend/internal/handlers"
	"github.com/ArowuTest/sequence-draw-backend/internal/metrics"
	"github.com/ArowuTest/sequence-draw-backend/internal/models"
	"github.com/ArowuTest/sequence-draw-backend/internal/repositories/memory"
	"github.com/ArowuTest/sequence-draw-backend/internal/services"
	"github.com/ArowuTest/sequence-draw-backend/pkg/broadcast"
	"github.com/ArowuTest/sequence-draw-backend/pkg/jwt"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	router http.Handler
	engine *engine.Engine
}

func newTestServer(t *testing.T, healthCheck func(c *gin.Context) error) *testServer {
	t.Helper()

	cfg := &config.Config{
		Server: config.ServerConfig{AllowedHosts: []string{"*"}},
		Admin:  config.AdminConfig{Username: "admin", Password: "s3cret"},
	}
	e, err := engine.New(memory.NewMemoryStore(), engine.Settings{
		SequenceLength:       5,
		Alphabet:             "AB",
		DefaultCapacityLimit: 3,
		DefaultWinnerCount:   1,
	})
	require.NoError(t, err)
	require.NoError(t, e.Load(context.Background()))

	m := metrics.New()
	hub := broadcast.NewHub(broadcast.WithClientCountHook(m.SetWebsocketClients))
	t.Cleanup(hub.Close)

	tokens := jwt.NewTokenService("test-secret", time.Hour)
	authService, err := services.NewAuthService(cfg.Admin, tokens)
	require.NoError(t, err)
	drawService := services.NewDrawService(e, hub, m)

	router := SetupRouter(cfg, HandlerDependencies{
		ParticipantHandler: handlers.NewParticipantHandler(drawService),
		DrawHandler:        handlers.NewDrawHandler(drawService),
		ConfigHandler:      handlers.NewConfigHandler(drawService),
		AuthHandler:        handlers.NewAuthHandler(authService),
		WebSocketHandler:   handlers.NewWebSocketHandler(hub, drawService),
		TokenService:       tokens,
		Metrics:            m,
		HealthCheck:        healthCheck,
	})
	return &testServer{router: router, engine: e}
}

func (s *testServer) do(t *testing.T, method, path, token, contentType, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) doJSON(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	return s.do(t, method, path, token, "application/json", body)
}

func (s *testServer) login(t *testing.T) string {
	t.Helper()
	rec := s.doJSON(t, http.MethodPost, "/api/v1/auth/login", "", `{"username":"admin","password":"s3cret"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp models.LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	assert.Equal(t, 3600, resp.ExpiresIn)
	return resp.Token
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) (string, string) {
	t.Helper()
	var body struct {
		Error string `json:"error"`
		Code  string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body.Code, body.Error
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, nil)
	rec := s.do(t, http.MethodGet, "/api/v1/health", "", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	down := newTestServer(t, func(c *gin.Context) error { return errors.New("no primary") })
	rec = down.do(t, http.MethodGet, "/api/v1/health", "", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "no primary")
}

func TestPublicRegistration(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.doJSON(t, http.MethodPost, "/api/v1/participants", "", `{"displayName":"Ada"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var p models.Participant
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.Equal(t, "Ada", p.DisplayName)
	assert.Len(t, p.Token, 5)
	assert.Equal(t, models.PrizeStatusNone, p.PrizeStatus)

	rec = s.doJSON(t, http.MethodPost, "/api/v1/participants", "", `{"displayName":"Ada"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	code, _ := decodeError(t, rec)
	assert.Equal(t, "DUPLICATE_NAME", code)

	rec = s.doJSON(t, http.MethodPost, "/api/v1/participants", "", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	code, _ = decodeError(t, rec)
	assert.Equal(t, "INVALID_VALUE", code)

	rec = s.doJSON(t, http.MethodPost, "/api/v1/participants", "", `{"displayName":"   "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	for _, name := range []string{"Bo", "Cy"} {
		rec = s.doJSON(t, http.MethodPost, "/api/v1/participants", "", `{"displayName":"`+name+`"}`)
		require.Equal(t, http.StatusCreated, rec.Code)
	}
	rec = s.doJSON(t, http.MethodPost, "/api/v1/participants", "", `{"displayName":"Dee"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	code, _ = decodeError(t, rec)
	assert.Equal(t, "CAPACITY_EXCEEDED", code)

	rec = s.do(t, http.MethodGet, "/api/v1/participants", "", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var all []models.Participant
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &all))
	assert.Len(t, all, 3)
}

func TestAdminRoutesRequireToken(t *testing.T) {
	s := newTestServer(t, nil)

	paths := []struct{ method, path string }{
		{http.MethodPost, "/api/v1/admin/participants"},
		{http.MethodPost, "/api/v1/admin/participants/bulk"},
		{http.MethodPost, "/api/v1/admin/participants/import"},
		{http.MethodPost, "/api/v1/admin/draws/primary"},
		{http.MethodPost, "/api/v1/admin/draws/supplementary"},
		{http.MethodPost, "/api/v1/admin/draws/filtered"},
		{http.MethodPut, "/api/v1/admin/config"},
		{http.MethodPut, "/api/v1/admin/config/target"},
		{http.MethodPost, "/api/v1/admin/reset"},
	}
	for _, p := range paths {
		t.Run(p.method+" "+p.path, func(t *testing.T) {
			rec := s.doJSON(t, p.method, p.path, "", `{}`)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			code, _ := decodeError(t, rec)
			assert.Equal(t, "UNAUTHORIZED", code)
		})
	}

	rec := s.doJSON(t, http.MethodPost, "/api/v1/admin/reset", "garbage", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogin(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.doJSON(t, http.MethodPost, "/api/v1/auth/login", "", `{"username":"admin","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	code, _ := decodeError(t, rec)
	assert.Equal(t, "INVALID_CREDENTIALS", code)

	rec = s.doJSON(t, http.MethodPost, "/api/v1/auth/login", "", `{"username":"admin"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.NotEmpty(t, s.login(t))
}

func TestDrawFlow(t *testing.T) {
	s := newTestServer(t, nil)
	token := s.login(t)

	rec := s.doJSON(t, http.MethodPost, "/api/v1/admin/draws/primary", token, "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	code, _ := decodeError(t, rec)
	assert.Equal(t, "NO_ELIGIBLE_PARTICIPANTS", code)

	rec = s.doJSON(t, http.MethodPost, "/api/v1/admin/participants", token, `{"displayName":"Ada","token":"AAAAA"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rec = s.doJSON(t, http.MethodPost, "/api/v1/admin/participants", token, `{"displayName":"Bo","token":"ABAB"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	code, _ = decodeError(t, rec)
	assert.Equal(t, "INVALID_TOKEN", code)
	rec = s.doJSON(t, http.MethodPost, "/api/v1/admin/participants", token, `{"displayName":"Bo","token":"BBBBB"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = s.doJSON(t, http.MethodPut, "/api/v1/admin/config/target", token, `{"targetValue":"AAAAA"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.doJSON(t, http.MethodPost, "/api/v1/admin/draws/primary", token, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var result models.DrawResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.Len(t, result.Winners, 1)
	assert.Equal(t, "Ada", result.Winners[0].DisplayName)
	assert.Equal(t, 5, result.Winners[0].Score)
	assert.Equal(t, 2, result.EligiblePoolSize)
	assert.NotEqual(t, "AAAAA", result.Config.TargetValue)

	// Only Bo is left; a filtered draw with no body excludes nobody.
	rec = s.do(t, http.MethodPost, "/api/v1/admin/draws/filtered", token, "", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.Len(t, result.Winners, 1)
	assert.Equal(t, "Bo", result.Winners[0].DisplayName)
	assert.Equal(t, models.PrizeStatusSupplementaryWinner, result.Winners[0].PrizeStatus)

	rec = s.doJSON(t, http.MethodPost, "/api/v1/admin/draws/supplementary", token, "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/history", "", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var history []models.HistoryEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &history))
	assert.Len(t, history, 2)

	rec = s.do(t, http.MethodGet, "/api/v1/participants/eligible", "", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = s.doJSON(t, http.MethodPost, "/api/v1/admin/reset", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var snap models.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Empty(t, snap.Participants)
	assert.Empty(t, snap.History)
	assert.Equal(t, 3, snap.Config.CapacityLimit)
}

func TestFilteredDrawExclusions(t *testing.T) {
	s := newTestServer(t, nil)
	token := s.login(t)

	ids := make(map[string]string)
	for _, name := range []string{"Ada", "Bo"} {
		rec := s.doJSON(t, http.MethodPost, "/api/v1/participants", "", `{"displayName":"`+name+`"}`)
		require.Equal(t, http.StatusCreated, rec.Code)
		var p models.Participant
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
		ids[name] = p.ID
	}

	rec := s.do(t, http.MethodGet, "/api/v1/participants/eligible?exclude="+ids["Ada"], "", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var eligible []models.Participant
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &eligible))
	require.Len(t, eligible, 1)
	assert.Equal(t, "Bo", eligible[0].DisplayName)

	rec = s.doJSON(t, http.MethodPost, "/api/v1/admin/draws/filtered", token, `{"excludeIds":["`+ids["Ada"]+`"]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var result models.DrawResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.Len(t, result.Winners, 1)
	assert.Equal(t, ids["Bo"], result.Winners[0].ID)
	assert.Equal(t, 1, result.EligiblePoolSize)

	rec = s.doJSON(t, http.MethodPost, "/api/v1/admin/draws/filtered", token, `{"excludeIds":"nope"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateConfig(t *testing.T) {
	s := newTestServer(t, nil)
	token := s.login(t)

	rec := s.doJSON(t, http.MethodPut, "/api/v1/admin/config", token, `{"capacityLimit":2,"winnerCount":3}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	code, _ := decodeError(t, rec)
	assert.Equal(t, "WINNER_COUNT_EXCEEDS_CAPACITY", code)

	rec = s.doJSON(t, http.MethodPut, "/api/v1/admin/config", token, `{"capacityLimit":0,"winnerCount":0}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.doJSON(t, http.MethodPut, "/api/v1/admin/config", token, `{"capacityLimit":5}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.doJSON(t, http.MethodPut, "/api/v1/admin/config", token, `{"capacityLimit":5,"winnerCount":2}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodGet, "/api/v1/config", "", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var cfg models.DrawConfig
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cfg))
	assert.Equal(t, 5, cfg.CapacityLimit)
	assert.Equal(t, 2, cfg.WinnerCount)
	assert.Len(t, cfg.TargetValue, 5)

	rec = s.doJSON(t, http.MethodPut, "/api/v1/admin/config/target", token, `{"targetValue":"AB"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBulkAndCSVImport(t *testing.T) {
	s := newTestServer(t, nil)
	token := s.login(t)

	rec := s.doJSON(t, http.MethodPost, "/api/v1/admin/participants/bulk", token,
		`{"entries":[{"displayName":"Ada","token":"AAAAA"},{"displayName":"Ada","token":"BBBBB"},{"displayName":"Bo","token":"AB"}]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var bulk models.BulkResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &bulk))
	assert.Equal(t, 1, bulk.Added)
	require.Len(t, bulk.Skipped, 2)
	assert.Equal(t, "DUPLICATE_NAME", bulk.Skipped[0].Code)
	assert.Equal(t, "INVALID_TOKEN", bulk.Skipped[1].Code)

	csv := "Name,Token\nBo,BBBBB\nCy,ABABA\nDee,AAAAB\n"
	rec = s.do(t, http.MethodPost, "/api/v1/admin/participants/import", token, "text/csv", csv)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var imported services.ImportResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &imported))
	assert.Equal(t, 2, imported.Added)
	require.Len(t, imported.Skipped, 1)
	assert.Equal(t, "CAPACITY_EXCEEDED", imported.Skipped[0].Code)
	assert.Len(t, s.engine.Participants(), 3)

	rec = s.do(t, http.MethodPost, "/api/v1/admin/participants/import", token, "text/csv", "Token\nAAAAA\n")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	code, _ := decodeError(t, rec)
	assert.Equal(t, "INVALID_VALUE", code)
}

func TestSnapshotAndMetrics(t *testing.T) {
	s := newTestServer(t, nil)
	rec := s.doJSON(t, http.MethodPost, "/api/v1/participants", "", `{"displayName":"Ada"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/snapshot", "", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var snap models.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Len(t, snap.Participants, 1)
	assert.Nil(t, snap.LastDrawTime)
	assert.Equal(t, snap.Config.TargetValue, snap.TargetValue)

	rec = s.do(t, http.MethodGet, "/metrics", "", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "sequence_draw_participants_registered 1")
	assert.Contains(t, rec.Body.String(), `path="/api/v1/participants"`)
}

func TestDrawKindRoute(t *testing.T) {
	s := newTestServer(t, nil)
	token := s.login(t)

	rec := s.doJSON(t, http.MethodPost, "/api/v1/admin/draws/jackpot", token, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	code, _ := decodeError(t, rec)
	assert.Equal(t, "INVALID_VALUE", code)

	rec = s.doJSON(t, http.MethodPost, "/api/v1/participants", "", `{"displayName":"Ada"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = s.doJSON(t, http.MethodPost, "/api/v1/admin/draws/Supplementary", token, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var result models.DrawResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, models.DrawKindSupplementary, result.Kind)
	require.Len(t, result.Winners, 1)
	assert.Equal(t, "Ada", result.Winners[0].DisplayName)
}
