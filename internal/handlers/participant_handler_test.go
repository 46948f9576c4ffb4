package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ArowuTest/sequence-draw-backend/internal/engine"
	"github.com/ArowuTest/sequence-draw-backend/internal/middleware"
	"github.com/ArowuTest/sequence-draw-backend/internal/models"
	"github.com/ArowuTest/sequence-draw-backend/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// stubDrawService answers the batch operations with canned results; any
// other method panics through the nil embedded interface.
type stubDrawService struct {
	services.DrawService
	bulk    models.BulkResult
	imports services.ImportResult
	err     error
}

func (s *stubDrawService) BulkRegister(ctx context.Context, privileged bool, entries []models.BulkEntry) (models.BulkResult, error) {
	return s.bulk, s.err
}

func (s *stubDrawService) ImportCSV(ctx context.Context, privileged bool, r io.Reader) (services.ImportResult, error) {
	return s.imports, s.err
}

func newParticipantRouter(svc services.DrawService) *gin.Engine {
	h := NewParticipantHandler(svc)
	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set(middleware.PrivilegedKey, true) })
	r.POST("/bulk", h.BulkRegister)
	r.POST("/import", h.ImportCSV)
	return r
}

type errorWithResult struct {
	Error  string             `json:"error"`
	Code   string             `json:"code"`
	Result *models.BulkResult `json:"result"`
}

func TestBulkRegister_PersistenceFailureReportsCommittedEntries(t *testing.T) {
	added := models.Participant{ID: "p1", DisplayName: "Ann", Token: "AAAAA", PrizeStatus: models.PrizeStatusNone}
	svc := &stubDrawService{
		bulk: models.BulkResult{
			Added:        1,
			Skipped:      []models.SkippedEntry{{Index: 1, Entry: models.BulkEntry{DisplayName: "Ann"}, Code: "DUPLICATE_NAME"}},
			Participants: []models.Participant{added},
		},
		err: fmt.Errorf("%w: save participant: %w", engine.ErrPersistence, io.ErrUnexpectedEOF),
	}
	r := newParticipantRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/bulk", strings.NewReader(`{"entries":[{"displayName":"Ann","token":"AAAAA"}]}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body errorWithResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "PERSISTENCE_ERROR", body.Code)
	require.NotNil(t, body.Result)
	assert.Equal(t, 1, body.Result.Added)
	require.Len(t, body.Result.Participants, 1)
	assert.Equal(t, "p1", body.Result.Participants[0].ID)
	require.Len(t, body.Result.Skipped, 1)
	assert.Equal(t, "DUPLICATE_NAME", body.Result.Skipped[0].Code)
}

func TestBulkRegister_FailureBeforeAnyEntryHasNoResult(t *testing.T) {
	svc := &stubDrawService{err: fmt.Errorf("%w: save participant: %w", engine.ErrPersistence, io.ErrUnexpectedEOF)}
	r := newParticipantRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/bulk", strings.NewReader(`{"entries":[{"displayName":"Ann","token":"AAAAA"}]}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body errorWithResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "PERSISTENCE_ERROR", body.Code)
	assert.Nil(t, body.Result)
}

func TestImportCSV_PersistenceFailureReportsCommittedEntries(t *testing.T) {
	svc := &stubDrawService{
		imports: services.ImportResult{BulkResult: models.BulkResult{
			Added:        2,
			Skipped:      []models.SkippedEntry{},
			Participants: []models.Participant{{ID: "p1"}, {ID: "p2"}},
		}},
		err: fmt.Errorf("%w: save participant: %w", engine.ErrPersistence, io.ErrUnexpectedEOF),
	}
	r := newParticipantRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/import", strings.NewReader("Name,Token\nAnn,AAAAA\n"))
	req.Header.Set("Content-Type", "text/csv")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body errorWithResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotNil(t, body.Result)
	assert.Equal(t, 2, body.Result.Added)
	assert.Len(t, body.Result.Participants, 2)
}
