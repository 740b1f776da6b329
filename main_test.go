package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"udi-review/gateway"
	"udi-review/models"
	"udi-review/storage"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := storage.OpenPath(filepath.Join(t.TempDir(), "database.sqlite"), zap.NewNop())
	require.True(t, store.Available())
	require.NoError(t, store.DB().AutoMigrate(&models.DataItem{}))
	require.NoError(t, store.DB().Create(&models.DataItem{
		ID: 1, CombinedID: "1-1-1", TemplateID: 1, ExpandedID: 1, ParaphrasedID: 1,
	}).Error)

	gw := gateway.New(store, zap.NewNop())
	require.NoError(t, gw.EnsureReviewsSchema(context.Background()))
	require.NoError(t, gw.EnsureUserSchema(context.Background()))

	router := gin.New()
	setupBridgeRoutes(router, gw, zap.NewNop())
	return router
}

func invokeOp(t *testing.T, router *gin.Engine, name string, args ...any) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	if args != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(map[string]any{"args": args}))
	}
	req := httptest.NewRequest(http.MethodPost, "/invoke/"+name, &body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var payload map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	return payload
}

func TestBridgeFetchRowCount(t *testing.T) {
	router := newTestRouter(t)

	w := invokeOp(t, router, gateway.OpFetchRowCount)
	require.Equal(t, http.StatusOK, w.Code)

	payload := decodeBody(t, w)
	row := payload["result"].(map[string]any)
	assert.EqualValues(t, 1, row["count"])
}

func TestBridgeFetchRowDataAbsent(t *testing.T) {
	router := newTestRouter(t)

	w := invokeOp(t, router, gateway.OpFetchRowData, "9-9-9")
	require.Equal(t, http.StatusOK, w.Code)

	payload := decodeBody(t, w)
	_, hasResult := payload["result"]
	assert.True(t, hasResult)
	assert.Nil(t, payload["result"])
}

func TestBridgeFetchUser(t *testing.T) {
	router := newTestRouter(t)

	w := invokeOp(t, router, gateway.OpFetchUser)
	require.Equal(t, http.StatusOK, w.Code)

	payload := decodeBody(t, w)
	user := payload["result"].(map[string]any)
	assert.Equal(t, "uid", user["field"])
	assert.NotEmpty(t, user["value"])
}

func TestBridgeAddReview(t *testing.T) {
	router := newTestRouter(t)

	review := map[string]any{
		"combined_id":       "1-1-1",
		"reviewer":          "bob",
		"review_status":     "approved",
		"review_categories": []string{"syntax", "semantics"},
	}

	w := invokeOp(t, router, gateway.OpAddReview, review)
	require.Equal(t, http.StatusOK, w.Code)
	payload := decodeBody(t, w)
	assert.EqualValues(t, 1, payload["result"])

	// Zweiter Versuch mit derselben combined_id: benannter Konflikt
	w = invokeOp(t, router, gateway.OpAddReview, review)
	require.Equal(t, http.StatusConflict, w.Code)
	payload = decodeBody(t, w)
	assert.Contains(t, payload["error"], "error in add-review")

	// Genau ein Review mit beiden Kategorien
	w = invokeOp(t, router, gateway.OpFetchAllReviews)
	require.Equal(t, http.StatusOK, w.Code)
	payload = decodeBody(t, w)
	reviews := payload["result"].([]any)
	require.Len(t, reviews, 1)
	entry := reviews[0].(map[string]any)
	assert.Equal(t, "1-1-1", entry["combined_id"])
	assert.ElementsMatch(t, []any{"syntax", "semantics"}, entry["review_categories"])
}

func TestBridgeUnknownOperation(t *testing.T) {
	router := newTestRouter(t)

	w := invokeOp(t, router, "fetch-everything")
	require.Equal(t, http.StatusNotFound, w.Code)
	payload := decodeBody(t, w)
	assert.Contains(t, payload["error"], "unknown operation")
}

func TestBridgeStoreUnavailable(t *testing.T) {
	gin.SetMode(gin.TestMode)
	gw := gateway.New(storage.NewUnavailable(zap.NewNop()), zap.NewNop())
	router := gin.New()
	setupBridgeRoutes(router, gw, zap.NewNop())

	// Lesen löst zu "abwesend" auf
	w := invokeOp(t, router, gateway.OpFetchRowCount)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, decodeBody(t, w)["result"])

	// Schreiben wird abgelehnt
	w = invokeOp(t, router, gateway.OpAddReview, map[string]any{"combined_id": "a"})
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, decodeBody(t, w)["error"], "store not connected")
}
