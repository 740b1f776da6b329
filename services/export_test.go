package services

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"udi-review/config"
	"udi-review/gateway"
	"udi-review/models"
	"udi-review/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestExportService(t *testing.T) *ExportService {
	t.Helper()
	store := storage.OpenPath(filepath.Join(t.TempDir(), "database.sqlite"), zap.NewNop())
	require.True(t, store.Available())
	gw := gateway.New(store, zap.NewNop())
	require.NoError(t, gw.EnsureReviewsSchema(context.Background()))

	cfg := &config.Config{ExportDir: filepath.Join(t.TempDir(), "exports")}
	return NewExportService(cfg, gw, zap.NewNop())
}

func TestMarshalReviews(t *testing.T) {
	e := newTestExportService(t)
	_, err := e.Gateway.AddReview(context.Background(), models.Review{
		CombinedID:       "1-1-1",
		Reviewer:         "bob",
		ReviewStatus:     "approved",
		ReviewCategories: []string{"syntax", "semantics"},
	})
	require.NoError(t, err)

	data, err := e.MarshalReviews(context.Background())
	require.NoError(t, err)

	var exported []map[string]any
	require.NoError(t, json.Unmarshal(data, &exported))
	require.Len(t, exported, 1)
	assert.Equal(t, "1-1-1", exported[0]["combined_id"])
	assert.Equal(t, "bob", exported[0]["reviewer"])
	assert.ElementsMatch(t, []any{"syntax", "semantics"}, exported[0]["review_categories"])
}

func TestMarshalReviewsEmpty(t *testing.T) {
	e := newTestExportService(t)

	data, err := e.MarshalReviews(context.Background())
	require.NoError(t, err)
	assert.JSONEq(t, "[]", string(data))
}

func TestWriteSnapshot(t *testing.T) {
	e := newTestExportService(t)
	_, err := e.Gateway.AddReview(context.Background(), models.Review{
		CombinedID:   "1-1-1",
		Reviewer:     "bob",
		ReviewStatus: "flagged",
	})
	require.NoError(t, err)

	path, err := e.WriteSnapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, e.Config.ExportDir, filepath.Dir(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var exported []map[string]any
	require.NoError(t, json.Unmarshal(data, &exported))
	require.Len(t, exported, 1)
	assert.Equal(t, "flagged", exported[0]["review_status"])
}
