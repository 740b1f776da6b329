package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"udi-review/config"
	"udi-review/gateway"

	"go.uber.org/zap"
)

// ExportService erzeugt JSON-Exporte der gesammelten Reviews: das
// reviews.json-Dokument für den Download im UI und zeitgesteuerte Snapshots
// auf der Platte.
type ExportService struct {
	Config  *config.Config
	Gateway *gateway.Gateway
	Logger  *zap.Logger
}

// NewExportService erstellt eine neue Instanz des ExportService.
func NewExportService(cfg *config.Config, gw *gateway.Gateway, logger *zap.Logger) *ExportService {
	return &ExportService{
		Config:  cfg,
		Gateway: gw,
		Logger:  logger,
	}
}

// MarshalReviews liefert alle Reviews samt Kategorien als eingerücktes
// JSON-Dokument.
func (e *ExportService) MarshalReviews(ctx context.Context) ([]byte, error) {
	reviews, err := e.Gateway.FetchAllReviews(ctx)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(reviews, "", "  ")
}

// WriteSnapshot schreibt einen zeitgestempelten Review-Export in das
// konfigurierte Export-Verzeichnis und gibt den Dateipfad zurück.
func (e *ExportService) WriteSnapshot(ctx context.Context) (string, error) {
	data, err := e.MarshalReviews(ctx)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(e.Config.ExportDir, 0o755); err != nil {
		return "", err
	}
	name := fmt.Sprintf("reviews-%s.json", time.Now().UTC().Format("2006-01-02T15-04-05Z"))
	path := filepath.Join(e.Config.ExportDir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	e.Logger.Info("Review snapshot written", zap.String("path", path), zap.Int("bytes", len(data)))
	return path, nil
}
