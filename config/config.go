package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	ModeDev      = "dev"
	ModePackaged = "packaged"
)

// Config enthält alle Konfigurationsparameter aus Umgebungsvariablen.
type Config struct {
	AppMode string `envconfig:"APP_MODE" default:"dev"` // dev oder packaged

	// Pfad der Datenbank im Dev-Modus bzw. der gebündelten, nur lesbaren
	// Seed-Datenbank im Packaged-Modus.
	DBPath     string `envconfig:"DB_PATH" default:"data/database.sqlite"`
	SeedDBPath string `envconfig:"SEED_DB_PATH" default:"data/database.sqlite"`

	HTTPPort     string `envconfig:"HTTP_PORT" default:"4275"`
	APISecretKey string `envconfig:"API_SECRET_KEY"`

	// Zeitgesteuerte Review-Snapshots (JSON-Exporte).
	ExportDir        string `envconfig:"EXPORT_DIR" default:"exports"`
	SnapshotSchedule string `envconfig:"SNAPSHOT_SCHEDULE" default:"0 * * * *"`
}

// StorePath liefert den Pfad der beschreibbaren Datenbankdatei. Im
// Packaged-Modus liegt sie in einem benutzerlokalen Verzeichnis, das beim
// ersten Start aus der Seed-Datenbank befüllt wird.
func (c *Config) StorePath() (string, error) {
	if c.AppMode != ModePackaged {
		return c.DBPath, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "udi-review", "database.sqlite"), nil
}

// Load lädt die Konfiguration aus den Umgebungsvariablen.
func Load() (*Config, error) {
	_ = godotenv.Load()
	var c Config
	err := envconfig.Process("", &c)
	return &c, err
}
