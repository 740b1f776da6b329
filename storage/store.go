package storage

import (
	"io"
	"os"
	"path/filepath"

	"udi-review/config"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Store besitzt die eingebettete SQLite-Datenbank des Review-Prozesses.
// Schlägt das Öffnen fehl, bleibt der Store für die gesamte Prozesslaufzeit
// unbenutzbar; es gibt keinen automatischen Reconnect. Alle Gateway-Aufrufe
// prüfen Available() zuerst.
type Store struct {
	db   *gorm.DB
	log  *zap.Logger
	path string
}

// Open löst den Datenbankpfad auf, befüllt im Packaged-Modus die
// benutzerlokale Kopie aus der Seed-Datenbank und öffnet die Verbindung.
// Fehler werden geloggt, nicht zurückgegeben: der Store ist dann unavailable.
func Open(cfg *config.Config, log *zap.Logger) *Store {
	path, err := cfg.StorePath()
	if err != nil {
		log.Error("Could not resolve store path", zap.Error(err))
		return &Store{log: log}
	}
	if cfg.AppMode == config.ModePackaged {
		if err := seedWritableCopy(cfg.SeedDBPath, path, log); err != nil {
			log.Error("Could not seed writable database copy", zap.Error(err))
			return &Store{log: log, path: path}
		}
	}
	return OpenPath(path, log)
}

// OpenPath öffnet die Datenbankdatei direkt unter dem gegebenen Pfad.
func OpenPath(path string, log *zap.Logger) *Store {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		log.Error("Could not connect to database", zap.String("path", path), zap.Error(err))
		return &Store{log: log, path: path}
	}
	log.Info("Database connected", zap.String("path", path))
	return &Store{db: db, log: log, path: path}
}

// NewUnavailable liefert einen Store ohne Verbindung, z.B. für Tests des
// "store not connected"-Verhaltens ohne Dateisystem.
func NewUnavailable(log *zap.Logger) *Store {
	return &Store{log: log}
}

// Available meldet, ob eine offene Verbindung existiert.
func (s *Store) Available() bool {
	return s.db != nil
}

// DB liefert das Verbindungs-Handle; nil, wenn der Store unavailable ist.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Path liefert den aufgelösten Pfad der Datenbankdatei.
func (s *Store) Path() string {
	return s.path
}

// seedWritableCopy kopiert die gebündelte Seed-Datenbank an den
// beschreibbaren Zielpfad. Idempotent: existiert die Zieldatei bereits, wird
// sie nie überschrieben, damit vorhandene Reviewer-Daten erhalten bleiben.
func seedWritableCopy(seedPath, targetPath string, log *zap.Logger) error {
	if _, err := os.Stat(targetPath); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return err
	}

	src, err := os.Open(seedPath)
	if err != nil {
		return err
	}
	defer src.Close()

	if err := os.MkdirAll(filepath.Dir(targetPath), 0o755); err != nil {
		return err
	}
	dst, err := os.Create(targetPath)
	if err != nil {
		return err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return err
	}
	log.Info("Seeded writable database copy",
		zap.String("seed", seedPath),
		zap.String("target", targetPath))
	return nil
}
