package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"udi-review/models"
	"udi-review/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Gateway führt die benannten Operationen des Katalogs gegen den Store aus.
// Es ist die einzige Stelle, an der SQL gegen die Datenbank läuft.
type Gateway struct {
	store *storage.Store
	log   *zap.Logger
}

// New erstellt ein Gateway über dem gegebenen Store.
func New(store *storage.Store, log *zap.Logger) *Gateway {
	return &Gateway{store: store, log: log}
}

// Invoke führt die benannte Operation mit den gegebenen Argumenten aus und
// liefert genau ein Ergebnis oder genau einen Fehler. Ist der Store nicht
// verbunden, lösen Leseoperationen zu "abwesend" (nil) auf; Schreiboperationen
// schlagen mit einem benannten Fehler fehl.
func (g *Gateway) Invoke(ctx context.Context, name string, args ...any) (any, error) {
	op, ok := catalog[name]
	if !ok {
		return nil, &OpError{Op: name, Err: ErrUnknownOperation}
	}
	if !g.store.Available() {
		g.log.Error("Database not connected", zap.String("operation", name))
		if op.Write {
			return nil, &OpError{Op: name, Err: ErrStoreUnavailable}
		}
		return nil, nil
	}
	if op.Run != nil {
		return op.Run(ctx, g, args)
	}
	return g.runQuery(ctx, op, args)
}

// runQuery ist der generische Executor für alle SQL-gestützten
// Katalog-Operationen.
func (g *Gateway) runQuery(ctx context.Context, op Operation, args []any) (any, error) {
	var params []any
	if op.Bind != nil {
		var err error
		params, err = op.Bind(args)
		if err != nil {
			return nil, &OpError{Op: op.Name, Err: err}
		}
	}

	db := g.store.DB().WithContext(ctx)
	if op.Kind == KindRow {
		row := map[string]any{}
		res := db.Raw(op.Query, params...).Scan(&row)
		if res.Error != nil {
			return nil, g.fail(op.Name, res.Error)
		}
		if res.RowsAffected == 0 {
			return nil, nil
		}
		return row, nil
	}

	rows := []map[string]any{}
	if err := db.Raw(op.Query, params...).Scan(&rows).Error; err != nil {
		return nil, g.fail(op.Name, err)
	}
	return rows, nil
}

// EnsureReviewsSchema legt die Tabellen reviews und review_categories an,
// falls sie fehlen. Idempotent.
func (g *Gateway) EnsureReviewsSchema(ctx context.Context) error {
	if !g.store.Available() {
		g.log.Error("Database not connected", zap.String("operation", OpEnsureReviewsSchema))
		return &OpError{Op: OpEnsureReviewsSchema, Err: ErrStoreUnavailable}
	}
	db := g.store.DB().WithContext(ctx)
	if err := db.AutoMigrate(&models.Review{}, &models.ReviewCategory{}); err != nil {
		return g.fail(OpEnsureReviewsSchema, err)
	}
	return nil
}

// EnsureUserSchema legt die user-Tabelle an und hinterlegt einmalig ein
// generiertes Installations-Token unter dem Schlüssel "uid". Ein bereits
// vorhandenes Token wird nie überschrieben.
func (g *Gateway) EnsureUserSchema(ctx context.Context) error {
	if !g.store.Available() {
		g.log.Error("Database not connected", zap.String("operation", OpEnsureUserSchema))
		return &OpError{Op: OpEnsureUserSchema, Err: ErrStoreUnavailable}
	}
	db := g.store.DB().WithContext(ctx)
	if err := db.AutoMigrate(&models.UserSetting{}); err != nil {
		return g.fail(OpEnsureUserSchema, err)
	}
	setting := models.UserSetting{Field: "uid", Value: uuid.NewString()}
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "field"}},
		DoNothing: true,
	}).Create(&setting).Error; err != nil {
		return g.fail(OpEnsureUserSchema, err)
	}
	return nil
}

// FetchUser liefert die uid-Zeile oder nil. Vor dem ersten
// ensure-user-schema existiert die Tabelle noch nicht; auch das zählt als
// "abwesend", nicht als Fehler.
func (g *Gateway) FetchUser(ctx context.Context) (any, error) {
	if !g.store.Available() {
		g.log.Error("Database not connected", zap.String("operation", OpFetchUser))
		return nil, nil
	}
	db := g.store.DB().WithContext(ctx)
	if !db.Migrator().HasTable(&models.UserSetting{}) {
		return nil, nil
	}
	var setting models.UserSetting
	err := db.Where("field = ?", "uid").First(&setting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, g.fail(OpFetchUser, err)
	}
	return setting, nil
}

// AddReview fügt ein Review samt Kategorien in einer Transaktion ein und
// liefert die neu vergebene ID. Schlägt irgendein Schritt fehl (insbesondere
// eine verletzte combined_id-Eindeutigkeit), wird vollständig zurückgerollt:
// es bleibt weder ein Review ohne seine Kategorien noch eine Kategorie ohne
// Review zurück. Ob ein Duplikat die Ursache war, ist über
// errors.Is(err, gorm.ErrDuplicatedKey) erkennbar.
func (g *Gateway) AddReview(ctx context.Context, review models.Review) (uint, error) {
	if !g.store.Available() {
		g.log.Error("Database not connected", zap.String("operation", OpAddReview))
		return 0, &OpError{Op: OpAddReview, Err: ErrStoreUnavailable}
	}
	db := g.store.DB().WithContext(ctx)
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&review).Error; err != nil {
			return err
		}
		if len(review.ReviewCategories) == 0 {
			return nil
		}
		categories := make([]models.ReviewCategory, 0, len(review.ReviewCategories))
		for _, category := range review.ReviewCategories {
			categories = append(categories, models.ReviewCategory{
				ReviewID: review.ID,
				Category: category,
			})
		}
		// ein gebatchtes Statement für alle Kategorien
		return tx.Create(&categories).Error
	})
	if err != nil {
		return 0, g.fail(OpAddReview, err)
	}
	return review.ID, nil
}

// FetchAllReviews liefert alle Reviews, die Kategorien je Review zu einer
// String-Liste zusammengefasst.
func (g *Gateway) FetchAllReviews(ctx context.Context) ([]models.Review, error) {
	if !g.store.Available() {
		g.log.Error("Database not connected", zap.String("operation", OpFetchAllReviews))
		return nil, nil
	}
	db := g.store.DB().WithContext(ctx)
	reviews := make([]models.Review, 0)
	if err := db.Preload("Categories").Order("id").Find(&reviews).Error; err != nil {
		return nil, g.fail(OpFetchAllReviews, err)
	}
	for i := range reviews {
		categories := make([]string, 0, len(reviews[i].Categories))
		for _, c := range reviews[i].Categories {
			categories = append(categories, c.Category)
		}
		reviews[i].ReviewCategories = categories
	}
	return reviews, nil
}

// decodeReview wandelt das erste Argument (ein JSON-Objekt) in ein Review um.
// Die ID vergibt der Store, nicht der Aufrufer.
func decodeReview(args []any) (models.Review, error) {
	var review models.Review
	if len(args) < 1 {
		return review, fmt.Errorf("missing review payload")
	}
	raw, err := json.Marshal(args[0])
	if err != nil {
		return review, err
	}
	if err := json.Unmarshal(raw, &review); err != nil {
		return review, err
	}
	review.ID = 0
	return review, nil
}

func (g *Gateway) fail(op string, err error) error {
	g.log.Error("Operation failed", zap.String("operation", op), zap.Error(err))
	return &OpError{Op: op, Err: err}
}
