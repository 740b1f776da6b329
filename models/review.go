package models

import "time"

// Review speichert das Urteil eines Reviewers zu genau einer Korpus-Zeile.
// Die identifizierenden und inhaltlichen Felder der Zeile werden denormalisiert
// mitgeführt, damit der Export auch dann vollständig bleibt, wenn sich die
// Quellzeile ändert oder verschwindet. Reviews sind append-only.
type Review struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`

	// Referenz auf die Korpus-Zeile
	DataID     int `json:"data_id"`
	OriginalID int `json:"original_id"`

	// Denormalisierte Identität; höchstens ein Review pro combined_id
	CombinedID    string `json:"combined_id" gorm:"uniqueIndex;not null"`
	TemplateID    int    `json:"template_id"`
	ExpandedID    int    `json:"expanded_id"`
	ParaphrasedID int    `json:"paraphrased_id"`

	// Denormalisierter Inhalt
	QueryTemplate  string `json:"query_template" gorm:"type:text"`
	Constraints    string `json:"constraints" gorm:"type:text"`
	SpecTemplate   string `json:"spec_template" gorm:"type:text"`
	QueryType      string `json:"query_type"`
	CreationMethod string `json:"creation_method"`
	QueryBase      string `json:"query_base" gorm:"type:text"`
	Spec           string `json:"spec" gorm:"type:text"`
	Solution       string `json:"solution" gorm:"type:text"`
	DatasetSchema  string `json:"dataset_schema" gorm:"type:text"`
	Query          string `json:"query" gorm:"type:text"`

	// Das eigentliche Urteil
	Expertise      int    `json:"expertise"`
	Formality      int    `json:"formality"`
	ReviewStatus   string `json:"review_status" gorm:"not null;index"` // z.B. approved, rejected, flagged
	Reviewer       string `json:"reviewer" gorm:"not null;index"`
	ReviewComments string `json:"review_comments" gorm:"type:text"`

	// Kategorien: als Zeilen persistiert, auf dem Draht als String-Liste
	Categories       []ReviewCategory `json:"-" gorm:"foreignKey:ReviewID"`
	ReviewCategories []string         `json:"review_categories" gorm:"-"`
}

// TableName gibt explizit den Tabellennamen an.
func (Review) TableName() string {
	return "reviews"
}

// ReviewCategory ist ein frei vergebenes Tag an einem Review. Die Zeilen
// entstehen nur gemeinsam mit ihrem Review in derselben Transaktion.
type ReviewCategory struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	ReviewID uint   `json:"review_id" gorm:"index;not null"`
	Category string `json:"category" gorm:"not null"`
}

// TableName gibt explizit den Tabellennamen an.
func (ReviewCategory) TableName() string {
	return "review_categories"
}
