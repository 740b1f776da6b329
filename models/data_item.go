package models

// DataItem repräsentiert eine generierte Trainingszeile aus dem vorbereiteten
// Korpus: ein Template wird zu Varianten expandiert, jede Variante mehrfach
// paraphrasiert. Die Tabelle wird von der Datenaufbereitung befüllt und von
// diesem System ausschließlich gelesen.
type DataItem struct {
	ID            int    `json:"id" gorm:"primaryKey"`
	OriginalID    int    `json:"original_id"`
	CombinedID    string `json:"combined_id" gorm:"uniqueIndex;not null"`
	TemplateID    int    `json:"template_id" gorm:"index"`
	ExpandedID    int    `json:"expanded_id" gorm:"index"`
	ParaphrasedID int    `json:"paraphrased_id"`

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
}

// TableName gibt explizit den Tabellennamen an.
func (DataItem) TableName() string {
	return "data"
}
