package models

// UserSetting speichert lokale Installationswerte als Schlüssel/Wert-Paare.
// Unter dem Schlüssel "uid" liegt das einmalig generierte Token, das die
// Reviewer-Installation identifiziert; einmal vorhanden, wird es nie ersetzt.
type UserSetting struct {
	ID    uint   `json:"id" gorm:"primaryKey"`
	Field string `json:"field" gorm:"uniqueIndex;not null"`
	Value string `json:"value" gorm:"not null"`
}

// TableName gibt den expliziten Tabellennamen für GORM an.
func (UserSetting) TableName() string {
	return "user"
}
