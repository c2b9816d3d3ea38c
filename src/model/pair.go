package model

import "time"

const (
	MomentumLong  = "LONG"
	MomentumShort = "SHORT"
)

// Pair is a tracked instrument with a momentum bias and a price range.
// Pairs are never updated or deleted once created.
type Pair struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Symbol     string    `gorm:"column:symbol;type:text;not null" json:"symbol"`
	Momentum   string    `gorm:"column:momentum;type:text;not null;check:momentum IN ('LONG', 'SHORT')" json:"momentum"`
	UpperRange float64   `gorm:"column:upper_range;not null" json:"upper_range"`
	LowerRange float64   `gorm:"column:lower_range;not null" json:"lower_range"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

// TableName keeps the legacy table name.
func (Pair) TableName() string {
	return "pairs"
}

// IsDirection reports whether s is one of the two accepted directions.
// Momentum and position type share the same vocabulary.
func IsDirection(s string) bool {
	return s == MomentumLong || s == MomentumShort
}
