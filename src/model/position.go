package model

import "time"

// Position is an entry taken against a Pair. Profit figures are supplied by
// the caller when the position is closed; nothing here computes them.
type Position struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	PairID           *uint      `gorm:"column:pair_id;index" json:"pair_id"`
	EntryPrice       float64    `gorm:"column:entry_price;not null" json:"entry_price"`
	Amount           float64    `gorm:"column:amount;not null" json:"amount"`
	Type             string     `gorm:"column:type;type:text;not null;check:type IN ('LONG', 'SHORT')" json:"type"`
	Status           string     `gorm:"column:status;type:text;not null;check:status IN ('OPEN', 'CLOSED')" json:"status"`
	ProfitPercentage *float64   `gorm:"column:profit_percentage" json:"profit_percentage"`
	ProfitUSDT       *float64   `gorm:"column:profit_usdt" json:"profit_usdt"`
	CreatedAt        time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	ClosedAt         *time.Time `gorm:"column:closed_at" json:"closed_at"`
}

const (
	PositionStatusOpen   = "OPEN"
	PositionStatusClosed = "CLOSED"

	PositionTypeLong  = "LONG"
	PositionTypeShort = "SHORT"
)

// TableName keeps the legacy table name.
func (Position) TableName() string {
	return "positions"
}

// IsOpen reports whether the position can still be closed.
func (p Position) IsOpen() bool {
	return p.Status == PositionStatusOpen
}

// PositionWithSymbol is a position row joined with the symbol of its pair.
// Symbol is nil when the position references no pair or a missing one.
type PositionWithSymbol struct {
	Position
	Symbol *string `gorm:"column:symbol" json:"symbol"`
}
