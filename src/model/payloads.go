package model

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ValidationError reports a request payload that was rejected before
// reaching the store.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

func missing(field string) error {
	return &ValidationError{Field: field, Reason: "is required"}
}

// CreatePairPayload is the body of POST /api/pairs.
type CreatePairPayload struct {
	Symbol     string   `json:"symbol"`
	Momentum   string   `json:"momentum"`
	UpperRange *float64 `json:"upper_range"`
	LowerRange *float64 `json:"lower_range"`
}

// Validate checks required fields and the momentum vocabulary.
// The range bounds are not compared against each other.
func (p CreatePairPayload) Validate() error {
	if strings.TrimSpace(p.Symbol) == "" {
		return missing("symbol")
	}
	if p.Momentum == "" {
		return missing("momentum")
	}
	if !IsDirection(p.Momentum) {
		return &ValidationError{Field: "momentum", Reason: "must be LONG or SHORT"}
	}
	if p.UpperRange == nil {
		return missing("upper_range")
	}
	if p.LowerRange == nil {
		return missing("lower_range")
	}
	return nil
}

func (p CreatePairPayload) ToPair() *Pair {
	return &Pair{
		Symbol:     strings.TrimSpace(p.Symbol),
		Momentum:   p.Momentum,
		UpperRange: *p.UpperRange,
		LowerRange: *p.LowerRange,
	}
}

// CreatePositionPayload is the body of POST /api/positions. A status sent by
// the client is not part of the payload and is therefore ignored.
type CreatePositionPayload struct {
	PairID     *json.Number `json:"pair_id"`
	EntryPrice *float64     `json:"entry_price"`
	Amount     *float64     `json:"amount"`
	Type       string       `json:"type"`
}

// PairRef returns id as a pair_id value for CreatePositionPayload.
func PairRef(id uint) *json.Number {
	n := json.Number(strconv.FormatUint(uint64(id), 10))
	return &n
}

// parsePairID accepts any JSON number holding a positive whole value,
// so 1 and 1.0 both reference pair 1.
func parsePairID(n json.Number) (uint, bool) {
	f, err := n.Float64()
	if err != nil || f < 1 || f != math.Trunc(f) || f > math.MaxUint32 {
		return 0, false
	}
	return uint(f), true
}

func (p CreatePositionPayload) Validate() error {
	if p.PairID != nil {
		if _, ok := parsePairID(*p.PairID); !ok {
			return &ValidationError{Field: "pair_id", Reason: "must be a positive integer"}
		}
	}
	if p.EntryPrice == nil {
		return missing("entry_price")
	}
	if p.Amount == nil {
		return missing("amount")
	}
	if p.Type == "" {
		return missing("type")
	}
	if !IsDirection(p.Type) {
		return &ValidationError{Field: "type", Reason: "must be LONG or SHORT"}
	}
	return nil
}

func (p CreatePositionPayload) ToPosition() *Position {
	var pairID *uint
	if p.PairID != nil {
		if id, ok := parsePairID(*p.PairID); ok {
			pairID = &id
		}
	}
	return &Position{
		PairID:     pairID,
		EntryPrice: *p.EntryPrice,
		Amount:     *p.Amount,
		Type:       p.Type,
	}
}

// ClosePositionPayload is the body of POST /api/positions/{id}/close.
type ClosePositionPayload struct {
	ProfitPercentage *float64 `json:"profit_percentage"`
	ProfitUSDT       *float64 `json:"profit_usdt"`
}

func (p ClosePositionPayload) Validate() error {
	if p.ProfitPercentage == nil {
		return missing("profit_percentage")
	}
	if p.ProfitUSDT == nil {
		return missing("profit_usdt")
	}
	return nil
}
