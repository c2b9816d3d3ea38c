package feed

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PriceUpdate is one inbound feed message. LastPrice is nil when the
// message carries no price for its symbol.
type PriceUpdate struct {
	Topic      string
	Type       string
	Symbol     string
	LastPrice  *decimal.Decimal
	Raw        json.RawMessage
	ReceivedAt time.Time
}

// ConnectionError is a transport failure on the feed connection.
type ConnectionError struct {
	Op  string
	URL string
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("feed %s %s: %v", e.Op, e.URL, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

type subscribeRequest struct {
	Op   string   `json:"op"`
	Args []string `json:"args"`
}

type inboundMessage struct {
	Topic string          `json:"topic"`
	Type  string          `json:"type"`
	Data  json.RawMessage `json:"data"`

	// subscription acknowledgement
	Success *bool  `json:"success,omitempty"`
	RetMsg  string `json:"ret_msg,omitempty"`
}

// tickerFields covers the legacy instrument_info layout (last_price,
// last_price_e4) and the v5 tickers layout (lastPrice).
type tickerFields struct {
	Symbol      string      `json:"symbol"`
	LastPrice   string      `json:"last_price"`
	LastPriceE4 json.Number `json:"last_price_e4"`
	LastPriceV5 string      `json:"lastPrice"`
}

func (f tickerFields) price() *decimal.Decimal {
	for _, s := range []string{f.LastPrice, f.LastPriceV5} {
		if s = strings.TrimSpace(s); s == "" {
			continue
		}
		if px, err := decimal.NewFromString(s); err == nil {
			return &px
		}
	}
	if f.LastPriceE4 != "" {
		if e4, err := f.LastPriceE4.Int64(); err == nil {
			px := decimal.New(e4, -4)
			return &px
		}
	}
	return nil
}

// delta messages wrap changed rows in update/insert lists.
type tickerData struct {
	tickerFields
	Update []tickerFields `json:"update"`
	Insert []tickerFields `json:"insert"`
}

func (d tickerData) first() tickerFields {
	if d.Symbol != "" {
		return d.tickerFields
	}
	for _, rows := range [][]tickerFields{d.Update, d.Insert} {
		if len(rows) > 0 {
			return rows[0]
		}
	}
	return d.tickerFields
}
