package feed

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// decodeFrame parses one inbound frame. A subscription acknowledgement is
// returned as ack and carries no update.
func decodeFrame(b []byte, receivedAt time.Time) (update PriceUpdate, ack *inboundMessage, err error) {
	var msg inboundMessage
	if err := json.Unmarshal(b, &msg); err != nil {
		return PriceUpdate{}, nil, fmt.Errorf("decode feed message: %w", err)
	}
	if msg.Success != nil {
		return PriceUpdate{}, &msg, nil
	}

	update = PriceUpdate{
		Topic:      msg.Topic,
		Type:       msg.Type,
		Raw:        append(json.RawMessage(nil), b...),
		ReceivedAt: receivedAt,
	}

	data := bytes.TrimSpace(msg.Data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return update, nil, nil
	}

	var fields tickerFields
	switch data[0] {
	case '{':
		var d tickerData
		if err := json.Unmarshal(data, &d); err == nil {
			fields = d.first()
		}
	case '[':
		var rows []tickerFields
		if err := json.Unmarshal(data, &rows); err == nil && len(rows) > 0 {
			fields = rows[0]
		}
	}

	update.Symbol = fields.Symbol
	update.LastPrice = fields.price()
	return update, nil, nil
}
