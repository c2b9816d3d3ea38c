package feed

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// Listener holds a single outbound subscription to the market-data feed.
// It never reconnects: once the connection drops the update channel closes.
type Listener struct {
	config Config
	dialer *websocket.Dialer
	log    *logrus.Entry

	dropped atomic.Uint64
}

func NewListener(config Config) *Listener {
	if config.Buffer <= 0 {
		config.Buffer = 256
	}
	if config.HandshakeTimeout <= 0 {
		config.HandshakeTimeout = 15 * time.Second
	}

	return &Listener{
		config: config,
		dialer: &websocket.Dialer{
			HandshakeTimeout:  config.HandshakeTimeout,
			EnableCompression: true,
			Proxy:             http.ProxyFromEnvironment,
		},
		log: logrus.WithFields(logrus.Fields{
			"component": "feed",
			"session":   uuid.NewString(),
			"topic":     config.Topic,
		}),
	}
}

// Subscribe dials the feed, sends one subscribe request and returns the
// stream of updates. The channel is closed when the connection ends or ctx
// is cancelled. Delivery is best effort: updates are dropped while the
// channel is full.
func (l *Listener) Subscribe(ctx context.Context) (<-chan PriceUpdate, error) {
	l.log.WithField("url", l.config.URL).Info("feed connecting")

	conn, _, err := l.dialer.DialContext(ctx, l.config.URL, nil)
	if err != nil {
		return nil, &ConnectionError{Op: "dial", URL: l.config.URL, Err: err}
	}

	sub := subscribeRequest{Op: "subscribe", Args: []string{l.config.Topic}}
	if err := conn.WriteJSON(sub); err != nil {
		_ = conn.Close()
		return nil, &ConnectionError{Op: "subscribe", URL: l.config.URL, Err: err}
	}

	l.log.Info("feed connected & subscribed")

	out := make(chan PriceUpdate, l.config.Buffer)
	go l.read(ctx, conn, out)
	return out, nil
}

func (l *Listener) read(ctx context.Context, conn *websocket.Conn, out chan<- PriceUpdate) {
	defer close(out)

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()
	defer conn.Close()

	for {
		_, b, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				l.log.Info("feed stopped")
				return
			}
			l.log.WithError(&ConnectionError{Op: "read", URL: l.config.URL, Err: err}).
				Error("feed connection lost, not reconnecting")
			return
		}

		update, ack, err := decodeFrame(b, time.Now().UTC())
		if err != nil {
			l.log.WithError(err).WithField("raw", string(b)).Warn("skipping undecodable feed message")
			continue
		}
		if ack != nil {
			if !*ack.Success {
				l.log.WithField("ret_msg", ack.RetMsg).Error("subscribe not success")
			} else {
				l.log.Debug("subscription acknowledged")
			}
			continue
		}

		select {
		case out <- update:
		default:
			l.dropped.Add(1)
			l.log.WithField("symbol", update.Symbol).Debug("update channel full, dropping")
		}
	}
}

// Dropped reports how many updates were discarded because the consumer
// fell behind.
func (l *Listener) Dropped() uint64 {
	return l.dropped.Load()
}

// Run subscribes and hands every update to handle until the stream ends.
func (l *Listener) Run(ctx context.Context, handle func(PriceUpdate)) error {
	updates, err := l.Subscribe(ctx)
	if err != nil {
		return err
	}
	Consume(ctx, updates, handle)
	return nil
}

// Consume drains updates into handle until the channel closes or ctx ends.
func Consume(ctx context.Context, updates <-chan PriceUpdate, handle func(PriceUpdate)) {
	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			handle(update)
		}
	}
}

// LogUpdate writes an update to the log. It is the only consumer today.
func LogUpdate(update PriceUpdate) {
	fields := logrus.Fields{
		"topic":  update.Topic,
		"type":   update.Type,
		"symbol": update.Symbol,
	}
	if update.LastPrice != nil {
		fields["last_price"] = update.LastPrice.String()
	}
	logrus.WithFields(fields).Info("Received price update")
}
