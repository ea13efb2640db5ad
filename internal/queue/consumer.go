package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// maxLoggedSeats bounds the seat list written per line; larger edits are
// summarised with a count.
const maxLoggedSeats = 20

// EditConsumer appends one line per SeatMapEditedEvent to <Dir>/seatmap_edits.log.
type EditConsumer struct {
	URL string
	Dir string
	Log *zap.Logger
}

// Run dials the broker and consumes until ctx is cancelled, reconnecting with
// exponential backoff.  Messages that cannot be handled are rejected without
// requeue so a bad payload never blocks the queue.
func (c *EditConsumer) Run(ctx context.Context) error {
	lg := c.Log
	if lg == nil {
		lg = zap.NewNop()
	}
	backoff := time.Second
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		conn, err := amqp.Dial(c.URL)
		if err != nil {
			lg.Warn("edit-consumer: dial failed", zap.Error(err), zap.Duration("retry_in", backoff))
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = c.consumeLoop(ctx, conn, lg)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		lg.Warn("edit-consumer: consume loop ended, reconnecting", zap.Error(err))
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func (c *EditConsumer) consumeLoop(ctx context.Context, conn *amqp.Connection, lg *zap.Logger) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		lg.Warn("edit-consumer: set QoS failed", zap.Error(err))
	}
	if _, err := ch.QueueDeclare(SeatMapEditedQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(SeatMapEditedQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := c.handleMessage(d.Body); err != nil {
				lg.Error("edit-consumer: handle message failed", zap.Error(err))
				_ = d.Nack(false, false)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

func (c *EditConsumer) handleMessage(body []byte) error {
	var ev SeatMapEditedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	dir := c.Dir
	if dir == "" {
		dir = "logs"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	f, err := os.OpenFile(filepath.Join(dir, "seatmap_edits.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(formatEditLine(ev)); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

func formatEditLine(ev SeatMapEditedEvent) string {
	seats := ev.Updated
	more := ""
	if len(seats) > maxLoggedSeats {
		more = fmt.Sprintf(" (+%d more)", len(seats)-maxLoggedSeats)
		seats = seats[:maxLoggedSeats]
	}
	return fmt.Sprintf("[%s] Seat map edited | session=%s | name=%q | actor=%s | mode=%s | matched=%d | missing=%d | blocked=%d | unparsed=%d | av=%d | uav=%d | updated=[%s]%s\n",
		ev.EditedAt, ev.SessionID, ev.Name, ev.Actor, ev.Mode, ev.Matched, ev.Missing,
		ev.Blocked, ev.Unparsed, ev.Available, ev.Unavailable, strings.Join(seats, ","), more)
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
