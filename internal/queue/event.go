// Package queue defines message payloads exchanged over the message broker
// and the consumer that turns them into an edit log.
package queue

// SeatMapEditedQueue is the durable queue edit events are published to.
const SeatMapEditedQueue = "seatmap.edited"

// SeatMapEditedEvent is published after an apply has been stored.  It carries
// counts and the changed seats so downstream consumers can log or notify
// without fetching the document.
type SeatMapEditedEvent struct {
	SessionID   string   `json:"session_id"`
	Name        string   `json:"name"`
	Actor       string   `json:"actor"`
	Mode        string   `json:"mode"`
	Matched     int      `json:"matched"`
	Missing     int      `json:"missing"`
	Updated     []string `json:"updated"`
	Blocked     int      `json:"blocked"`
	Unparsed    int      `json:"unparsed"`
	Available   int      `json:"available"`
	Unavailable int      `json:"unavailable"`
	EditedAt    string   `json:"edited_at"`
}
