package recorder

import "time"

// WindowEvent records a planned posting window.
type WindowEvent struct {
	Date  string
	Start time.Time
	End   time.Time
}

// PostEvent records the outcome of one post cycle.
type PostEvent struct {
	Outcome        string // "delivered", "failed" or "skipped"
	Nickname       string
	Team           string
	Amount         int64
	WorkerShare    string
	TxID           string
	Origin         string // "live" or "synthetic"
	FallbackRender bool
	Error          string
}

// Recorder keeps an append-only audit trail. Nothing is ever read back by the bot.
type Recorder interface {
	RecordWindow(evt *WindowEvent) error
	RecordPost(evt *PostEvent) error
	Close() error
}
