package recorder

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordWindow(_ *WindowEvent) error { return nil }
func (n *NoopRecorder) RecordPost(_ *PostEvent) error     { return nil }
func (n *NoopRecorder) Close() error                      { return nil }
