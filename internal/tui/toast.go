package tui

// Toasts is a notification sink that never blocks its caller. Messages that
// arrive while the buffer is full are dropped.
type Toasts struct {
	ch chan string
}

// NewToasts creates a sink buffering up to size messages.
func NewToasts(size int) *Toasts {
	if size < 1 {
		size = 1
	}
	return &Toasts{ch: make(chan string, size)}
}

// Error queues msg for display.
func (t *Toasts) Error(msg string) {
	select {
	case t.ch <- msg:
	default:
	}
}

// C returns the channel the UI reads from.
func (t *Toasts) C() <-chan string { return t.ch }
