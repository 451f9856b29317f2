package screen

// Search holds the raw search text and its debounced value.
//
// Every Set starts a new generation; Commit only applies the generation it
// was scheduled for, so a superseded timer can never write stale text.
type Search struct {
	raw       string
	debounced string
	gen       uint64
	timer     Timer
}

// Raw returns the text as typed.
func (s *Search) Raw() string { return s.raw }

// Debounced returns the last committed text.
func (s *Search) Debounced() string { return s.debounced }

// Set records text, cancels the pending commit and returns the generation the
// next commit must carry.
func (s *Search) Set(text string) uint64 {
	s.raw = text
	s.gen++
	s.stop()
	return s.gen
}

// arm remembers the timer of the pending commit.
func (s *Search) arm(t Timer) { s.timer = t }

// Commit copies the raw text into the debounced value if gen is current.
// It reports whether the debounced value changed.
func (s *Search) Commit(gen uint64) bool {
	if gen != s.gen {
		return false
	}
	s.timer = nil
	if s.debounced == s.raw {
		return false
	}
	s.debounced = s.raw
	return true
}

func (s *Search) stop() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}
