package screen

// NoResultsMessage is shown when a search settles on zero notes.
const NoResultsMessage = "No notes found for your request."

// Notifier receives user-facing error notifications. Calls are
// fire-and-forget and happen on the screen's loop, so implementations must
// not block.
type Notifier interface {
	Error(msg string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(msg string)

func (f NotifierFunc) Error(msg string) { f(msg) }

type nopNotifier struct{}

func (nopNotifier) Error(string) {}
