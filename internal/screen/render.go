package screen

import (
	"github.com/starford/notehub/internal/models"
	"github.com/starford/notehub/internal/query"
)

// Fixed texts of the notes screen.
const (
	LoaderText = "Loading notes, please wait..."
	ErrorText  = "Error loading notes"
)

// Status is the derived state of the notes screen.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusFetching
	StatusError
	StatusPopulated
	StatusEmpty
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusFetching:
		return "fetching"
	case StatusError:
		return "error"
	case StatusPopulated:
		return "populated"
	case StatusEmpty:
		return "empty"
	default:
		return "unknown"
	}
}

// Snapshot is a copy of the screen state at one point of its loop.
type Snapshot struct {
	RawSearch string
	Search    string // debounced
	Page      int
	ModalOpen bool

	// Data is the last successful result. While a new key is being fetched
	// it still belongs to DataKey, the previous key.
	Data    *models.PageResult
	DataKey query.Key

	IsLoading  bool // fetching with no data at all
	IsFetching bool
	IsError    bool
	Err        error
}

// Key is the query key the screen is showing or fetching.
func (s Snapshot) Key() query.Key {
	return query.Key{Search: s.Search, Page: s.Page}
}

// Status derives the screen state from the flags.
func (s Snapshot) Status() Status {
	switch {
	case s.IsError:
		return StatusError
	case s.IsLoading:
		return StatusLoading
	case s.IsFetching:
		return StatusFetching
	case s.Data == nil:
		return StatusIdle
	case len(s.Data.Notes) == 0:
		return StatusEmpty
	default:
		return StatusPopulated
	}
}

// View says what the notes screen shows.
type View struct {
	Status    Status
	Search    string
	ModalOpen bool

	ShowLoader bool
	ShowError  bool
	ShowList   bool
	Notes      []models.Note

	ShowPagination bool
	Page           int
	TotalPages     int
}

// Render maps a snapshot to a view. It holds no state of its own.
func Render(s Snapshot) View {
	v := View{
		Status:    s.Status(),
		Search:    s.RawSearch,
		ModalOpen: s.ModalOpen,
		Page:      s.Page,

		ShowLoader: s.IsLoading || s.IsFetching,
		ShowError:  s.IsError,
	}
	if s.Data != nil {
		v.TotalPages = s.Data.TotalPages
		v.ShowPagination = s.Data.TotalPages > 1
		if !s.IsError {
			v.ShowList = true
			v.Notes = s.Data.Notes
		}
	}
	return v
}
