package screen

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/starford/notehub/internal/models"
)

func page(n, total int) *models.PageResult {
	notes := make([]models.Note, n)
	for i := range notes {
		notes[i] = models.Note{ID: string(rune('a' + i)), Title: "note"}
	}
	return &models.PageResult{Notes: notes, TotalPages: total}
}

func TestRender(t *testing.T) {
	tests := []struct {
		name       string
		snap       Snapshot
		status     Status
		loader     bool
		errShown   bool
		list       bool
		pagination bool
	}{
		{
			name:   "first load",
			snap:   Snapshot{IsLoading: true, IsFetching: true},
			status: StatusLoading,
			loader: true,
		},
		{
			name:   "populated single page",
			snap:   Snapshot{Data: page(3, 1)},
			status: StatusPopulated,
			list:   true,
		},
		{
			name:       "populated many pages",
			snap:       Snapshot{Data: page(12, 4)},
			status:     StatusPopulated,
			list:       true,
			pagination: true,
		},
		{
			name:       "refetch keeps stale list",
			snap:       Snapshot{Data: page(12, 2), IsFetching: true},
			status:     StatusFetching,
			loader:     true,
			list:       true,
			pagination: true,
		},
		{
			name:   "empty",
			snap:   Snapshot{Data: page(0, 0)},
			status: StatusEmpty,
			list:   true,
		},
		{
			name:       "error hides list",
			snap:       Snapshot{Data: page(5, 2), IsError: true, Err: errors.New("down")},
			status:     StatusError,
			errShown:   true,
			pagination: true,
		},
		{
			name:   "idle",
			snap:   Snapshot{},
			status: StatusIdle,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Render(tt.snap)
			assert.Equal(t, tt.status, v.Status)
			assert.Equal(t, tt.loader, v.ShowLoader, "loader")
			assert.Equal(t, tt.errShown, v.ShowError, "error")
			assert.Equal(t, tt.list, v.ShowList, "list")
			assert.Equal(t, tt.pagination, v.ShowPagination, "pagination")
		})
	}
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "fetching", StatusFetching.String())
	assert.Equal(t, "unknown", Status(42).String())
}
