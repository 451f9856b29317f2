// Package checksum computes entity tags for notes.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"

	"github.com/starford/notehub/internal/models"
)

// Note returns the hex-encoded SHA-256 digest of the note's mutable fields.
// It changes whenever title, content, tag or update time change.
func Note(n *models.Note) string {
	h := sha256.New()
	for _, part := range []string{
		n.ID,
		n.Title,
		n.Content,
		string(n.Tag),
		strconv.FormatInt(n.UpdatedAt.UnixNano(), 10),
	} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
