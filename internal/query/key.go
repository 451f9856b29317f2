// Package query caches note pages by (search, page) key.
package query

import (
	"strconv"
	"strings"
)

// Key identifies one cacheable page request.
type Key struct {
	Search string
	Page   int
}

func (k Key) String() string {
	return "notes/" + strconv.Quote(k.Search) + "/" + strconv.Itoa(k.Page)
}

// Prefix selects the keys an invalidation applies to.
type Prefix struct {
	search string
	all    bool
}

// All matches every key.
var All = Prefix{all: true}

// ForSearch matches every page of one search text.
func ForSearch(search string) Prefix {
	return Prefix{search: search}
}

// Matches reports whether k falls under p.
func (p Prefix) Matches(k Key) bool {
	return p.all || k.Search == p.search
}

func (p Prefix) String() string {
	if p.all {
		return "notes/*"
	}
	return "notes/" + strconv.Quote(p.search) + "/*"
}

// flightKey is the singleflight key: fetches from different epochs never
// share a call.
func flightKey(k Key, epoch uint64) string {
	var b strings.Builder
	b.WriteString(strconv.FormatUint(epoch, 10))
	b.WriteByte('|')
	b.WriteString(k.String())
	return b.String()
}
