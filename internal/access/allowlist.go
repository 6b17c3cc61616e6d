// Package access decides which Telegram users may talk to the bot.
package access

import (
	"sort"
	"strconv"
	"strings"
)

// AllowList is an immutable set of Telegram user IDs.
type AllowList struct {
	ids map[int64]struct{}
}

// ParseAllowList builds an AllowList from a comma-separated list of user IDs.
// Entries that are not base-10 integers are dropped without error.
func ParseAllowList(raw string) AllowList {
	ids := make(map[int64]struct{})

	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			continue
		}

		ids[id] = struct{}{}
	}

	return AllowList{ids: ids}
}

// NewAllowList builds an AllowList from already parsed IDs.
func NewAllowList(ids ...int64) AllowList {
	set := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return AllowList{ids: set}
}

// Contains reports whether id is in the list.
func (l AllowList) Contains(id int64) bool {
	_, ok := l.ids[id]
	return ok
}

// Len returns the number of distinct IDs.
func (l AllowList) Len() int {
	return len(l.ids)
}

// IDs returns the IDs in ascending order.
func (l AllowList) IDs() []int64 {
	out := make([]int64, 0, len(l.ids))
	for id := range l.ids {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
