package survey

import (
	"sort"
	"strings"
)

// Unspecified labels comments whose secondary grouping value is blank.
const Unspecified = "Unspecified"

// CommentGroup holds the comments sharing one secondary key.
type CommentGroup struct {
	Key      string   `json:"key"`
	Comments []string `json:"comments"`
}

// Comments returns the trimmed, non-blank comments of t in record order.
// An unresolved comment column yields none.
func Comments(t *Table, commentCol string) []string {
	out := []string{}
	if t == nil || commentCol == "" {
		return out
	}
	for _, r := range t.Records {
		if c := strings.TrimSpace(r.Get(commentCol)); c != "" {
			out = append(out, c)
		}
	}
	return out
}

// GroupedComments buckets the non-blank comments of t by the trimmed value of
// groupCol. Buckets are sorted by key; "Unspecified" gets no special position.
// With no groupCol every comment lands in a single Unspecified bucket.
func GroupedComments(t *Table, commentCol, groupCol string) []CommentGroup {
	if t == nil || commentCol == "" {
		return []CommentGroup{}
	}

	buckets := make(map[string][]string)
	for _, r := range t.Records {
		c := strings.TrimSpace(r.Get(commentCol))
		if c == "" {
			continue
		}
		key := strings.TrimSpace(r.Get(groupCol))
		if key == "" {
			key = Unspecified
		}
		buckets[key] = append(buckets[key], c)
	}

	out := make([]CommentGroup, 0, len(buckets))
	for k, cs := range buckets {
		out = append(out, CommentGroup{Key: k, Comments: cs})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}
