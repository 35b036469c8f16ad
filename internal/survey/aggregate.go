package survey

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Average is a mean over the scored answers of one question. It is undefined
// when no answer could be scored and then serializes as JSON null.
type Average struct {
	Value float64
	Count int
}

// Valid reports whether at least one answer contributed.
func (a Average) Valid() bool { return a.Count > 0 }

type averageJSON struct {
	Value float64 `json:"value"`
	Count int     `json:"count"`
}

func (a Average) MarshalJSON() ([]byte, error) {
	if !a.Valid() {
		return []byte("null"), nil
	}
	return json.Marshal(averageJSON{Value: a.Value, Count: a.Count})
}

func (a *Average) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*a = Average{}
		return nil
	}
	var v averageJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*a = Average{Value: v.Value, Count: v.Count}
	return nil
}

// AggregateRow pairs a group's average for one question with a reference average.
type AggregateRow struct {
	Question  string  `json:"question"`
	Group     Average `json:"group"`
	Reference Average `json:"reference"`
}

// Group is a partition of a table under one key.
type Group struct {
	Key   string
	Table *Table
}

// GroupScores is the aggregate table of one group.
type GroupScores struct {
	Key     string
	Records int
	Rows    []AggregateRow
}

// Means returns one average per question over every record of t.
func Means(t *Table, questions []string) []Average {
	sums := make([]float64, len(questions))
	out := make([]Average, len(questions))
	if t != nil {
		for _, r := range t.Records {
			for i, q := range questions {
				if v, ok := Encode(r.Get(q)); ok {
					sums[i] += float64(v)
					out[i].Count++
				}
			}
		}
	}
	for i := range out {
		if out[i].Count > 0 {
			out[i].Value = sums[i] / float64(out[i].Count)
		}
	}
	return out
}

// Rows zips questions with group and reference averages. A nil reference
// leaves every reference undefined.
func Rows(questions []string, group, reference []Average) []AggregateRow {
	rows := make([]AggregateRow, len(questions))
	for i, q := range questions {
		rows[i] = AggregateRow{Question: q, Group: group[i]}
		if i < len(reference) {
			rows[i].Reference = reference[i]
		}
	}
	return rows
}

// GroupBy partitions t by the trimmed key of each record, keeping groups in
// first-seen order. Records with a blank key belong to no group.
func GroupBy(t *Table, key func(Record) string) []Group {
	if t == nil {
		return nil
	}
	var groups []Group
	pos := make(map[string]int)
	for _, r := range t.Records {
		k := strings.TrimSpace(key(r))
		if k == "" {
			continue
		}
		i, ok := pos[k]
		if !ok {
			i = len(groups)
			pos[k] = i
			groups = append(groups, Group{Key: k, Table: &Table{Columns: t.Columns}})
		}
		groups[i].Table.Records = append(groups[i].Table.Records, r)
	}
	return groups
}

// Aggregate scores every group of t against a reference computed once over
// all of t, so each group is compared with the same filtered population.
func Aggregate(t *Table, questions []string, key func(Record) string) []GroupScores {
	reference := Means(t, questions)
	groups := GroupBy(t, key)
	out := make([]GroupScores, 0, len(groups))
	for _, g := range groups {
		out = append(out, GroupScores{
			Key:     g.Key,
			Records: g.Table.Len(),
			Rows:    Rows(questions, Means(g.Table, questions), reference),
		})
	}
	return out
}

// ByColumn returns a key extractor reading the named column.
func ByColumn(column string) func(Record) string {
	return func(r Record) string { return r.Get(column) }
}
