package survey

// Record is one survey response keyed by column name.
type Record map[string]string

// Get returns the raw cell for column, or "" when the column is unset or absent.
func (r Record) Get(column string) string {
	if column == "" {
		return ""
	}
	return r[column]
}

// Table is an immutable set of survey records with their column order.
// Components that narrow a table return a new Table sharing the record values;
// no component mutates a table it did not build.
type Table struct {
	Columns []string
	Records []Record
}

// NewTable builds a table from a header and rows of cells aligned with it.
// Short rows are padded with empty cells and extra cells are ignored.
func NewTable(columns []string, rows [][]string) *Table {
	cols := make([]string, len(columns))
	copy(cols, columns)

	records := make([]Record, 0, len(rows))
	for _, row := range rows {
		rec := make(Record, len(cols))
		for i, c := range cols {
			if i < len(row) {
				rec[c] = row[i]
			} else {
				rec[c] = ""
			}
		}
		records = append(records, rec)
	}
	return &Table{Columns: cols, Records: records}
}

// Len returns the number of records; a nil table has none.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Records)
}

// HasColumn reports whether the table carries the named column.
func (t *Table) HasColumn(name string) bool {
	if t == nil || name == "" {
		return false
	}
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Where returns a new table holding the records that satisfy keep, in order.
func (t *Table) Where(keep func(Record) bool) *Table {
	out := &Table{Columns: t.Columns, Records: make([]Record, 0, len(t.Records))}
	for _, r := range t.Records {
		if keep(r) {
			out.Records = append(out.Records, r)
		}
	}
	return out
}
