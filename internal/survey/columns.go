package survey

import (
	"strings"
)

// Strategy selects how question columns are discovered.
type Strategy string

const (
	// StrategyCanonical matches columns against a configured question list.
	StrategyCanonical Strategy = "canonical"
	// StrategyPositional slices a fixed index range of the header. Any upstream
	// column insertion shifts the slice, so it is kept only for old exports.
	StrategyPositional Strategy = "positional"
)

// QuestionSpec configures question column discovery.
type QuestionSpec struct {
	Strategy  Strategy `yaml:"strategy"`
	Start     int      `yaml:"start"`
	End       int      `yaml:"end"`
	Canonical []string `yaml:"canonical"`
	Exclude   []string `yaml:"exclude"`
}

// ColumnSpec locates one auxiliary column: by exact name first, then by the
// first header containing any marker (case-insensitive).
type ColumnSpec struct {
	Name    string   `yaml:"name"`
	Markers []string `yaml:"markers"`
}

// Layout describes where the semantic fields of a dataset live.
type Layout struct {
	Questions  QuestionSpec `yaml:"questions"`
	Instructor ColumnSpec   `yaml:"instructor"`
	Level      ColumnSpec   `yaml:"level"`
	Module     ColumnSpec   `yaml:"module"`
	Date       ColumnSpec   `yaml:"date"`
	Class      ColumnSpec   `yaml:"class"`
	Comment    ColumnSpec   `yaml:"comment"`
}

// Columns holds resolved table column names. An empty name means the column
// was not found and anything depending on it is inactive.
type Columns struct {
	Questions  []string
	Instructor string
	Level      string
	Module     string
	Date       string
	Class      string
	Comment    string
}

var quoteReplacer = strings.NewReplacer(`"`, "", `'`, "", "“", "", "”", "", "‘", "", "’", "")

// NormalizeName trims whitespace and strips quote characters from a header.
func NormalizeName(name string) string {
	return strings.TrimSpace(quoteReplacer.Replace(strings.TrimSpace(name)))
}

// Resolve maps a layout onto the header of a concrete table.
func Resolve(header []string, layout Layout) Columns {
	index := make(map[string]string, len(header))
	for _, h := range header {
		n := NormalizeName(h)
		if _, seen := index[n]; !seen {
			index[n] = h
		}
	}

	return Columns{
		Questions:  resolveQuestions(header, index, layout.Questions),
		Instructor: resolveColumn(header, index, layout.Instructor),
		Level:      resolveColumn(header, index, layout.Level),
		Module:     resolveColumn(header, index, layout.Module),
		Date:       resolveColumn(header, index, layout.Date),
		Class:      resolveColumn(header, index, layout.Class),
		Comment:    resolveColumn(header, index, layout.Comment),
	}
}

func resolveQuestions(header []string, index map[string]string, spec QuestionSpec) []string {
	strategy := spec.Strategy
	if strategy == "" {
		strategy = StrategyPositional
		if len(spec.Canonical) > 0 {
			strategy = StrategyCanonical
		}
	}

	var candidates []string
	switch strategy {
	case StrategyCanonical:
		for _, name := range spec.Canonical {
			if col, ok := index[NormalizeName(name)]; ok {
				candidates = append(candidates, col)
			}
		}
	case StrategyPositional:
		start, end := spec.Start, spec.End
		if start < 0 {
			start = 0
		}
		if end > len(header) {
			end = len(header)
		}
		if start < end {
			candidates = header[start:end]
		}
	}

	excluded := make(map[string]bool, len(spec.Exclude))
	for _, name := range spec.Exclude {
		excluded[NormalizeName(name)] = true
	}

	seen := make(map[string]bool, len(candidates))
	out := make([]string, 0, len(candidates))
	for _, col := range candidates {
		n := NormalizeName(col)
		if seen[n] || excluded[n] {
			continue
		}
		seen[n] = true
		out = append(out, col)
	}
	return out
}

func resolveColumn(header []string, index map[string]string, spec ColumnSpec) string {
	if spec.Name != "" {
		if col, ok := index[NormalizeName(spec.Name)]; ok {
			return col
		}
	}
	for _, h := range header {
		lower := strings.ToLower(NormalizeName(h))
		for _, m := range spec.Markers {
			if m != "" && strings.Contains(lower, strings.ToLower(m)) {
				return h
			}
		}
	}
	return ""
}
