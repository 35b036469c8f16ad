package render

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// Style names used by the workbooks.
const (
	StyleHeader      = "header"
	StyleScore       = "score"
	StyleText        = "text"
	StyleTitle       = "title"
	StylePlaceholder = "placeholder"
)

// Style is a presentation style independent of the spreadsheet library.
type Style struct {
	Bold       bool
	Italic     bool
	FontColor  string
	FillColor  string
	NumFormat  string
	Horizontal string
	Wrap       bool
	Border     bool
}

// Palette is the named style table a workbook is rendered with. Bands are the
// fill colors cycled through comment groups.
type Palette struct {
	Styles     map[string]Style
	Bands      []string
	ChartColor string
}

// InstructorPalette is the default palette of the instructor workbook.
func InstructorPalette() Palette {
	return Palette{
		Styles: map[string]Style{
			StyleHeader:      {Bold: true, FillColor: "#D9E1F2", Horizontal: "center", Border: true},
			StyleScore:       {NumFormat: "0.00", Horizontal: "center", Border: true},
			StyleText:        {Wrap: true, Border: true},
			StyleTitle:       {Bold: true},
			StylePlaceholder: {Italic: true, FontColor: "#808080"},
		},
		Bands:      []string{"#E2EFDA", "#FCE4D6", "#DDEBF7", "#FFF2CC", "#EDEDED"},
		ChartColor: "#4472C4",
	}
}

// ModulePalette is the default palette of the module workbook.
func ModulePalette() Palette {
	p := InstructorPalette()
	p.Styles[StyleHeader] = Style{Bold: true, FillColor: "#FFE699", Horizontal: "center", Border: true}
	return p
}

func bandName(i int) string { return fmt.Sprintf("comment-band-%d", i) }

// register creates every palette style in f and returns their ids by name.
func register(f *excelize.File, p Palette) (map[string]int, error) {
	ids := make(map[string]int, len(p.Styles)+len(p.Bands))
	for name, st := range p.Styles {
		id, err := f.NewStyle(toExcelize(st))
		if err != nil {
			return nil, fmt.Errorf("style %s: %w", name, err)
		}
		ids[name] = id
	}
	for i, color := range p.Bands {
		id, err := f.NewStyle(toExcelize(Style{FillColor: color, Wrap: true, Border: true}))
		if err != nil {
			return nil, fmt.Errorf("style %s: %w", bandName(i), err)
		}
		ids[bandName(i)] = id
	}
	return ids, nil
}

func toExcelize(st Style) *excelize.Style {
	out := &excelize.Style{
		Font: &excelize.Font{Bold: st.Bold, Italic: st.Italic, Color: st.FontColor},
		Alignment: &excelize.Alignment{
			Horizontal: st.Horizontal,
			Vertical:   "center",
			WrapText:   st.Wrap,
		},
	}
	if st.FillColor != "" {
		out.Fill = excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{st.FillColor}}
	}
	if st.NumFormat != "" {
		format := st.NumFormat
		out.CustomNumFmt = &format
	}
	if st.Border {
		for _, side := range []string{"left", "right", "top", "bottom"} {
			out.Border = append(out.Border, excelize.Border{Type: side, Color: "#000000", Style: 1})
		}
	}
	return out
}
