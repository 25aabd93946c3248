package parsers

import (
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

// tableLayout controls how positioned text runs are clustered into rows and
// cells. PDF statements carry no table structure, only placed text, so the
// extractor reconstructs the grid from coordinates.
type tableLayout struct {
	// rowTolerance is the maximum vertical distance between two runs that
	// still belong to the same row.
	rowTolerance float64
	// cellGapFactor scales the font size into the minimum horizontal gap
	// that starts a new cell.
	cellGapFactor float64
	// minCellGap is the floor for the cell gap regardless of font size.
	minCellGap float64
}

func defaultTableLayout() tableLayout {
	return tableLayout{
		rowTolerance:  2.0,
		cellGapFactor: 1.5,
		minCellGap:    6.0,
	}
}

// extractDocumentRows extracts at most one table per page and concatenates
// all table rows in page order. Pages with no detectable table contribute
// nothing. Row order within a page is top to bottom.
func extractDocumentRows(path string, layout tableLayout) ([][]string, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var rows [][]string
	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		rows = append(rows, extractPageTable(page.Content().Text, layout)...)
	}
	return rows, nil
}

// extractPageTable clusters a page's text runs into a table. Runs are
// grouped into rows by vertical position, then into cells by horizontal
// gaps. Only rows with at least two cells count as table rows; a page
// without any such row has no table.
func extractPageTable(texts []pdf.Text, layout tableLayout) [][]string {
	if len(texts) == 0 {
		return nil
	}

	// PDF Y coordinates grow upward; sort top-down, then left-right.
	sorted := make([]pdf.Text, len(texts))
	copy(sorted, texts)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Y != sorted[j].Y {
			return sorted[i].Y > sorted[j].Y
		}
		return sorted[i].X < sorted[j].X
	})

	var rows [][]string
	var line []pdf.Text
	lineY := sorted[0].Y
	flush := func() {
		if len(line) == 0 {
			return
		}
		cells := splitCells(line, layout)
		if len(cells) >= 2 {
			rows = append(rows, cells)
		}
		line = line[:0]
	}

	for _, t := range sorted {
		if lineY-t.Y > layout.rowTolerance {
			flush()
			lineY = t.Y
		}
		line = append(line, t)
	}
	flush()

	return rows
}

// splitCells merges a row's text runs into cells. A new cell starts where
// the horizontal gap to the previous run exceeds the layout's cell gap.
func splitCells(line []pdf.Text, layout tableLayout) []string {
	sort.SliceStable(line, func(i, j int) bool { return line[i].X < line[j].X })

	var cells []string
	var cell strings.Builder
	prevEnd := line[0].X

	for i, t := range line {
		gap := layout.minCellGap
		if scaled := t.FontSize * layout.cellGapFactor; scaled > gap {
			gap = scaled
		}
		if i > 0 && t.X-prevEnd > gap {
			cells = append(cells, strings.TrimSpace(cell.String()))
			cell.Reset()
		}
		cell.WriteString(t.S)
		end := t.X + t.W
		if end > prevEnd {
			prevEnd = end
		}
	}
	cells = append(cells, strings.TrimSpace(cell.String()))
	return cells
}
