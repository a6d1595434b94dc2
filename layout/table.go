package layout

import (
	"strconv"

	"github.com/flintweb/flint/css"
	"github.com/flintweb/flint/geom"
)

// CSS table layout: a grid is built by a single traversal of the
// table subtree, synthesizing anonymous rows where an intermediate
// level is missing, then column widths are derived from cell minima
// and maxima.
// CSS 2.1 §17 Tables.

const maxSpan = 1000

type tableCell struct {
	el       *Item
	colspan  int
	rowspan  int
	minWidth int
	maxWidth int
	borders  geom.Margins
}

type tableRow struct {
	el           *Item
	height       int
	top          int
	bottom       int
	borderTop    int
	borderBottom int
	cssHeight    css.Length
}

type tableColumn struct {
	minWidth    int
	maxWidth    int
	width       int
	left        int
	right       int
	borderLeft  int
	borderRight int
	cssWidth    css.Length
}

type tableGrid struct {
	rows     []tableRow
	cols     []tableColumn
	cells    [][]*tableCell // [row][col]; nil entries are span shadows
	captions []*Item
}

func (g *tableGrid) rowsCount() int { return len(g.rows) }
func (g *tableGrid) colsCount() int { return len(g.cols) }

// buildGrid interprets the table's children: row groups, rows and
// cells, wrapping stray cells in anonymous rows.
// CSS 2.1 §17.2.1 anonymous table objects.
func buildGrid(table *Item) *tableGrid {
	g := &tableGrid{}

	var pendingCells []*Item
	flushAnonymousRow := func() {
		if len(pendingCells) == 0 {
			return
		}
		g.beginRow(nil)
		for _, cell := range pendingCells {
			g.addCell(cell)
		}
		pendingCells = nil
	}

	var walk func(items []*Item)
	walk = func(items []*Item) {
		for _, child := range items {
			switch child.display {
			case css.DisplayTableRowGroup, css.DisplayTableHeaderGroup, css.DisplayTableFooterGroup:
				flushAnonymousRow()
				walk(child.Children)
			case css.DisplayTableRow:
				flushAnonymousRow()
				g.beginRow(child)
				for _, cell := range child.Children {
					if cell.display == css.DisplayTableCell {
						g.addCell(cell)
					}
				}
			case css.DisplayTableCell:
				pendingCells = append(pendingCells, child)
			case css.DisplayTableCaption:
				g.captions = append(g.captions, child)
			}
		}
	}
	walk(table.Children)
	flushAnonymousRow()

	g.finish()
	return g
}

func (g *tableGrid) beginRow(el *Item) {
	row := tableRow{el: el, cssHeight: css.PredefLength(0)}
	if el != nil {
		row.cssHeight = el.cssLength(css.PropHeight)
	}
	g.rows = append(g.rows, row)
	g.cells = append(g.cells, nil)
}

// addCell places a cell in the current row at the first column not
// shadowed by an earlier rowspan.
func (g *tableGrid) addCell(el *Item) {
	row := len(g.rows) - 1
	cell := &tableCell{
		el:      el,
		colspan: spanAttr(el, "colspan"),
		rowspan: spanAttr(el, "rowspan"),
	}
	cell.borders = el.Borders

	col := 0
	for {
		g.ensureCols(col + 1)
		for len(g.cells[row]) <= col {
			g.cells[row] = append(g.cells[row], nil)
		}
		if g.cells[row][col] == nil && !g.isShadowed(row, col) {
			break
		}
		col++
	}

	g.ensureCols(col + cell.colspan)
	for len(g.cells[row]) < col+cell.colspan {
		g.cells[row] = append(g.cells[row], nil)
	}
	g.cells[row][col] = cell
}

// isShadowed reports whether (row, col) is covered by a rowspan from
// an earlier row.
func (g *tableGrid) isShadowed(row, col int) bool {
	for r := 0; r < row; r++ {
		if col >= len(g.cells[r]) {
			continue
		}
		for c := 0; c <= col && c < len(g.cells[r]); c++ {
			cell := g.cells[r][c]
			if cell == nil {
				continue
			}
			if c+cell.colspan > col && r+cell.rowspan > row {
				return true
			}
		}
	}
	return false
}

func (g *tableGrid) ensureCols(n int) {
	for len(g.cols) < n {
		g.cols = append(g.cols, tableColumn{cssWidth: css.PredefLength(0)})
	}
}

// finish squares the cell matrix and adopts declared column widths
// from the cells.
func (g *tableGrid) finish() {
	for r := range g.cells {
		for len(g.cells[r]) < len(g.cols) {
			g.cells[r] = append(g.cells[r], nil)
		}
	}
	for r := range g.cells {
		for c, cell := range g.cells[r] {
			if cell == nil || cell.el == nil {
				continue
			}
			if w := cell.el.cssLength(css.PropWidth); !w.IsPredefined() && cell.colspan == 1 {
				g.cols[c].cssWidth = w
			}
		}
	}
}

func (g *tableGrid) cell(col, row int) *tableCell {
	if row < 0 || row >= len(g.cells) || col < 0 || col >= len(g.cells[row]) {
		return nil
	}
	return g.cells[row][col]
}

func spanAttr(el *Item, name string) int {
	if el.Style.Node == nil {
		return 1
	}
	v := el.Style.Node.GetAttribute(name)
	if v == "" {
		return 1
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return 1
	}
	if n > maxSpan {
		return maxSpan
	}
	return n
}

// distributeMinWidth spreads extra minimum width over a column span
// proportionally to the current minima.
func (g *tableGrid) distributeMinWidth(add, start, end int) {
	g.distribute(add, start, end, func(c *tableColumn) *int { return &c.minWidth })
}

// distributeMaxWidth is the maxima analogue.
func (g *tableGrid) distributeMaxWidth(add, start, end int) {
	g.distribute(add, start, end, func(c *tableColumn) *int { return &c.maxWidth })
}

func (g *tableGrid) distribute(add, start, end int, field func(*tableColumn) *int) {
	if start > end || end >= len(g.cols) {
		return
	}
	total := 0
	for c := start; c <= end; c++ {
		total += *field(&g.cols[c])
	}
	left := add
	for c := start; c <= end; c++ {
		f := field(&g.cols[c])
		var share int
		if total > 0 {
			share = add * *f / total
		} else {
			share = add / (end - start + 1)
		}
		if c == end {
			share = left
		}
		*f += share
		left -= share
	}
}

// calcTableWidth selects the used table width and assigns column
// widths.
// CSS 2.1 §17.5.2.2: with a declared width W the used width is
// max(W, sum of minima); with width auto it is min(available, sum of
// maxima) clamped below by the minima.
func (g *tableGrid) calcTableWidth(available int, isAuto bool) int {
	minTotal, maxTotal := 0, 0
	for c := range g.cols {
		minTotal += g.cols[c].minWidth
		maxTotal += g.cols[c].maxWidth
	}

	var used int
	if isAuto {
		used = min(available, maxTotal)
		if used < minTotal {
			used = minTotal
		}
	} else {
		used = max(available, minTotal)
	}

	switch {
	case used >= maxTotal:
		for c := range g.cols {
			g.cols[c].width = g.cols[c].maxWidth
		}
		if !isAuto && used > maxTotal {
			g.spreadExtra(used - maxTotal)
		} else if isAuto {
			used = maxTotal
			if used < minTotal {
				used = minTotal
			}
		}
	default:
		// Between the minima and maxima: distribute the surplus over
		// the columns proportionally to (max - min).
		surplus := used - minTotal
		flex := maxTotal - minTotal
		left := surplus
		for c := range g.cols {
			col := &g.cols[c]
			var share int
			if flex > 0 {
				share = surplus * (col.maxWidth - col.minWidth) / flex
			}
			if c == len(g.cols)-1 {
				share = left
			}
			col.width = col.minWidth + share
			left -= share
		}
	}

	total := 0
	for c := range g.cols {
		total += g.cols[c].width
	}
	return total
}

// spreadExtra widens every column evenly for a declared width larger
// than the maxima.
func (g *tableGrid) spreadExtra(extra int) {
	if len(g.cols) == 0 {
		return
	}
	per := extra / len(g.cols)
	for c := range g.cols {
		g.cols[c].width += per
	}
	g.cols[len(g.cols)-1].width += extra - per*len(g.cols)
}

// calcHorizontalPositions assigns column left/right edges with
// border-spacing or collapsed-border accounting.
func (g *tableGrid) calcHorizontalPositions(borders geom.Margins, collapse int, spacingX int) {
	if collapse == css.BorderCollapseSeparate {
		left := spacingX
		for c := range g.cols {
			g.cols[c].left = left
			g.cols[c].right = left + g.cols[c].width
			left = g.cols[c].right + spacingX
		}
		return
	}
	left := 0
	if len(g.cols) > 0 {
		left -= min(borders.Left, g.cols[0].borderLeft)
	}
	for c := range g.cols {
		if c > 0 {
			left -= min(g.cols[c].borderLeft, g.cols[c-1].borderRight)
		}
		g.cols[c].left = left
		g.cols[c].right = left + g.cols[c].width
		left = g.cols[c].right
	}
}

// calcRowsHeight stretches rows to a minimum table height and applies
// declared row heights.
func (g *tableGrid) calcRowsHeight(minHeight, spacingY int) {
	total := spacingY
	for r := range g.rows {
		row := &g.rows[r]
		if !row.cssHeight.IsPredefined() && row.el != nil {
			h := row.el.calcPercent(row.cssHeight, 0)
			if h > row.height {
				row.height = h
			}
		}
		total += row.height + spacingY
	}
	if minHeight > total && len(g.rows) > 0 {
		extra := minHeight - total
		per := extra / len(g.rows)
		for r := range g.rows {
			g.rows[r].height += per
		}
		g.rows[len(g.rows)-1].height += extra - per*len(g.rows)
	}
}

// calcVerticalPositions assigns row top/bottom edges.
func (g *tableGrid) calcVerticalPositions(borders geom.Margins, collapse int, spacingY int) {
	if collapse == css.BorderCollapseSeparate {
		top := spacingY
		for r := range g.rows {
			g.rows[r].top = top
			g.rows[r].bottom = top + g.rows[r].height
			top = g.rows[r].bottom + spacingY
		}
		return
	}
	top := 0
	if len(g.rows) > 0 {
		top -= min(borders.Top, g.rows[0].borderTop)
	}
	for r := range g.rows {
		if r > 0 {
			top -= min(g.rows[r].borderTop, g.rows[r-1].borderBottom)
		}
		g.rows[r].top = top
		g.rows[r].bottom = top + g.rows[r].height
		top = g.rows[r].bottom
	}
}

// captureCollapsedBorders records per-column and per-row maximum
// border widths for the collapse accounting: each inter-cell edge
// contributes the larger of the adjacent borders.
// CSS 2.1 §17.6.2.
func (g *tableGrid) captureCollapsedBorders() {
	for r := range g.cells {
		for c, cell := range g.cells[r] {
			if cell == nil || cell.el == nil {
				continue
			}
			g.cols[c].borderLeft = max(g.cols[c].borderLeft, cell.borders.Left)
			endCol := min(c+cell.colspan-1, len(g.cols)-1)
			g.cols[endCol].borderRight = max(g.cols[endCol].borderRight, cell.borders.Right)
			g.rows[r].borderTop = max(g.rows[r].borderTop, cell.borders.Top)
			endRow := min(r+cell.rowspan-1, len(g.rows)-1)
			g.rows[endRow].borderBottom = max(g.rows[endRow].borderBottom, cell.borders.Bottom)
		}
	}
}

// renderTable lays out a table element.
// CSS 2.1 §17.5.2 table width algorithms.
func (it *Item) renderTable(x, y, maxWidth int, _ bool) int {
	if it.grid == nil {
		it.grid = buildGrid(it)
	}
	g := it.grid

	parentWidth := maxWidth
	it.calcOutlines(parentWidth)

	it.Pos = geom.Position{X: x + it.cmLeft(), Y: y + it.cmTop()}

	blockWidth := 0
	haveBlockWidth := false
	if w := it.cssLength(css.PropWidth); !w.IsPredefined() {
		blockWidth = it.calcWidth(parentWidth) - it.Padding.Width() - it.Borders.Width()
		haveBlockWidth = true
		maxWidth = blockWidth
	} else if maxWidth > 0 {
		maxWidth -= it.cmLeft() + it.cmRight()
	}

	collapse := it.Style.Keyword(css.PropBorderCollapse)
	spacingX := it.calcPercent(it.cssLength(css.PropBorderSpacingX), 0)
	spacingY := it.calcPercent(it.cssLength(css.PropBorderSpacingY), 0)
	if collapse == css.BorderCollapseCollapse {
		spacingX, spacingY = 0, 0
	}

	// Measure cells: min content width at width 1, max without breaks.
	for r := 0; r < g.rowsCount(); r++ {
		for c := 0; c < g.colsCount(); c++ {
			cell := g.cell(c, r)
			if cell == nil || cell.el == nil {
				continue
			}
			cell.el.calcOutlines(maxWidth)
			cell.borders = cell.el.Borders
			if cw := g.cols[c].cssWidth; !cw.IsPredefined() && cw.Unit != css.UnitPercent && cell.colspan == 1 {
				cssW := cell.el.calcPercent(cw, blockWidth)
				elW := cell.el.Render(0, 0, cssW, false)
				cell.minWidth = max(cssW, elW)
				cell.maxWidth = cell.minWidth
			} else {
				cell.minWidth = cell.el.Render(0, 0, 1, false)
				cell.maxWidth = cell.el.Render(0, 0, max(maxWidth, 1), false)
			}
		}
	}
	if collapse == css.BorderCollapseCollapse {
		g.captureCollapsedBorders()
	}

	widthSpacing := 0
	if collapse == css.BorderCollapseSeparate {
		widthSpacing = spacingX * (g.colsCount() + 1)
	} else if g.colsCount() > 0 {
		widthSpacing -= min(it.Borders.Left, g.cols[0].borderLeft)
		widthSpacing -= min(it.Borders.Right, g.cols[g.colsCount()-1].borderRight)
		for c := 1; c < g.colsCount(); c++ {
			widthSpacing -= min(g.cols[c].borderLeft, g.cols[c-1].borderRight)
		}
	}

	// Single-column min/max from the unspanned cells.
	for c := 0; c < g.colsCount(); c++ {
		g.cols[c].minWidth = 0
		g.cols[c].maxWidth = 0
		for r := 0; r < g.rowsCount(); r++ {
			cell := g.cell(c, r)
			if cell != nil && cell.el != nil && cell.colspan <= 1 {
				g.cols[c].minWidth = max(g.cols[c].minWidth, cell.minWidth)
				g.cols[c].maxWidth = max(g.cols[c].maxWidth, cell.maxWidth)
			}
		}
	}

	// Spanned cells widen their columns proportionally.
	for c := 0; c < g.colsCount(); c++ {
		for r := 0; r < g.rowsCount(); r++ {
			cell := g.cell(c, r)
			if cell == nil || cell.el == nil || cell.colspan <= 1 {
				continue
			}
			end := min(c+cell.colspan-1, g.colsCount()-1)
			minTotal, maxTotal := 0, 0
			for c2 := c; c2 <= end; c2++ {
				minTotal += g.cols[c2].minWidth
				maxTotal += g.cols[c2].maxWidth
			}
			if minTotal < cell.minWidth {
				g.distributeMinWidth(cell.minWidth-minTotal, c, end)
			}
			if maxTotal < cell.maxWidth {
				g.distributeMaxWidth(cell.maxWidth-maxTotal, c, end)
			}
		}
	}

	var tableWidth int
	if haveBlockWidth {
		tableWidth = g.calcTableWidth(blockWidth-widthSpacing, false)
	} else {
		tableWidth = g.calcTableWidth(maxWidth-widthSpacing, true)
	}
	tableWidth += widthSpacing
	g.calcHorizontalPositions(it.Borders, collapse, spacingX)

	// Render cells at their final widths; single-row cells set the
	// row height.
	rowSpanFound := false
	for r := 0; r < g.rowsCount(); r++ {
		g.rows[r].height = 0
		for c := 0; c < g.colsCount(); c++ {
			cell := g.cell(c, r)
			if cell == nil || cell.el == nil {
				continue
			}
			spanCol := min(c+cell.colspan-1, g.colsCount()-1)
			cellWidth := g.cols[spanCol].right - g.cols[c].left
			cell.el.Render(g.cols[c].left, 0, cellWidth, false)
			cell.el.Pos.Width = cellWidth - cell.el.cmLeft() - cell.el.cmRight()
			if cell.rowspan <= 1 {
				g.rows[r].height = max(g.rows[r].height, cell.el.Height())
			} else {
				rowSpanFound = true
			}
		}
	}

	// Rowspanned cells expand the last row of their span.
	if rowSpanFound {
		for c := 0; c < g.colsCount(); c++ {
			for r := 0; r < g.rowsCount(); r++ {
				cell := g.cell(c, r)
				if cell == nil || cell.el == nil || cell.rowspan <= 1 {
					continue
				}
				spanRow := min(r+cell.rowspan-1, g.rowsCount()-1)
				h := 0
				for i := r; i <= spanRow; i++ {
					h += g.rows[i].height
				}
				if h < cell.el.Height() {
					g.rows[spanRow].height += cell.el.Height() - h
				}
			}
		}
	}

	heightSpacing := 0
	if collapse == css.BorderCollapseSeparate {
		heightSpacing = spacingY * (g.rowsCount() + 1)
	} else if g.rowsCount() > 0 {
		heightSpacing -= min(it.Borders.Top, g.rows[0].borderTop)
		heightSpacing -= min(it.Borders.Bottom, g.rows[g.rowsCount()-1].borderBottom)
		for r := 1; r < g.rowsCount(); r++ {
			heightSpacing -= min(g.rows[r].borderTop, g.rows[r-1].borderBottom)
		}
	}

	blockHeight := 0
	if h, ok := it.predefinedHeight(); ok {
		blockHeight = h - it.Padding.Height() - it.Borders.Height()
	}
	minTableHeight := max(blockHeight, it.minHeightPx())

	g.calcRowsHeight(minTableHeight-heightSpacing, spacingY)
	g.calcVerticalPositions(it.Borders, collapse, spacingY)

	tableHeight := 0
	for c := 0; c < g.colsCount(); c++ {
		for r := 0; r < g.rowsCount(); r++ {
			cell := g.cell(c, r)
			if cell == nil || cell.el == nil {
				continue
			}
			spanRow := min(r+cell.rowspan-1, g.rowsCount()-1)
			cell.el.Pos.Y = g.rows[r].top + cell.el.cmTop()
			cell.el.Pos.Height = g.rows[spanRow].bottom - g.rows[r].top -
				cell.el.cmTop() - cell.el.cmBottom()
			tableHeight = max(tableHeight, g.rows[spanRow].bottom)
			cell.el.applyVerticalAlign()
		}
	}

	if collapse == css.BorderCollapseCollapse {
		if g.rowsCount() > 0 {
			tableHeight -= min(it.Borders.Bottom, g.rows[g.rowsCount()-1].borderBottom)
		}
	} else {
		tableHeight += spacingY
	}

	// Captions stack above the grid at full table width.
	captionHeight := 0
	for _, caption := range g.captions {
		caption.Render(0, captionHeight, tableWidth, false)
		captionHeight += caption.Height()
	}
	if captionHeight > 0 {
		for r := 0; r < g.rowsCount(); r++ {
			for c := 0; c < g.colsCount(); c++ {
				if cell := g.cell(c, r); cell != nil && cell.el != nil {
					cell.el.Pos.Y += captionHeight
				}
			}
		}
		tableHeight += captionHeight
	}

	// The grid positioned cells relative to the table; give rows their
	// strips and re-express each cell relative to its actual parent so
	// document placement stays consistent.
	for r := 0; r < g.rowsCount(); r++ {
		if row := g.rows[r].el; row != nil {
			row.Pos = geom.Position{Y: g.rows[r].top + captionHeight, Width: tableWidth, Height: g.rows[r].height}
		}
	}
	for r := 0; r < g.rowsCount(); r++ {
		for c := 0; c < g.colsCount(); c++ {
			cell := g.cell(c, r)
			if cell == nil || cell.el == nil {
				continue
			}
			for p := cell.el.Parent; p != nil && p != it; p = p.Parent {
				cell.el.Pos.X -= p.Pos.X
				cell.el.Pos.Y -= p.Pos.Y
			}
		}
	}

	it.Pos.Width = tableWidth
	it.calcAutoMargins(parentWidth)

	it.Pos.X = x + it.cmLeft()
	it.Pos.Y = y + it.cmTop()
	it.Pos.Width = tableWidth
	it.Pos.Height = tableHeight

	it.renderedWidth = tableWidth + it.cmLeft() + it.cmRight()
	return it.renderedWidth
}
