package pipeline

// A4 page geometry and tile grid in millimeters.
const (
	pageWidthMm  = 210.0
	pageHeightMm = 297.0
	marginMm     = 20.0
	tileMm       = 35.0
	gutterMm     = 10.0
)

// TilePosition is where one tile goes, in millimeters from the page's top-left corner.
type TilePosition struct {
	Page    int // 1-based
	X, Y    float64
	NewPage bool // true when this tile opens a page
}

// TileLayout places fixed-size tiles left to right, top to bottom, opening a
// new page when the next row would cross the bottom margin.
type TileLayout struct {
	PageWidth, PageHeight float64
	Margin, Tile, Gutter  float64

	page int
	x, y float64
}

// NewTileLayout returns the A4 layout used for paginated documents.
func NewTileLayout() *TileLayout {
	return &TileLayout{
		PageWidth:  pageWidthMm,
		PageHeight: pageHeightMm,
		Margin:     marginMm,
		Tile:       tileMm,
		Gutter:     gutterMm,
	}
}

// Next returns the position for the next tile.
func (l *TileLayout) Next() TilePosition {
	step := l.Tile + l.Gutter
	switch {
	case l.page == 0:
		l.openPage()
	case l.x+step+l.Tile > l.PageWidth-l.Margin:
		l.x = l.Margin
		l.y += step
		if l.y+l.Tile > l.PageHeight-l.Margin {
			l.openPage()
		} else {
			return TilePosition{Page: l.page, X: l.x, Y: l.y}
		}
	default:
		l.x += step
		return TilePosition{Page: l.page, X: l.x, Y: l.y}
	}
	return TilePosition{Page: l.page, X: l.x, Y: l.y, NewPage: true}
}

// Pages reports how many pages have been opened.
func (l *TileLayout) Pages() int { return l.page }

// PerPage is the number of tiles that fit on one page.
func (l *TileLayout) PerPage() int {
	step := l.Tile + l.Gutter
	cols := int((l.PageWidth-2*l.Margin-l.Tile)/step) + 1
	rows := int((l.PageHeight-2*l.Margin-l.Tile)/step) + 1
	return cols * rows
}

func (l *TileLayout) openPage() {
	l.page++
	l.x, l.y = l.Margin, l.Margin
}
