package pipeline

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTileLayout(t *testing.T) {
	l := NewTileLayout()
	require.Equal(t, 20, l.PerPage())

	first := l.Next()
	require.Equal(t, TilePosition{Page: 1, X: 20, Y: 20, NewPage: true}, first)

	second := l.Next()
	require.Equal(t, TilePosition{Page: 1, X: 65, Y: 20}, second)

	l.Next()
	fourth := l.Next()
	require.Equal(t, TilePosition{Page: 1, X: 155, Y: 20}, fourth)

	wrapped := l.Next()
	require.Equal(t, TilePosition{Page: 1, X: 20, Y: 65}, wrapped)

	for i := 6; i <= 20; i++ {
		pos := l.Next()
		require.Equal(t, 1, pos.Page)
		require.False(t, pos.NewPage)
		require.LessOrEqual(t, pos.X+l.Tile, l.PageWidth-l.Margin)
		require.LessOrEqual(t, pos.Y+l.Tile, l.PageHeight-l.Margin)
	}

	next := l.Next()
	require.Equal(t, TilePosition{Page: 2, X: 20, Y: 20, NewPage: true}, next)
	require.Equal(t, 2, l.Pages())
}
