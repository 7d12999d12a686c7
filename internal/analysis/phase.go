package analysis

import (
	"strings"

	"github.com/san-kum/blochsim/internal/dynamo"
)

type Point struct{ X, Y float64 }

// Portrait is a projection of a trajectory onto two state components.
type Portrait struct {
	XIndex, YIndex int
	Points         []Point
}

// Project returns nil if either index is out of range for the states.
func Project(states []dynamo.State, xIdx, yIdx int) *Portrait {
	p := &Portrait{XIndex: xIdx, YIndex: yIdx, Points: make([]Point, 0, len(states))}
	for _, s := range states {
		if xIdx >= len(s) || yIdx >= len(s) || xIdx < 0 || yIdx < 0 {
			return nil
		}
		p.Points = append(p.Points, Point{X: s[xIdx], Y: s[yIdx]})
	}
	return p
}

// ASCII plots the portrait on the square [-1, 1]², which holds every
// Bloch vector component. Points outside are dropped.
func (p *Portrait) ASCII(width, height int) string {
	if p == nil || len(p.Points) == 0 || width < 3 || height < 3 {
		return ""
	}

	grid := make([][]rune, height)
	for row := range grid {
		grid[row] = []rune(strings.Repeat(" ", width))
	}

	col := func(x float64) int { return int((x + 1) / 2 * float64(width-1)) }
	row := func(y float64) int { return height - 1 - int((y+1)/2*float64(height-1)) }

	midCol, midRow := col(0), row(0)
	for r := range grid {
		grid[r][midCol] = '│'
	}
	for c := range grid[midRow] {
		grid[midRow][c] = '─'
	}
	grid[midRow][midCol] = '┼'

	for _, pt := range p.Points {
		if pt.X < -1 || pt.X > 1 || pt.Y < -1 || pt.Y > 1 {
			continue
		}
		grid[row(pt.Y)][col(pt.X)] = '•'
	}

	var sb strings.Builder
	for _, r := range grid {
		sb.WriteString(string(r))
		sb.WriteRune('\n')
	}
	return sb.String()
}
