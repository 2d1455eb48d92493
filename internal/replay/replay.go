// Package replay records an execution pass by pass and draws it on a
// terminal screen.
package replay

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"

	"anttrail/internal/ant"
	"anttrail/internal/grid"
	"anttrail/internal/interp"
)

type Frame struct {
	Pass          int
	MovesMade     int
	FoodEaten     int
	FoodRemaining int
	Position      ant.Position
	Cells         [][]grid.Cell
}

// Recorder is an interp.Observer keeping one frame for the starting state
// and one after every pass.
type Recorder struct {
	frames []Frame
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) BeforePass(e interp.PassEvent) {
	if len(r.frames) == 0 {
		r.frames = append(r.frames, frameOf(e, 0))
	}
}

func (r *Recorder) AfterPass(e interp.PassEvent) {
	r.frames = append(r.frames, frameOf(e, e.Pass))
}

func (r *Recorder) Frames() []Frame {
	return r.frames
}

func frameOf(e interp.PassEvent, pass int) Frame {
	f := Frame{
		Pass:          pass,
		MovesMade:     e.MovesMade,
		FoodEaten:     e.FoodEaten,
		FoodRemaining: e.FoodRemaining,
		Position:      e.Position,
	}
	if e.Ant != nil {
		f.Cells = e.Ant.Grid().Layout()
	}
	return f
}

func HeadingRune(h ant.Heading) rune {
	switch h {
	case ant.North:
		return '^'
	case ant.East:
		return '>'
	case ant.South:
		return 'v'
	case ant.West:
		return '<'
	default:
		return '@'
	}
}

// Text renders a frame as plain text with the ant drawn over its cell.
func (f Frame) Text() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "pass=%d moves=%d eaten=%d remaining=%d at %s\n",
		f.Pass, f.MovesMade, f.FoodEaten, f.FoodRemaining, f.Position)
	for i, row := range f.Cells {
		for j, cell := range row {
			if i == f.Position.Row && j == f.Position.Column {
				sb.WriteRune(HeadingRune(f.Position.Heading))
				continue
			}
			sb.WriteRune(cell.Rune())
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

var (
	styleEmpty  = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleFood   = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleAnt    = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	styleStatus = tcell.StyleDefault.Foreground(tcell.ColorYellow)
)

// Draw paints the frame at the top-left of screen; row 0 is a status line.
// Cells outside the screen are clipped. The caller calls Show.
func Draw(screen tcell.Screen, f Frame, title string) {
	screen.Clear()
	width, height := screen.Size()

	status := fmt.Sprintf("%s pass %d moves %d eaten %d left %d", title, f.Pass, f.MovesMade, f.FoodEaten, f.FoodRemaining)
	for x, c := range []rune(status) {
		if x >= width {
			break
		}
		screen.SetContent(x, 0, c, nil, styleStatus)
	}

	for i, row := range f.Cells {
		y := i + 1
		if y >= height {
			break
		}
		for j, cell := range row {
			if j >= width {
				break
			}
			style := styleEmpty
			if cell == grid.Food {
				style = styleFood
			}
			screen.SetContent(j, y, cell.Rune(), nil, style)
		}
	}

	ay, ax := f.Position.Row+1, f.Position.Column
	if ay < height && ax < width {
		screen.SetContent(ax, ay, HeadingRune(f.Position.Heading), nil, styleAnt)
	}
}
