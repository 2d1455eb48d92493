// Package trail loads grid layouts from the textual trail format.
//
// The first line holds the row and column counts separated by whitespace.
// Each following line is one grid row where '#' marks food and '.' or ' '
// mark empty cells. Short lines and missing trailing rows are padded with
// empty cells.
package trail

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"anttrail/internal/grid"
)

var (
	ErrInvalidHeader    = errors.New("invalid trail header")
	ErrUnknownCharacter = errors.New("unexpected grid data character")
)

// Provider hands out fresh grids built from one canonical layout.
type Provider struct {
	name   string
	layout [][]grid.Cell
	proto  *grid.Grid
}

func FromLayout(name string, layout [][]grid.Cell) (*Provider, error) {
	proto, err := grid.New(layout)
	if err != nil {
		return nil, err
	}
	return &Provider{name: name, layout: proto.Layout(), proto: proto}, nil
}

func FromReader(name string, r io.Reader) (*Provider, error) {
	layout, err := Parse(r)
	if err != nil {
		return nil, fmt.Errorf("trail %s: %w", name, err)
	}
	return FromLayout(name, layout)
}

func FromFile(path string) (*Provider, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return FromReader(path, f)
}

func (p *Provider) Name() string {
	return p.name
}

func (p *Provider) Rows() int {
	return p.proto.Rows()
}

func (p *Provider) Columns() int {
	return p.proto.Columns()
}

func (p *Provider) FoodCount() int {
	return p.proto.FoodCount()
}

// NewGrid returns a grid independent of every other grid from p.
func (p *Provider) NewGrid() *grid.Grid {
	return p.proto.Clone()
}

func (p *Provider) Layout() [][]grid.Cell {
	return p.proto.Layout()
}

// Format renders the layout back into trail text.
func (p *Provider) Format() string {
	return fmt.Sprintf("%d %d\n%s\n", p.Rows(), p.Columns(), p.proto.String())
}

// MaxCells bounds rows*columns accepted from a trail header.
const MaxCells = 1 << 20

func Parse(r io.Reader) ([][]grid.Cell, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: missing header", ErrInvalidHeader)
	}
	rows, columns, err := parseHeader(scanner.Text())
	if err != nil {
		return nil, err
	}

	var layout [][]grid.Cell
	lineNo := 1
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSuffix(scanner.Text(), "\r")
		if len(layout) == rows {
			if strings.TrimSpace(line) == "" {
				continue
			}
			return nil, fmt.Errorf("%w: line %d exceeds %d rows", grid.ErrInvalidLayout, lineNo, rows)
		}
		row, err := parseRow(line, columns)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		layout = append(layout, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	for len(layout) < rows {
		layout = append(layout, make([]grid.Cell, columns))
	}
	return layout, nil
}

func ParseString(text string) ([][]grid.Cell, error) {
	return Parse(strings.NewReader(text))
}

func parseHeader(line string) (int, int, error) {
	fields := strings.Fields(line)
	if len(fields) != 2 {
		return 0, 0, fmt.Errorf("%w: want \"<rows> <columns>\", got %q", ErrInvalidHeader, line)
	}
	rows, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, 0, fmt.Errorf("%w: rows: %v", ErrInvalidHeader, err)
	}
	columns, err := strconv.Atoi(fields[1])
	if err != nil {
		return 0, 0, fmt.Errorf("%w: columns: %v", ErrInvalidHeader, err)
	}
	if rows < 1 || columns < 1 {
		return 0, 0, fmt.Errorf("%w: %dx%d", grid.ErrInvalidLayout, rows, columns)
	}
	// Division keeps the check free of overflow.
	if rows > MaxCells/columns {
		return 0, 0, fmt.Errorf("%w: %dx%d exceeds %d cells", grid.ErrInvalidLayout, rows, columns, MaxCells)
	}
	return rows, columns, nil
}

func parseRow(line string, columns int) ([]grid.Cell, error) {
	row := make([]grid.Cell, columns)
	col := 0
	for _, c := range line {
		var cell grid.Cell
		switch c {
		case '.', ' ':
			cell = grid.Empty
		case '#':
			cell = grid.Food
		default:
			return nil, fmt.Errorf("%w: %q", ErrUnknownCharacter, c)
		}
		if col >= columns {
			if cell == grid.Food {
				return nil, fmt.Errorf("%w: food beyond column %d", grid.ErrInvalidLayout, columns)
			}
			continue
		}
		row[col] = cell
		col++
	}
	return row, nil
}
