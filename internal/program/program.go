package program

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownOperation = errors.New("unknown operation")

type OperationKind uint8

const (
	SenseFoodAhead OperationKind = iota
	MoveForward
	TurnLeft
	TurnRight
)

// Kinds lists the operations the simulator understands.
var Kinds = []OperationKind{SenseFoodAhead, MoveForward, TurnLeft, TurnRight}

func (k OperationKind) String() string {
	switch k {
	case SenseFoodAhead:
		return "IfFoodAhead"
	case MoveForward:
		return "MoveForward"
	case TurnLeft:
		return "TurnLeft"
	case TurnRight:
		return "TurnRight"
	default:
		return fmt.Sprintf("Operation(%d)", uint8(k))
	}
}

func (k OperationKind) Known() bool {
	return k <= TurnRight
}

// Instruction is a single program step. Only the operation kind is
// meaningful to the ant simulator.
type Instruction struct {
	Kind OperationKind
}

func (i Instruction) String() string {
	return i.Kind.String()
}

type Sequence []Instruction

func Of(kinds ...OperationKind) Sequence {
	seq := make(Sequence, len(kinds))
	for i, k := range kinds {
		seq[i] = Instruction{Kind: k}
	}
	return seq
}

func (s Sequence) Clone() Sequence {
	return append(Sequence(nil), s...)
}

// Count returns the number of instructions of the given kind.
func (s Sequence) Count(kind OperationKind) int {
	n := 0
	for _, ins := range s {
		if ins.Kind == kind {
			n++
		}
	}
	return n
}

func (s Sequence) String() string {
	names := make([]string, len(s))
	for i, ins := range s {
		names[i] = ins.String()
	}
	return "[" + strings.Join(names, ", ") + "]"
}

// Format renders the sequence in the space separated text form accepted by
// Parse.
func (s Sequence) Format() string {
	names := make([]string, len(s))
	for i, ins := range s {
		names[i] = ins.String()
	}
	return strings.Join(names, " ")
}

func ParseKind(name string) (OperationKind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "iffoodahead", "sensefoodahead", "if":
		return SenseFoodAhead, nil
	case "moveforward", "move":
		return MoveForward, nil
	case "turnleft", "left":
		return TurnLeft, nil
	case "turnright", "right":
		return TurnRight, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownOperation, name)
	}
}

// Parse reads instruction names separated by whitespace or commas. Text after
// '#' on a line is ignored, as are surrounding brackets from String output.
func Parse(text string) (Sequence, error) {
	var seq Sequence
	for lineNo, line := range strings.Split(text, "\n") {
		if idx := strings.IndexByte(line, '#'); idx >= 0 {
			line = line[:idx]
		}
		line = strings.NewReplacer("[", " ", "]", " ").Replace(line)
		fields := strings.FieldsFunc(line, func(r rune) bool {
			return r == ',' || r == ' ' || r == '\t' || r == '\r'
		})
		for _, field := range fields {
			kind, err := ParseKind(field)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo+1, err)
			}
			seq = append(seq, Instruction{Kind: kind})
		}
	}
	return seq, nil
}
