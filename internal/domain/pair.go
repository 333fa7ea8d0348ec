package domain

import "fmt"

// Pair is a native word with its translation, captured at one point in time
type Pair struct {
	Native      string `json:"native"`
	Translation string `json:"translation"`
}

// EditableRow is one row of the edit buffer; both fields change independently
type EditableRow struct {
	Native      string `json:"native"`
	Translation string `json:"translation"`
}

// Direction selects which side of a pair is asked
type Direction int

const (
	NativeToTarget Direction = iota
	TargetToNative
)

// String returns the short label shown to the user
func (d Direction) String() string {
	switch d {
	case NativeToTarget:
		return "ja→en"
	case TargetToNative:
		return "en→ja"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// ParseDirection accepts the labels produced by String plus a few short aliases
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "ja→en", "ja-en", "ja", "native", "":
		return NativeToTarget, nil
	case "en→ja", "en-ja", "en", "target":
		return TargetToNative, nil
	}
	return NativeToTarget, fmt.Errorf("unknown direction %q", s)
}
