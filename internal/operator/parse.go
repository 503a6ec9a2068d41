// Package operator turns console input into operator events.
package operator

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/dyluth/hearth/internal/message"
	"github.com/dyluth/hearth/internal/state"
)

// Usage is the one-line command summary shown at startup and on errors.
const Usage = "a / m / p <0..100> / q"

// ErrHelp is returned by Parse when the operator asked for the command list.
var ErrHelp = errors.New("help requested")

// ParseError describes a console line that is not a valid command.
type ParseError struct {
	Input  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s (got %q)", e.Reason, e.Input)
}

// Parse converts one console line into an event.
//
// Returns (nil, nil) for a blank line and ErrHelp for help. Power values are
// clamped to [0, 100] here and again when applied.
func Parse(line string) (message.Event, error) {
	fields := strings.Fields(strings.ToLower(line))
	if len(fields) == 0 {
		return nil, nil
	}

	switch fields[0] {
	case "a", "auto", "automatic":
		if len(fields) != 1 {
			return nil, &ParseError{Input: line, Reason: "usage: a"}
		}
		return message.SetMode{Mode: state.ModeAutomatic}, nil

	case "m", "manual":
		if len(fields) != 1 {
			return nil, &ParseError{Input: line, Reason: "usage: m"}
		}
		return message.SetMode{Mode: state.ModeManual}, nil

	case "p", "power":
		if len(fields) != 2 {
			return nil, &ParseError{Input: line, Reason: "usage: p <0..100>"}
		}
		v, err := strconv.ParseFloat(fields[1], 64)
		if err != nil || math.IsNaN(v) {
			return nil, &ParseError{Input: line, Reason: "invalid power value, example: p 80"}
		}
		return message.SetManualPower{Power: state.ClampPower(v)}, nil

	case "q", "quit", "exit":
		return message.Shutdown{}, nil

	case "help", "?":
		return nil, ErrHelp

	default:
		return nil, &ParseError{Input: line, Reason: "unknown command, use: " + Usage}
	}
}
