package printer

import (
	"fmt"
	"io"
	"math"
	"sync"

	"github.com/fatih/color"

	"github.com/dyluth/hearth/internal/model"
	"github.com/dyluth/hearth/internal/state"
)

// Console serializes line output from concurrent tasks. Each call writes
// one complete line while holding the console lock; the lock is never held
// while waiting on anything else.
type Console struct {
	mu  sync.Mutex
	out io.Writer
}

// NewConsole creates a console writing to out.
func NewConsole(out io.Writer) *Console {
	return &Console{out: out}
}

// Println writes a plain line.
func (c *Console) Println(a ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.out, a...)
}

// Printf writes a formatted line. A trailing newline is added.
func (c *Console) Printf(format string, a ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, format+"\n", a...)
}

// Warnf writes a formatted line in yellow.
func (c *Console) Warnf(format string, a ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	yellow.Fprintf(c.out, format+"\n", a...)
}

// Status writes one status line.
func (c *Console) Status(s Status) {
	line := s.Render()
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.out, line)
}

// Status is one observation of the controller for display.
// Mean, Pressure and Valve are NaN until the first reading arrives.
type Status struct {
	Mode     state.Mode
	Mean     float64
	Comfort  model.Comfort
	Pressure float64
	Power    float64
	Valve    float64
}

// NoReading is the placeholder for a value that has not been observed yet.
var NoReading = math.NaN()

// Render formats the status line. Mode and comfort are colored unless
// color output is disabled.
func (s Status) Render() string {
	mode := cyan.Sprintf("%-9s", s.Mode)
	comfort := comfortColor(s.Comfort).Sprintf("%-12s", s.Comfort)

	return fmt.Sprintf("[S] mode=%s T_mean=%5.2f C comfort=%s pressure=%4.2f power=%5.1f%% valve=%3.1f",
		mode, s.Mean, comfort, s.Pressure, s.Power, s.Valve)
}

func comfortColor(c model.Comfort) *color.Color {
	switch c {
	case model.ComfortCold:
		return blue
	case model.ComfortComfortable:
		return green
	case model.ComfortHot:
		return red
	default:
		return color.New(color.Reset)
	}
}
