package operator

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log"

	"github.com/dyluth/hearth/internal/channel"
	"github.com/dyluth/hearth/internal/message"
	"github.com/dyluth/hearth/internal/printer"
)

// Operator reads commands line by line and forwards them as events.
type Operator struct {
	events  *channel.Bounded[message.Event]
	cancel  context.CancelFunc
	console *printer.Console
}

// New creates an operator. cancel is called when the operator quits, in
// addition to sending a Shutdown event.
func New(events *channel.Bounded[message.Event], cancel context.CancelFunc, console *printer.Console) *Operator {
	return &Operator{
		events:  events,
		cancel:  cancel,
		console: console,
	}
}

// Run reads r until a quit command, end of input, or a read error. End of
// input and read errors count as quit.
//
// Reads block and cannot be interrupted, so Run only notices cancellation
// of ctx after the next line arrives. Callers must not wait for it.
func (o *Operator) Run(ctx context.Context, r io.Reader) {
	o.console.Printf("[SW] Commands: %s", Usage)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}

		ev, err := Parse(scanner.Text())
		switch {
		case errors.Is(err, ErrHelp):
			o.printHelp()
			continue
		case err != nil:
			o.console.Warnf("[SW] %v", err)
			continue
		case ev == nil:
			continue
		}

		if _, ok := ev.(message.Shutdown); ok {
			o.quit()
			return
		}
		o.send(ev)
	}

	if err := scanner.Err(); err != nil {
		log.Printf("[WARN] Operator input failed, shutting down: %v", err)
	} else {
		log.Printf("[DEBUG] Operator input closed, shutting down")
	}
	o.quit()
}

func (o *Operator) send(ev message.Event) bool {
	if !o.events.TrySend(ev) {
		log.Printf("[WARN] Operator event queue full, dropping %s", ev)
		return false
	}
	log.Printf("[DEBUG] Operator event queued: %s", ev)
	return true
}

// quit asks the decision task to stop and cancels directly, so shutdown
// proceeds even when the event is dropped.
func (o *Operator) quit() {
	o.send(message.Shutdown{})
	o.cancel()
}

func (o *Operator) printHelp() {
	o.console.Println("[SW] a          switch to automatic mode")
	o.console.Println("[SW] m          switch to manual mode")
	o.console.Println("[SW] p <0..100> set the manual power")
	o.console.Println("[SW] q          quit")
}
