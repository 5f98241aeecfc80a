// Package lifecycle gates backend-calling operations behind a single tagged
// state so that at most one of them is in flight at a time.
package lifecycle

import (
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrStateConflict marks an action invoked while a conflicting one holds the gate.
	ErrStateConflict = errors.New("state conflict")

	// ErrBusy is returned instead of double-dispatching.
	ErrBusy = fmt.Errorf("%w: another request is in flight", ErrStateConflict)
)

// Kind identifies the operation that wants the gate.
type Kind int

const (
	KindGenerate Kind = iota + 1
	KindGenerateTemplate
	KindUpload
	KindSummarize
	KindDelete
)

func (k Kind) String() string {
	return k.State().String()
}

// State is idle or exactly one busy kind.
type State int

const (
	Idle State = iota
	Generating
	GeneratingWithTemplate
	Uploading
	Summarizing
	Deleting
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Generating:
		return "generating"
	case GeneratingWithTemplate:
		return "generatingWithTemplate"
	case Uploading:
		return "uploading"
	case Summarizing:
		return "summarizing"
	case Deleting:
		return "deleting"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

func (k Kind) State() State {
	switch k {
	case KindGenerate:
		return Generating
	case KindGenerateTemplate:
		return GeneratingWithTemplate
	case KindUpload:
		return Uploading
	case KindSummarize:
		return Summarizing
	case KindDelete:
		return Deleting
	default:
		return Idle
	}
}

// Controller is safe for concurrent use.
type Controller struct {
	mu       sync.Mutex
	state    State
	onChange func(from, to State)
}

func NewController() *Controller {
	return &Controller{}
}

// OnChange registers fn to observe every transition. fn runs outside the
// controller lock and may call back into the controller.
func (c *Controller) OnChange(fn func(from, to State)) {
	c.mu.Lock()
	c.onChange = fn
	c.mu.Unlock()
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) Busy() bool {
	return c.State() != Idle
}

// Allows reports whether kind could start now; controls for kind should be
// disabled while it is false.
func (c *Controller) Allows(kind Kind) bool {
	return kind.State() != Idle && !c.Busy()
}

// Acquire moves idle -> busy(kind). The returned release moves back to idle;
// it is safe to call more than once.
func (c *Controller) Acquire(kind Kind) (release func(), err error) {
	target := kind.State()
	if target == Idle {
		return nil, fmt.Errorf("unknown operation kind %d", int(kind))
	}

	c.mu.Lock()
	if c.state != Idle {
		c.mu.Unlock()
		return nil, ErrBusy
	}
	c.state = target
	notify := c.onChange
	c.mu.Unlock()

	if notify != nil {
		notify(Idle, target)
	}

	var once sync.Once
	return func() {
		once.Do(func() { c.release(target) })
	}, nil
}

func (c *Controller) release(from State) {
	c.mu.Lock()
	c.state = Idle
	notify := c.onChange
	c.mu.Unlock()

	if notify != nil {
		notify(from, Idle)
	}
}

// Run holds the gate for kind while fn executes. The gate is released when fn
// returns or panics.
func (c *Controller) Run(kind Kind, fn func() error) error {
	release, err := c.Acquire(kind)
	if err != nil {
		return err
	}
	defer release()
	return fn()
}

// WhenIdle runs fn while holding the controller lock, only if no operation is
// in flight, so no Acquire can interleave with fn. fn must not call back into
// the controller.
func (c *Controller) WhenIdle(fn func()) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Idle {
		return ErrBusy
	}
	fn()
	return nil
}
