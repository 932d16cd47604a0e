package control

import (
	"fmt"
	"slices"
	"sync"

	"github.com/san-kum/ballsim/internal/dynamo"
)

type Kind int

const (
	// Click disposes the topmost ball under the point, or spawns a new
	// one there if nothing is hit.
	Click Kind = iota
	// Spawn always creates a ball at the point.
	Spawn
	// Clear disposes every live ball.
	Clear
)

func (k Kind) String() string {
	switch k {
	case Click:
		return "click"
	case Spawn:
		return "spawn"
	case Clear:
		return "clear"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

func ParseKind(s string) (Kind, error) {
	switch s {
	case "", "click":
		return Click, nil
	case "spawn":
		return Spawn, nil
	case "clear":
		return Clear, nil
	}
	return 0, fmt.Errorf("%w: unknown command %q", dynamo.ErrParameterBounds, s)
}

type Command struct {
	Kind  Kind
	Point dynamo.Vec
	// At is the simulated time, in milliseconds, a scripted command fires.
	At float64
}

// Queue is a goroutine-safe FIFO of pending commands.
type Queue struct {
	mu      sync.Mutex
	pending []Command
}

func NewQueue() *Queue {
	return &Queue{}
}

func (q *Queue) Push(c Command) {
	q.mu.Lock()
	q.pending = append(q.pending, c)
	q.mu.Unlock()
}

func (q *Queue) Click(p dynamo.Vec) { q.Push(Command{Kind: Click, Point: p}) }
func (q *Queue) Spawn(p dynamo.Vec) { q.Push(Command{Kind: Spawn, Point: p}) }
func (q *Queue) Clear()             { q.Push(Command{Kind: Clear}) }

// Take removes and returns every pending command in arrival order.
func (q *Queue) Take() []Command {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.pending
	q.pending = nil
	return out
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Script is a list of commands ordered by firing time.
type Script struct {
	cmds []Command
	next int
}

func NewScript(cmds []Command) *Script {
	sorted := slices.Clone(cmds)
	slices.SortStableFunc(sorted, func(a, b Command) int {
		switch {
		case a.At < b.At:
			return -1
		case a.At > b.At:
			return 1
		}
		return 0
	})
	return &Script{cmds: sorted}
}

// Due pushes every command with At <= t onto q and reports how many fired.
func (s *Script) Due(t float64, q *Queue) int {
	n := 0
	for s.next < len(s.cmds) && s.cmds[s.next].At <= t {
		q.Push(s.cmds[s.next])
		s.next++
		n++
	}
	return n
}

func (s *Script) Done() bool { return s.next >= len(s.cmds) }

func (s *Script) Rewind() { s.next = 0 }
