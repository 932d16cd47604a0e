package control

import (
	"sync"
	"testing"

	"github.com/san-kum/ballsim/internal/dynamo"
)

func TestQueueOrder(t *testing.T) {
	q := NewQueue()
	q.Click(dynamo.V(1, 1))
	q.Spawn(dynamo.V(2, 2))
	q.Clear()

	cmds := q.Take()
	if len(cmds) != 3 {
		t.Fatalf("expected 3 commands, got %d", len(cmds))
	}
	want := []Kind{Click, Spawn, Clear}
	for i, c := range cmds {
		if c.Kind != want[i] {
			t.Errorf("command %d: got %v, want %v", i, c.Kind, want[i])
		}
	}
	if q.Len() != 0 {
		t.Errorf("queue should be empty after Take")
	}
}

func TestQueueConcurrent(t *testing.T) {
	q := NewQueue()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				q.Click(dynamo.V(float64(j), 0))
			}
		}()
	}
	wg.Wait()

	if got := len(q.Take()); got != 800 {
		t.Errorf("expected 800 commands, got %d", got)
	}
}

func TestScriptDue(t *testing.T) {
	s := NewScript([]Command{
		{Kind: Spawn, At: 50},
		{Kind: Click, At: 10},
		{Kind: Clear, At: 50},
	})
	q := NewQueue()

	if n := s.Due(5, q); n != 0 {
		t.Errorf("nothing should fire before 10ms, got %d", n)
	}
	if n := s.Due(10, q); n != 1 {
		t.Errorf("expected one command at 10ms, got %d", n)
	}
	if n := s.Due(100, q); n != 2 {
		t.Errorf("expected two commands at 100ms, got %d", n)
	}
	if !s.Done() {
		t.Error("script should be exhausted")
	}

	cmds := q.Take()
	if cmds[0].Kind != Click || cmds[1].Kind != Spawn || cmds[2].Kind != Clear {
		t.Errorf("unexpected order %v", cmds)
	}

	s.Rewind()
	if s.Done() {
		t.Error("rewind should restart the script")
	}
}

func TestParseKind(t *testing.T) {
	tests := map[string]Kind{"": Click, "click": Click, "spawn": Spawn, "clear": Clear}
	for in, want := range tests {
		got, err := ParseKind(in)
		if err != nil || got != want {
			t.Errorf("ParseKind(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseKind("explode"); err == nil {
		t.Error("expected error for unknown command")
	}
}
