package control

import (
	"sync"
	"testing"

	"github.com/cbegin/orbitfm-go/internal/osc"
)

func gainMsg(g osc.GainType) Msg {
	return Msg{Kind: MsgGainType, GainTy: g}
}

func TestDrainPreservesOrder(t *testing.T) {
	q := NewQueue()
	kinds := []MsgKind{MsgTopology, MsgModType, MsgGainType, MsgResetPhase, MsgEnvelope}
	for _, k := range kinds {
		if !q.Send(Msg{Kind: k}) {
			t.Fatalf("send %v failed on open queue", k)
		}
	}

	dst := make([]Msg, len(kinds))
	n, closed := q.Drain(dst)
	if n != len(kinds) || closed {
		t.Fatalf("Drain = (%d, %v), want (%d, false)", n, closed, len(kinds))
	}
	for i, k := range kinds {
		if dst[i].Kind != k {
			t.Errorf("dst[%d].Kind = %v, want %v", i, dst[i].Kind, k)
		}
	}
}

func TestDrainBoundedByDst(t *testing.T) {
	q := NewQueue()
	for i := 0; i < 7; i++ {
		q.Send(gainMsg(osc.GainLinear))
	}

	dst := make([]Msg, 3)
	if n, _ := q.Drain(dst); n != 3 {
		t.Fatalf("first drain = %d, want 3", n)
	}
	if got := q.Pending(); got != 4 {
		t.Fatalf("pending = %d, want 4", got)
	}
	if n, _ := q.Drain(dst); n != 3 {
		t.Fatalf("second drain = %d, want 3", n)
	}
	if n, _ := q.Drain(dst); n != 1 {
		t.Fatalf("third drain = %d, want 1", n)
	}
}

func TestDrainEmpty(t *testing.T) {
	q := NewQueue()
	dst := make([]Msg, 4)
	if n, closed := q.Drain(dst); n != 0 || closed {
		t.Fatalf("Drain on empty open queue = (%d, %v), want (0, false)", n, closed)
	}
}

func TestCloseSemantics(t *testing.T) {
	q := NewQueue()
	q.Send(gainMsg(osc.GainSigmoid))
	q.Close()

	if q.Send(gainMsg(osc.GainLinear)) {
		t.Fatal("Send succeeded after Close")
	}

	// Queued messages survive the close and drain first.
	dst := make([]Msg, 4)
	n, closed := q.Drain(dst)
	if n != 1 {
		t.Fatalf("drained %d messages, want 1", n)
	}
	if !closed {
		t.Fatal("closed not reported once the queue ran dry")
	}
	if _, closed := q.Drain(dst); !closed {
		t.Fatal("closed not sticky on an empty closed queue")
	}
}

func TestCloseWithBacklogNotReportedUntilEmpty(t *testing.T) {
	q := NewQueue()
	q.Send(gainMsg(osc.GainLinear))
	q.Send(gainMsg(osc.GainSigmoid))
	q.Close()

	dst := make([]Msg, 1)
	if _, closed := q.Drain(dst); closed {
		t.Fatal("closed reported while messages remain")
	}
	if _, closed := q.Drain(dst); !closed {
		t.Fatal("closed not reported after the backlog drained")
	}
}

func TestConcurrentSenders(t *testing.T) {
	q := NewQueue()
	const senders, perSender = 8, 50

	var wg sync.WaitGroup
	for i := 0; i < senders; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perSender; j++ {
				q.Send(gainMsg(osc.GainLinear))
			}
		}()
	}
	wg.Wait()

	total := 0
	dst := make([]Msg, 10)
	for {
		n, _ := q.Drain(dst)
		if n == 0 {
			break
		}
		total += n
	}
	if total != senders*perSender {
		t.Fatalf("drained %d messages, want %d", total, senders*perSender)
	}
}
