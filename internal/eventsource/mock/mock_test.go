package mock

import (
	"context"
	"testing"

	"github.com/ebph-project/ebphd/internal/domain"
)

func TestMockSourceFeedAndDrain(t *testing.T) {
	src := New(nil, 4)
	src.Feed(domain.CallEvent{ProfileKey: 1, Tid: 10, Call: 5})

	select {
	case ev := <-src.Events():
		if ev.Tid != 10 {
			t.Fatalf("got Tid=%d, want 10", ev.Tid)
		}
	default:
		t.Fatalf("expected a buffered event")
	}
}

func TestMockSourceBootstrapReturnsSeeds(t *testing.T) {
	seeds := []domain.TaskSeed{{Tid: 1, Pid: 1, ProfileKey: 7, ExePath: "/sbin/init"}}
	src := New(seeds, 1)

	got, err := src.Bootstrap(context.Background())
	if err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}
	if len(got) != 1 || got[0].ProfileKey != 7 {
		t.Fatalf("Bootstrap() = %+v, want the seeded slice", got)
	}
}

func TestMockSourceRecordsDecisions(t *testing.T) {
	src := New(nil, 1)
	if err := src.Decide(context.Background(), 99, domain.Deny); err != nil {
		t.Fatalf("Decide: %v", err)
	}
	decisions := src.Decisions()
	if len(decisions) != 1 || decisions[0].Pid != 99 || decisions[0].Decision != domain.Deny {
		t.Fatalf("Decisions() = %+v, want one Deny for pid 99", decisions)
	}
}
