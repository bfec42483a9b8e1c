package profile

import (
	"testing"

	"github.com/ebph-project/ebphd/internal/domain"
	"github.com/ebph-project/ebphd/internal/settings"
)

func TestEngineTrainingRecordsPairsAndAdvancesWindow(t *testing.T) {
	e := NewEngine()
	p := NewProfile(1, "/bin/true", 8, 9)
	ts := NewTaskState(100, 100, p.Key, DefaultWindow, DefaultLocalityFrame)
	s := settings.Default()

	res := e.ProcessCall(p, ts, 2, s)
	if res.Decision != Permit {
		t.Fatalf("TRAINING call should always Permit, got %v", res.Decision)
	}
	if p.TrainCount != 1 {
		t.Fatalf("TrainCount = %d, want 1", p.TrainCount)
	}
	if ts.Window.At(0) != 2 {
		t.Fatalf("window was not advanced with the new call")
	}

	res = e.ProcessCall(p, ts, 5, s)
	if !p.TrainLPT.Test(5, 2, 0) {
		t.Fatalf("second call did not record the (5,2,0) pair")
	}
	if p.Sequences == 0 {
		t.Fatalf("Sequences counter did not advance on a newly-recorded pair")
	}
	_ = res
}

func TestEngineTrainingPromotesOnMaturityAndSteadiness(t *testing.T) {
	e := NewEngine()
	p := NewProfile(1, "/bin/true", 4, 9)
	ts := NewTaskState(1, 1, p.Key, DefaultWindow, DefaultLocalityFrame)
	s := settings.Default() // NORMAL_FACTOR/NORMAL_FACTOR_DEN = 3/4
	s.NormalWait = 10

	// An alternating 1,2,1,2,... cycle exhausts every (curr,prev,d) pair the
	// 8-deep lookahead can see within the first ~9 calls; from then on
	// train_lpt stops changing and last_mod_count climbs at the same rate
	// as train_count, so their ratio eventually clears the 3/4 steadiness
	// bar. 150 iterations is comfortably past the crossover point.
	promoted := false
	for i := 0; i < 150 && !promoted; i++ {
		c := CallNumber(1)
		if i%2 == 1 {
			c = 2
		}
		res := e.ProcessCall(p, ts, c, s)
		for _, ev := range res.Events {
			if _, ok := ev.(domain.StartNormalEvent); ok {
				promoted = true
			}
		}
		if p.Status == StatusFrozen {
			promoted = true
		}
	}

	if !promoted {
		t.Fatalf("profile never promoted to FROZEN despite maturity+steadiness")
	}
}

func TestEngineTestingDetectsAnomaly(t *testing.T) {
	e := NewEngine()
	p := NewProfile(1, "/bin/true", 8, 9)
	p.TrainLPT.Record(2, 1, 0)
	p.Normalize() // -> FROZEN, test_lpt now has (2,1,0)

	ts := NewTaskState(1, 1, p.Key, DefaultWindow, DefaultLocalityFrame)
	s := settings.Default()

	// Prime the window with call "1" (a hit is impossible on the very first
	// call since there's no prior call yet at distance 0).
	e.ProcessCall(p, ts, 1, s)

	// Call "2" following "1" at distance 0 matches what was trained: a hit.
	res := e.ProcessCall(p, ts, 2, s)
	for _, ev := range res.Events {
		if _, ok := ev.(domain.AnomalyEvent); ok {
			t.Fatalf("expected no anomaly for a previously-trained pair")
		}
	}

	// Call "7" following "2" was never trained: an anomaly.
	res = e.ProcessCall(p, ts, 7, s)
	found := false
	for _, ev := range res.Events {
		if _, ok := ev.(domain.AnomalyEvent); ok {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected an AnomalyEvent for an untrained pair")
	}
}

func TestEngineEnforcingDeniesOnAnomaly(t *testing.T) {
	e := NewEngine()
	p := NewProfile(1, "/bin/true", 8, 9)
	p.Normalize()

	ts := NewTaskState(1, 1, p.Key, DefaultWindow, DefaultLocalityFrame)
	s := settings.Default()
	s.Enforcing = true

	e.ProcessCall(p, ts, 1, s)
	res := e.ProcessCall(p, ts, 2, s) // untrained pair -> anomaly
	if res.Decision != Deny {
		t.Fatalf("Decision = %v, want Deny when ENFORCING and an anomaly occurs", res.Decision)
	}
}

func TestEngineMonitoringDisabledSkipsProcessing(t *testing.T) {
	e := NewEngine()
	p := NewProfile(1, "/bin/true", 8, 9)
	ts := NewTaskState(1, 1, p.Key, DefaultWindow, DefaultLocalityFrame)
	s := settings.Default()
	s.Monitoring = false

	res := e.ProcessCall(p, ts, 3, s)
	if res.Decision != Permit || len(res.Events) != 0 {
		t.Fatalf("expected a no-op Permit when MONITORING is off")
	}
	if p.TrainCount != 0 {
		t.Fatalf("TrainCount advanced despite MONITORING being off")
	}
}

func TestEngineAnomalyLimitTriggersTolerize(t *testing.T) {
	e := NewEngine()
	p := NewProfile(1, "/bin/true", 8, 9)
	p.Normalize()

	ts := NewTaskState(1, 1, p.Key, DefaultWindow, DefaultLocalityFrame)
	s := settings.Default()
	s.AnomalyLimit = 2

	// Every call after the first is an anomaly: test_lpt is empty.
	e.ProcessCall(p, ts, 1, s)
	e.ProcessCall(p, ts, 2, s) // anomaly 1
	res := e.ProcessCall(p, ts, 3, s) // anomaly 2 -> limit reached -> tolerize

	if p.Status != StatusTraining {
		t.Fatalf("Status = %v, want TRAINING after anomaly-limit exceedance", p.Status)
	}

	found := false
	for _, ev := range res.Events {
		if _, ok := ev.(domain.StopNormalEvent); ok {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a StopNormalEvent when the anomaly limit is exceeded")
	}
}
