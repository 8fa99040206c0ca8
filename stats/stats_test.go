package stats

import (
	"testing"
	"time"
)

var now0 = time.Unix(0, 0)

func TestScopeChange(t *testing.T) {
	stat := DefaultStatsReceiver().(*defaultStatsReceiver)
	if len(stat.scope) != 0 {
		t.Fatal("Default scope should be empty.")
	}

	statp := stat.Scope("a/b", "c").(*defaultStatsReceiver)
	if len(stat.scope) != 0 {
		t.Fatal("Default scope should still be empty.")
	}
	if len(statp.scope) != 2 || statp.scope[0] != "a_SLASH_b" || statp.scope[1] != "c" {
		t.Fatal("Invalid scope value: ", statp.scope)
	}
	if statp.scopedName("d") != "a_SLASH_b/c/d" {
		t.Fatal("Invalid scope name: " + statp.scopedName("d"))
	}
}

func TestCounterAccumulates(t *testing.T) {
	stat := DefaultStatsReceiver()
	c := stat.Counter("iterations")
	c.Inc(1)
	c.Inc(2)
	if got := stat.Counter("iterations").Count(); got != 3 {
		t.Fatalf("expected accumulated count 3, got %d", got)
	}
}

func TestGaugeFloatHoldsLatestUpdate(t *testing.T) {
	stat := DefaultStatsReceiver()
	g := stat.GaugeFloat("bestFitness")
	g.Update(12.5)
	g.Update(3.25)
	if got := stat.GaugeFloat("bestFitness").Value(); got != 3.25 {
		t.Fatalf("expected latest value 3.25, got %v", got)
	}
}

func TestLatencyRecordsElapsedTime(t *testing.T) {
	defer func() { Time = DefaultStatsTime() }()

	Time = NewTestTime(now0, 0)
	stat := DefaultStatsReceiver()
	l := stat.Latency("stepLatency")
	l.Time()
	Time = NewTestTime(now0, 5)
	l.Stop()

	hist := l.(*metricLatency).Histogram
	if hist.Count() != 1 {
		t.Fatalf("expected one latency sample recorded, got %d", hist.Count())
	}
	if hist.Sum() != 5 {
		t.Fatalf("expected 5ns recorded, got %d", hist.Sum())
	}
}

func TestNilStatsReceiverDiscardsUpdates(t *testing.T) {
	stat := NilStatsReceiver()
	stat.Counter("iterations").Inc(1)
	stat.GaugeFloat("bestFitness").Update(1.0)
	l := stat.Latency("stepLatency")
	l.Time()
	l.Stop()

	if stat.Scope("pso") == nil {
		t.Fatal("expected Scope on a nil receiver to still return a usable receiver")
	}
}
