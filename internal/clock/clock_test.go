package clock

import (
	"testing"
	"time"
)

func TestSystemMonotonic(t *testing.T) {
	c := NewSystem()
	a := c.Now()
	time.Sleep(2 * time.Millisecond)
	b := c.Now()
	if b <= a {
		t.Errorf("System clock did not advance: %v then %v", a, b)
	}
}

func TestManualAdvance(t *testing.T) {
	c := NewManual(time.Second)
	if got := c.Now(); got != time.Second {
		t.Fatalf("Now = %v, want 1s", got)
	}
	if got := c.Advance(250 * time.Millisecond); got != 1250*time.Millisecond {
		t.Errorf("Advance = %v, want 1.25s", got)
	}
	c.Advance(-time.Second)
	if got := c.Now(); got != 1250*time.Millisecond {
		t.Errorf("negative Advance moved clock to %v", got)
	}
}

func TestManualNeverRewinds(t *testing.T) {
	c := NewManual(0)
	c.Set(3 * time.Second)
	c.Set(time.Second)
	if got := c.Now(); got != 3*time.Second {
		t.Errorf("Now = %v after backwards Set, want 3s", got)
	}
}
