package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClocks(t *testing.T) {
	t0 := time.Date(2024, 11, 29, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, t0, Fixed{T: t0}.Now())

	calls := 0
	f := Func(func() time.Time { calls++; return t0.Add(time.Duration(calls) * time.Second) })
	assert.Equal(t, t0.Add(time.Second), f.Now())
	assert.Equal(t, t0.Add(2*time.Second), f.Now())

	assert.WithinDuration(t, time.Now(), Real{}.Now(), time.Second)
}

func TestNewTicker(t *testing.T) {
	tk := NewTicker(5 * time.Millisecond)
	defer tk.Stop()
	select {
	case <-tk.C():
	case <-time.After(time.Second):
		t.Fatal("ticker did not fire")
	}
}
