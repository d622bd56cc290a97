package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimerMeasuresElapsed(t *testing.T) {
	timer := NewTimer("acquire")
	time.Sleep(time.Millisecond)
	assert.GreaterOrEqual(t, timer.Stop(), time.Millisecond)
}

func TestCollectorName(t *testing.T) {
	c := NewCollector("demo")
	assert.Equal(t, "demo", c.Name())
}
