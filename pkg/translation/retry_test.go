package translation

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	lmerrors "github.com/lingomeet/lingomeet/pkg/errors"
)

func TestBackoffGrowsAndCaps(t *testing.T) {
	p := DefaultRetryPolicy()

	assert.Equal(t, time.Second, p.Backoff(0))
	assert.Equal(t, time.Second, p.Backoff(1))
	assert.Equal(t, 2*time.Second, p.Backoff(2))
	assert.Equal(t, 4*time.Second, p.Backoff(3))
	assert.Equal(t, 30*time.Second, p.Backoff(20), "backoff caps at MaxBackoff")
}

func TestShouldRetry(t *testing.T) {
	p := DefaultRetryPolicy()
	transient := lmerrors.Transient("call", errors.New("timeout"))
	permanent := errors.New("bad request")

	assert.True(t, p.ShouldRetry(transient, 1))
	assert.True(t, p.ShouldRetry(transient, 2))
	assert.False(t, p.ShouldRetry(transient, 3), "attempt budget spent")
	assert.False(t, p.ShouldRetry(permanent, 1), "permanent errors never retry")
}
