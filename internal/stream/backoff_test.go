package stream

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBackoff_Sequence(t *testing.T) {
	b := newBackoff(time.Second, 5*time.Second, 2)

	assert.Equal(t, time.Second, b.next())
	assert.Equal(t, 2*time.Second, b.next())
	assert.Equal(t, 4*time.Second, b.next())
	assert.Equal(t, 5*time.Second, b.next())
	assert.Equal(t, 5*time.Second, b.next())

	b.reset()
	assert.Equal(t, time.Second, b.next())
}

func TestBackoff_Sanitizes(t *testing.T) {
	b := newBackoff(0, 0, 0)
	assert.Equal(t, time.Second, b.next())
	assert.Equal(t, time.Second, b.next())
}
