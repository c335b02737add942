package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDebouncerSuppressesRepeats(t *testing.T) {
	t.Parallel()

	d := NewDebouncer(30 * time.Second)

	assert.True(t, d.Accept("MH12AB1234"))
	assert.False(t, d.Accept("MH12AB1234"))
	assert.False(t, d.Accept("MH12AB1234"))

	// a different plate is tracked independently
	assert.True(t, d.Accept("KA01AB0001"))
}

func TestDebouncerWindowExpires(t *testing.T) {
	t.Parallel()

	d := NewDebouncer(20 * time.Millisecond)

	assert.True(t, d.Accept("MH12AB1234"))
	assert.False(t, d.Accept("MH12AB1234"))

	time.Sleep(40 * time.Millisecond)
	assert.True(t, d.Accept("MH12AB1234"))
}

func TestDebouncerReset(t *testing.T) {
	t.Parallel()

	d := NewDebouncer(time.Minute)

	assert.True(t, d.Accept("MH12AB1234"))
	d.Reset()
	assert.True(t, d.Accept("MH12AB1234"))
}

func TestDebouncerDisabled(t *testing.T) {
	t.Parallel()

	d := NewDebouncer(0)
	assert.True(t, d.Accept("MH12AB1234"))
	assert.True(t, d.Accept("MH12AB1234"))
}
