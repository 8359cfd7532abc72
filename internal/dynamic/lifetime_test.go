package dynamic

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLifetime_DisposeRunsOnceInReverse(t *testing.T) {
	var l Lifetime
	var order []int
	l.OnDispose(func() { order = append(order, 1) })
	l.OnDispose(func() { order = append(order, 2) })

	l.Dispose()
	l.Dispose()

	assert.Equal(t, []int{2, 1}, order)
	assert.True(t, l.Disposed())
}

func TestLifetime_RegisterAfterDispose(t *testing.T) {
	var l Lifetime
	l.Dispose()

	ran := false
	l.OnDispose(func() { ran = true })
	assert.True(t, ran)
}

func TestLifetime_RegisterDuringDispose(t *testing.T) {
	var l Lifetime
	ran := false
	l.OnDispose(func() {
		l.OnDispose(func() { ran = true })
	})
	l.Dispose()
	assert.True(t, ran)
}
