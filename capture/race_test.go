package capture

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAwaitImage_ReturnsOnCapture(t *testing.T) {
	ic := NewInterceptor(DefaultTarget, &fakeSession{})
	go func() {
		time.Sleep(20 * time.Millisecond)
		ic.capture([]byte("B"))
	}()

	start := time.Now()
	image, ok := AwaitImage(context.Background(), ic, 0, 5*time.Second)

	assert.True(t, ok)
	assert.Equal(t, []byte("B"), image)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestAwaitImage_TimeoutIsSoft(t *testing.T) {
	ic := NewInterceptor(DefaultTarget, &fakeSession{})

	start := time.Now()
	image, ok := AwaitImage(context.Background(), ic, 10*time.Millisecond, 50*time.Millisecond)

	assert.False(t, ok)
	assert.Nil(t, image)
	assert.GreaterOrEqual(t, time.Since(start), 60*time.Millisecond)
}

func TestAwaitImage_AlreadyCaptured(t *testing.T) {
	ic := NewInterceptor(DefaultTarget, &fakeSession{})
	ic.capture([]byte("early"))

	image, ok := AwaitImage(context.Background(), ic, 0, 0)

	assert.True(t, ok)
	assert.Equal(t, []byte("early"), image)
}

func TestAwaitImage_ContextCancelDuringSettle(t *testing.T) {
	ic := NewInterceptor(DefaultTarget, &fakeSession{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	_, ok := AwaitImage(ctx, ic, time.Minute, time.Minute)

	assert.False(t, ok)
	assert.Less(t, time.Since(start), time.Second)
}
