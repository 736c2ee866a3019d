package command

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/ledstrip/internal/color"
)

func TestSingleSlotKeepsNewest(t *testing.T) {
	m := NewMailbox(1)
	m.Send(NewSetColor(color.Red))
	m.Send(NewSetBrightness(7))

	c, ok := m.TryReceive()
	require.True(t, ok)
	assert.Equal(t, NewSetBrightness(7), c)

	_, ok = m.TryReceive()
	assert.False(t, ok, "first command must not be observed")
	assert.Equal(t, uint64(1), m.Dropped())
}

func TestTryReceiveEmpty(t *testing.T) {
	m := NewMailbox(1)
	_, ok := m.TryReceive()
	assert.False(t, ok)
	assert.Equal(t, 0, m.Len())
}

func TestQueueDropsOldest(t *testing.T) {
	m := NewMailbox(3)
	for i := 1; i <= 5; i++ {
		m.Send(NewSetSkip(uint8(i)))
	}
	assert.Equal(t, 3, m.Len())
	assert.Equal(t, uint64(2), m.Dropped())

	var got []uint8
	for {
		c, ok := m.TryReceive()
		if !ok {
			break
		}
		got = append(got, c.Value)
	}
	assert.Equal(t, []uint8{3, 4, 5}, got)
}

func TestCapacityFloor(t *testing.T) {
	assert.Equal(t, 1, NewMailbox(0).Capacity())
	assert.Equal(t, 1, NewMailbox(-4).Capacity())
}

func TestReceiveWaitsForSend(t *testing.T) {
	m := NewMailbox(1)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	go func() {
		time.Sleep(10 * time.Millisecond)
		m.Send(NewSetSkip(3))
	}()

	c, err := m.Receive(ctx)
	require.NoError(t, err)
	assert.Equal(t, NewSetSkip(3), c)
}

func TestReceiveCancelled(t *testing.T) {
	m := NewMailbox(1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := m.Receive(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCommandString(t *testing.T) {
	assert.Equal(t, "set_color(ff0000)", NewSetColor(color.Red).String())
	assert.Equal(t, "set_skip(2)", NewSetSkip(2).String())
	assert.Equal(t, "set_animation_speed(1.5)", NewSetAnimationSpeed(1.5).String())
	assert.Equal(t, "noop", NewNoop().String())
}
