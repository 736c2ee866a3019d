package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/ledstrip/internal/color"
	"github.com/coreman2200/ledstrip/internal/command"
	"github.com/coreman2200/ledstrip/internal/transport"
)

func TestBuildWrite(t *testing.T) {
	cases := []struct {
		Args []string
		Want command.Command
	}{
		{[]string{"color", "#ff8000"}, command.NewSetColor(color.New(255, 128, 0))},
		{[]string{"brightness", "128"}, command.NewSetBrightness(128)},
		{[]string{"skip", "3"}, command.NewSetSkip(3)},
		{[]string{"speed", "0.5"}, command.NewSetAnimationSpeed(0.5)},
		{[]string{"raw", "2", "40"}, command.NewSetBrightness(64)},
	}
	for _, tc := range cases {
		ev, err := buildWrite(tc.Args)
		require.NoError(t, err, "%v", tc.Args)
		got, err := transport.Decode(ev)
		require.NoError(t, err)
		assert.Equal(t, tc.Want, got, "%v", tc.Args)
	}

	ev, err := buildWrite([]string{"twinkle", "20"})
	require.NoError(t, err)
	got, err := transport.Decode(ev)
	require.NoError(t, err)
	assert.Equal(t, command.UseAnimation, got.Kind)
	assert.Equal(t, byte(20), got.Animation[1])
}

func TestBuildWriteRejects(t *testing.T) {
	for _, args := range [][]string{
		{"color"},
		{"color", "red"},
		{"brightness", "300"},
		{"skip", "-1"},
		{"speed", "fast"},
		{"raw", "2"},
		{"raw", "2", "40", "extra"},
		{"brightness", "1", "2"},
		{},
		{"raw", "x", "00"},
		{"raw", "2", "zz"},
		{"dance", "1"},
	} {
		_, err := buildWrite(args)
		assert.Error(t, err, "%v", args)
	}
}
