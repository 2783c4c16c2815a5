package rtsched_test

import (
	"context"
	"embed"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "github.com/viant/afs/embed"
	"github.com/viant/rtsched"
	"github.com/viant/rtsched/service/ceiling"
	"github.com/viant/rtsched/service/dispatcher"
	"github.com/viant/rtsched/service/registry"
	"github.com/viant/rtsched/service/timer"
)

//go:embed testdata/*
var embedFS embed.FS

func TestService(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	srv, err := rtsched.Load(ctx, "blinky.yaml",
		rtsched.WithMetaFsOptions(&embedFS),
		rtsched.WithMetaBaseURL("embed:///testdata"),
		rtsched.WithMonotonic(timer.NewManualClock(0)),
	)
	require.NoError(t, err)
	assert.Equal(t, "blinky", srv.Registry().Name())
	assert.NotEmpty(t, srv.BootID())

	var presses *ceiling.Shared[int]
	var led *ceiling.Local[bool]
	var toggles []bool
	require.NoError(t, srv.BindInit(func(cx *dispatcher.InitContext) error {
		var err error
		if presses, err = ceiling.NewShared(cx, "presses", 0); err != nil {
			return err
		}
		led, err = ceiling.NewLocal(cx, "led", false)
		return err
	}))
	require.NoError(t, srv.BindHardware("button", func(cx *dispatcher.Context) {
		_ = presses.Lock(cx, func(v *int) error {
			*v++
			return nil
		})
		_, err := cx.Spawn("blink", nil)
		assert.NoError(t, err)
	}))
	require.NoError(t, srv.BindSoftware("blink", dispatcher.Func(func(cx *dispatcher.Context) {
		on := led.Get(cx)
		*on = !*on
		toggles = append(toggles, *on)
	})))
	require.NoError(t, srv.BindIdle(func(cx *dispatcher.IdleContext) {
		for i := 0; i < 3; i++ {
			require.NoError(t, cx.Pend("GPIO0"))
			cx.Poll()
		}
		cancel()
	}))

	err = srv.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []bool{true, false, true}, toggles)
	stats := srv.Stats()
	assert.Equal(t, 3, stats.Spawned)
	assert.Equal(t, srv.BootID(), stats.BootID)
	assert.Equal(t, "blinky", stats.App)

	require.NoError(t, srv.Reset())
	toggles = nil
	assert.ErrorIs(t, srv.Run(ctx), context.Canceled)
	assert.Equal(t, []bool{true, false, true}, toggles, "init re-creates the led after reset")
	assert.Equal(t, 6, srv.Stats().Spawned)
}

func TestNewInvalid(t *testing.T) {
	testCases := []struct {
		name    string
		yaml    string
		options []rtsched.Option
		kind    error
		valid   bool
	}{
		{
			name: "priority above platform",
			yaml: "dispatchers: [SWI0]\ntasks:\n  - id: a\n    priority: 9\n",
			kind: registry.ErrPriorityRange,
		},
		{
			name:    "wider platform",
			yaml:    "dispatchers: [SWI0]\ntasks:\n  - id: a\n    priority: 9\n",
			options: []rtsched.Option{rtsched.WithConfig(&rtsched.Config{Platform: rtsched.PlatformConfig{PriorityBits: 4}})},
			valid:   true,
		},
		{
			name: "missing dispatcher",
			yaml: "tasks:\n  - id: a\n    priority: 1\n",
			kind: registry.ErrDispatchers,
		},
		{
			name:    "invalid config",
			yaml:    "dispatchers: [SWI0]\ntasks:\n  - id: a\n    priority: 1\n",
			options: []rtsched.Option{rtsched.WithConfig(&rtsched.Config{Platform: rtsched.PlatformConfig{PriorityBits: 7}})},
		},
		{
			name: "malformed yaml",
			yaml: "tasks: [",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var faults []error
			options := append([]rtsched.Option{rtsched.WithFault(func(err error) {
				faults = append(faults, err)
			})}, tc.options...)
			srv, err := rtsched.Decode([]byte(tc.yaml), options...)
			if tc.valid {
				require.NoError(t, err)
				assert.Empty(t, faults)
				assert.Equal(t, 16, srv.Registry().MaxPriority())
				return
			}
			assert.Nil(t, srv)
			require.Error(t, err)
			if tc.kind != nil {
				assert.ErrorIs(t, err, tc.kind)
			}
			require.Len(t, faults, 1, "fault collaborator is told about the rejection")
			assert.ErrorIs(t, err, faults[0])
		})
	}
}

func TestConfigValidate(t *testing.T) {
	testCases := []struct {
		name    string
		mutate  func(c *rtsched.Config)
		wantErr bool
	}{
		{name: "default", mutate: func(c *rtsched.Config) {}},
		{name: "too many priority bits", mutate: func(c *rtsched.Config) { c.Platform.PriorityBits = 7 }, wantErr: true},
		{name: "negative capacity", mutate: func(c *rtsched.Config) { c.Dispatcher.QueueCapacity = -1 }, wantErr: true},
		{name: "negative timer priority", mutate: func(c *rtsched.Config) { c.Timer.Priority = -1 }, wantErr: true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			config := rtsched.DefaultConfig()
			tc.mutate(config)
			assert.Equal(t, tc.wantErr, config.Validate() != nil)
		})
	}
	assert.Equal(t, 8, rtsched.DefaultConfig().MaxPriority())
}
