package dispatcher

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/go-logr/logr/funcr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/rtsched/model"
	"github.com/viant/rtsched/service/ceiling"
	"github.com/viant/rtsched/service/registry"
	"github.com/viant/rtsched/service/timer"
)

func faultApp() *model.App {
	return &model.App{
		Dispatchers: dispatchers("SWI0"),
		Shared:      []string{"counter"},
		Local:       []string{"led"},
		Tasks: []*model.Task{
			{ID: "worker", Priority: 1, Shared: []string{"counter"}},
			{ID: "uart", Priority: 3, Vector: "UART0", Local: []string{"led"}},
		},
	}
}

func TestFaultHaltsScheduling(t *testing.T) {
	testCases := []struct {
		name       string
		worker     func(cx *Context, led *ceiling.Local[bool])
		uart       func(cx *Context)
		skipCreate bool
		initErr    error
		unbound    bool
		want       []error
	}{
		{
			name:   "task panic",
			worker: func(cx *Context, _ *ceiling.Local[bool]) { panic("boom") },
			want:   []error{ErrPanic},
		},
		{
			name: "lock of undeclared resource",
			worker: func(cx *Context, _ *ceiling.Local[bool]) {
				_ = cx.Lock("led", 0, func() error { return nil })
			},
			want: []error{ErrProtocol},
		},
		{
			name:   "local resource used by another task",
			worker: func(cx *Context, led *ceiling.Local[bool]) { *led.Get(cx) = true },
			want:   []error{ErrProtocol, ceiling.ErrNotOwner},
		},
		{
			name:   "hardware task suspends",
			worker: func(cx *Context, _ *ceiling.Local[bool]) { _ = cx.Pend("UART0") },
			uart:   func(cx *Context) { cx.Delay(1) },
			want:   []error{ErrProtocol},
		},
		{
			name:    "init error",
			initErr: errors.New("sensor offline"),
			want:    []error{ErrInit},
		},
		{
			name:       "resource not created",
			skipCreate: true,
			want:       []error{ErrUninitialized},
		},
		{
			name:    "unbound task",
			unbound: true,
			want:    []error{registry.ErrUnbound, registry.ErrConfig},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var lines []string
			logger := funcr.New(func(prefix, args string) {
				lines = append(lines, args)
			}, funcr.Options{})
			var faults []error
			core := newCore(t, faultApp(),
				WithMonotonic(timer.NewManualClock(0)),
				WithLogger(logger),
				WithFault(func(err error) { faults = append(faults, err) }),
			)
			var led *ceiling.Local[bool]
			require.NoError(t, core.BindInit(func(cx *InitContext) error {
				if tc.initErr != nil {
					return tc.initErr
				}
				if !tc.skipCreate {
					if _, err := ceiling.NewShared(cx, "counter", 0); err != nil {
						return err
					}
					var err error
					if led, err = ceiling.NewLocal(cx, "led", false); err != nil {
						return err
					}
				}
				_, err := cx.Spawn("worker", nil)
				return err
			}))
			if !tc.unbound {
				worker := tc.worker
				if worker == nil {
					worker = func(*Context, *ceiling.Local[bool]) {}
				}
				require.NoError(t, core.BindSoftware("worker", Func(func(cx *Context) { worker(cx, led) })))
			}
			uart := tc.uart
			if uart == nil {
				uart = func(*Context) {}
			}
			require.NoError(t, core.BindHardware("uart", uart))
			idleReached := false
			require.NoError(t, core.BindIdle(func(*IdleContext) { idleReached = true }))

			err := core.Run(context.Background())
			require.Error(t, err)
			for _, want := range tc.want {
				assert.ErrorIs(t, err, want)
			}
			require.Len(t, faults, 1)
			assert.Equal(t, err, faults[0])
			assert.False(t, idleReached, "scheduling must halt")
			assert.Equal(t, 0, core.Ceiling())
			require.NotEmpty(t, lines)
			assert.True(t, strings.Contains(lines[len(lines)-1], "error"), lines[len(lines)-1])
		})
	}
}

func TestResourceDeclaration(t *testing.T) {
	core := newCore(t, faultApp(), WithMonotonic(timer.NewManualClock(0)), WithDevice("board"))
	require.NoError(t, core.BindSoftware("worker", Func(func(*Context) {})))
	require.NoError(t, core.BindHardware("uart", func(*Context) {}))
	var late *InitContext
	require.NoError(t, core.BindInit(func(cx *InitContext) error {
		assert.Equal(t, "board", cx.Device())
		counter, err := ceiling.NewShared(cx, "counter", 1)
		require.NoError(t, err)
		assert.Equal(t, 1, counter.Ceiling())
		_, err = ceiling.NewShared(cx, "counter", 1)
		assert.ErrorIs(t, err, ceiling.ErrInitialized)
		_, err = ceiling.NewShared(cx, "led", 1)
		assert.ErrorIs(t, err, ceiling.ErrUndeclared)
		led, err := ceiling.NewLocal(cx, "led", 0)
		require.NoError(t, err)
		assert.Equal(t, "uart", led.Owner())
		late = cx
		return nil
	}))
	require.NoError(t, core.BindIdle(returnImmediately))
	require.NoError(t, core.Run(context.Background()))

	_, _, err := late.Declare("counter", false)
	assert.ErrorIs(t, err, ErrProtocol)
}

func TestBindErrors(t *testing.T) {
	core := newCore(t, faultApp())
	assert.ErrorIs(t, core.BindHardware("worker", func(*Context) {}), ErrNotHardware)
	assert.ErrorIs(t, core.BindSoftware("uart", Func(func(*Context) {})), ErrNotSoftware)
	assert.ErrorIs(t, core.BindSoftware("ghost", Func(func(*Context) {})), ErrUnknownTask)
	_, err := New(nil)
	assert.Error(t, err)
}
