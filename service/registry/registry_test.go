package registry

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/rtsched/model"
	"gopkg.in/yaml.v3"
)

func sampleApp() *model.App {
	return &model.App{
		Name:        "sample",
		Dispatchers: []*model.Dispatcher{{Vector: "SWI0", Capacity: 4}, {Vector: "SWI1"}},
		Shared:      []string{"counter", "buffer", "spare"},
		Local:       []string{"led", "scratch"},
		Idle:        &model.Idle{Shared: []string{"buffer"}, Local: []string{"scratch"}},
		Tasks: []*model.Task{
			{ID: "uart", Priority: 3, Vector: "UART0", Shared: []string{"counter"}, Local: []string{"led"}},
			{ID: "worker", Priority: 1, Shared: []string{"counter", "buffer"}, Singleton: true},
			{ID: "logger", Priority: 2, Shared: []string{"buffer"}},
			{ID: "other", Priority: 1},
		},
	}
}

func TestBuild(t *testing.T) {
	r, err := Build(sampleApp(), Platform{MaxPriority: 8, TimerVector: "SysTick"})
	require.NoError(t, err)

	t.Run("ceilings", func(t *testing.T) {
		assert.Equal(t, map[string]int{"counter": 3, "buffer": 2, "spare": 0}, r.Ceilings())
	})

	t.Run("priority map", func(t *testing.T) {
		assert.Equal(t, []int{1, 2, 3}, r.Priorities())
		var ids []string
		for _, task := range r.ByPriority(1) {
			ids = append(ids, task.ID)
		}
		assert.Equal(t, []string{"worker", "other"}, ids)
	})

	t.Run("owners", func(t *testing.T) {
		owner, ok := r.Owner("led")
		assert.True(t, ok)
		assert.Equal(t, "uart", owner)
		owner, _ = r.Owner("scratch")
		assert.Equal(t, IdleID, owner)
	})

	t.Run("vectors ordered by priority", func(t *testing.T) {
		var names []string
		for i, v := range r.Vectors() {
			assert.Equal(t, i, v.Index)
			names = append(names, v.Name)
		}
		assert.Equal(t, []string{"SysTick", "UART0", "SWI1", "SWI0"}, names)
		timer, ok := r.Timer()
		require.True(t, ok)
		assert.Equal(t, 8, timer.Priority)
	})

	t.Run("buckets", func(t *testing.T) {
		low, ok := r.Bucket(1)
		require.True(t, ok)
		assert.Equal(t, 4, low.Capacity)
		assert.Equal(t, "SWI0", r.Vectors()[low.Vector].Name)
		assert.Len(t, low.Tasks, 2)
		mid, ok := r.Bucket(2)
		require.True(t, ok)
		assert.Equal(t, DefaultCapacity, mid.Capacity)
		_, ok = r.Bucket(3)
		assert.False(t, ok)
	})

	t.Run("unused", func(t *testing.T) {
		assert.Equal(t, []string{"spare"}, r.Unused())
	})
}

func TestBuildInvalid(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(app *model.App)
		kind   error
	}{
		{
			name:   "undeclared shared resource",
			mutate: func(app *model.App) { app.Tasks[0].Shared = append(app.Tasks[0].Shared, "missing") },
			kind:   ErrUndeclaredResource,
		},
		{
			name:   "local used as shared",
			mutate: func(app *model.App) { app.Tasks[2].Shared = []string{"led"} },
			kind:   ErrUndeclaredResource,
		},
		{
			name:   "undeclared idle resource",
			mutate: func(app *model.App) { app.Idle.Shared = []string{"nope"} },
			kind:   ErrUndeclaredResource,
		},
		{
			name:   "priority zero",
			mutate: func(app *model.App) { app.Tasks[1].Priority = 0 },
			kind:   ErrPriorityRange,
		},
		{
			name:   "priority above platform",
			mutate: func(app *model.App) { app.Tasks[0].Priority = 9 },
			kind:   ErrPriorityRange,
		},
		{
			name:   "local aliased by two tasks",
			mutate: func(app *model.App) { app.Tasks[2].Local = []string{"led"} },
			kind:   ErrLocalConflict,
		},
		{
			name:   "local aliased by idle",
			mutate: func(app *model.App) { app.Tasks[2].Local = []string{"scratch"} },
			kind:   ErrLocalConflict,
		},
		{
			name:   "insufficient dispatchers",
			mutate: func(app *model.App) { app.Dispatchers = app.Dispatchers[:1] },
			kind:   ErrDispatchers,
		},
		{
			name:   "duplicate task",
			mutate: func(app *model.App) { app.Tasks = append(app.Tasks, &model.Task{ID: "uart", Priority: 1}) },
			kind:   ErrDuplicate,
		},
		{
			name:   "resource both shared and local",
			mutate: func(app *model.App) { app.Local = append(app.Local, "counter") },
			kind:   ErrDuplicate,
		},
		{
			name:   "dispatcher reuses hardware vector",
			mutate: func(app *model.App) { app.Dispatchers[1].Vector = "UART0" },
			kind:   ErrVector,
		},
		{
			name: "two tasks on one vector",
			mutate: func(app *model.App) {
				app.Tasks = append(app.Tasks, &model.Task{ID: "uart2", Priority: 2, Vector: "UART0"})
			},
			kind: ErrVector,
		},
		{
			name:   "hardware singleton",
			mutate: func(app *model.App) { app.Tasks[0].Singleton = true },
			kind:   ErrSingleton,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			app := sampleApp()
			tc.mutate(app)
			r, err := Build(app, Platform{MaxPriority: 8})
			require.Error(t, err)
			assert.Nil(t, r)
			assert.True(t, errors.Is(err, tc.kind), "got %v", err)
			assert.True(t, errors.Is(err, ErrConfig))
		})
	}
}

func TestBuildReportsEveryIssue(t *testing.T) {
	app := sampleApp()
	app.Tasks[0].Priority = 0
	app.Tasks[2].Shared = []string{"ghost"}
	_, err := Build(app, Platform{MaxPriority: 8})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPriorityRange)
	assert.ErrorIs(t, err, ErrUndeclaredResource)
}

func TestBuildTimerCollision(t *testing.T) {
	_, err := Build(sampleApp(), Platform{MaxPriority: 8, TimerVector: "UART0"})
	assert.ErrorIs(t, err, ErrVector)
}

func TestReport(t *testing.T) {
	r, err := Build(sampleApp(), Platform{MaxPriority: 8, TimerVector: "SysTick"})
	require.NoError(t, err)
	data, err := yaml.Marshal(r.Report())
	require.NoError(t, err)

	var report struct {
		Name     string         `yaml:"name"`
		Ceilings map[string]int `yaml:"ceilings"`
		Vectors  []struct {
			Name string `yaml:"name"`
			Kind string `yaml:"kind"`
			Task string `yaml:"task"`
		} `yaml:"vectors"`
		Buckets []struct {
			Priority int      `yaml:"priority"`
			Tasks    []string `yaml:"tasks"`
		} `yaml:"buckets"`
		Unused []string `yaml:"unused"`
	}
	require.NoError(t, yaml.Unmarshal(data, &report))
	assert.Equal(t, "sample", report.Name)
	assert.Equal(t, map[string]int{"counter": 3, "buffer": 2, "spare": 0}, report.Ceilings)
	require.Len(t, report.Vectors, 4)
	assert.Equal(t, "timer", report.Vectors[0].Kind)
	assert.Equal(t, "uart", report.Vectors[1].Task)
	require.Len(t, report.Buckets, 2)
	assert.Equal(t, []string{"worker", "other"}, report.Buckets[0].Tasks)
	assert.Equal(t, []string{"spare"}, report.Unused)
}
