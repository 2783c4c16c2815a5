package app

import (
	"context"
	"embed"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/afs"
	_ "github.com/viant/afs/embed"
	"github.com/viant/rtsched/model"
	"github.com/viant/rtsched/service/dao"
	"github.com/viant/rtsched/service/meta"
)

//go:embed testdata/*
var embedFS embed.FS

func newService() *Service {
	return New(WithMetaService(meta.New(afs.New(), "embed:///testdata", &embedFS)))
}

func TestLoad(t *testing.T) {
	srv := newService()
	ctx := context.Background()

	app, err := srv.Load(ctx, "blinky")
	require.NoError(t, err)
	assert.Equal(t, &model.App{
		Name:        "blinky",
		Dispatchers: []*model.Dispatcher{{Vector: "SWI0", Capacity: 4}, {Vector: "SWI1"}},
		Shared:      []string{"counter", "buffer"},
		Local:       []string{"led", "scratch"},
		Idle:        &model.Idle{Shared: []string{"buffer"}, Local: []string{"scratch"}},
		Tasks: []*model.Task{
			{ID: "uart", Priority: 3, Vector: "UART0", Shared: []string{"counter"}, Local: []string{"led"}},
			{ID: "worker", Priority: 1, Shared: []string{"counter", "buffer"}, Singleton: true},
			{ID: "logger", Priority: 2, Shared: []string{"buffer"}},
		},
	}, app)

	cached, err := srv.Load(ctx, "blinky.yaml")
	require.NoError(t, err)
	assert.Same(t, app, cached)
	srv.Refresh("blinky.yaml")
	_, err = srv.Cached("blinky.yaml")
	assert.ErrorIs(t, err, dao.ErrNotFound)

	keyed, err := srv.Load(ctx, "keyed.yaml")
	require.NoError(t, err)
	assert.Equal(t, "keyed", keyed.Name)
	require.Len(t, keyed.Tasks, 2)
	assert.Equal(t, "button", keyed.Tasks[0].ID)
	assert.Equal(t, "GPIO0", keyed.Tasks[0].Vector)
	assert.True(t, keyed.Tasks[0].IsHardware())
	assert.Equal(t, model.BindingSoftware, keyed.Tasks[1].Binding())

	_, err = srv.Load(ctx, "")
	assert.ErrorIs(t, err, dao.ErrInvalidID)
	_, err = srv.Load(ctx, "missing.yaml")
	assert.Error(t, err)
}

func TestDecodeYAMLInvalid(t *testing.T) {
	testCases := []struct {
		name string
		yaml string
	}{
		{name: "not a mapping", yaml: "- a\n- b\n"},
		{name: "unknown key", yaml: "tasks: []\nextra: 1\n"},
		{name: "bad priority", yaml: "tasks:\n  - id: a\n    priority: high\n"},
		{name: "bad singleton", yaml: "tasks:\n  - id: a\n    singleton: maybe\n"},
		{name: "task is scalar", yaml: "tasks:\n  - a\n"},
		{name: "unknown dispatcher key", yaml: "dispatchers:\n  - vector: SWI0\n    size: 2\n"},
		{name: "idle is a list", yaml: "idle: [a]\n"},
	}
	srv := New()
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := srv.DecodeYAML([]byte(tc.yaml))
			assert.Error(t, err)
		})
	}
	assert.ErrorIs(t, srv.Upsert("x", nil), dao.ErrNilEntity)
}
