package meta

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/afs"
	_ "github.com/viant/afs/mem"
	"gopkg.in/yaml.v3"
)

func TestServiceLoad(t *testing.T) {
	ctx := context.Background()
	fs := afs.New()
	require.NoError(t, fs.Upload(ctx, "mem://localhost/decl/app.yaml", 0644, strings.NewReader("name: ${env.RTSCHED_APP}\n")))
	os.Setenv("RTSCHED_APP", "blinky")
	defer os.Unsetenv("RTSCHED_APP")

	srv := New(fs, "mem://localhost/decl")
	assert.Equal(t, "mem://localhost/decl/app.yaml", srv.URL("app.yaml"))
	assert.Equal(t, "mem://localhost/other.yaml", srv.URL("mem://localhost/other.yaml"))

	ok, err := srv.Exists(ctx, "app.yaml")
	require.NoError(t, err)
	assert.True(t, ok)

	var doc struct {
		Name string `yaml:"name"`
	}
	require.NoError(t, srv.Load(ctx, "app.yaml", &doc))
	assert.Equal(t, "blinky", doc.Name)

	var node yaml.Node
	require.NoError(t, srv.Load(ctx, "app.yaml", &node))
	assert.Equal(t, yaml.DocumentNode, node.Kind)

	assert.Error(t, srv.Load(ctx, "missing.yaml", &doc))
}
