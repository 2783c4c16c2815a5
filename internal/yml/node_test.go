package yml

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestNodeAccessors(t *testing.T) {
	var doc yaml.Node
	require.NoError(t, yaml.Unmarshal([]byte("Name: demo\nShared: [a, b]\nPriority: 3\nSingleton: true\nsolo: x\n"), &doc))
	root := (*Node)(&doc).Root()

	assert.Equal(t, "demo", root.Lookup("name").Value)
	shared, err := root.Lookup("shared").Strings()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, shared)
	solo, err := root.Lookup("SOLO").Strings()
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, solo)
	priority, err := root.Lookup("priority").Int()
	require.NoError(t, err)
	assert.Equal(t, 3, priority)
	singleton, err := root.Lookup("singleton").Bool()
	require.NoError(t, err)
	assert.True(t, singleton)
	_, err = root.Lookup("name").Int()
	assert.Error(t, err)
	assert.Nil(t, root.Lookup("missing"))

	var keys []string
	require.NoError(t, root.Pairs(func(key string, _ *Node) error {
		keys = append(keys, key)
		return nil
	}))
	assert.Equal(t, []string{"Name", "Shared", "Priority", "Singleton", "solo"}, keys)
}

func TestNodeBuilder(t *testing.T) {
	root := (*Node)(NewMap())
	root.Put("name", "demo")
	root.Put("priority", 2)
	root.Put("shared", []string{"a", "b"})
	tasks := (*Node)(NewSlice())
	task := (*Node)(NewMap())
	task.Put("id", "worker")
	task.Put("singleton", true)
	tasks.Append(task)
	root.Put("tasks", tasks)

	data, err := yaml.Marshal((*yaml.Node)(root))
	require.NoError(t, err)
	assert.Equal(t, "name: demo\npriority: 2\nshared: [a, b]\ntasks:\n    - id: worker\n      singleton: true\n", string(data))
}
