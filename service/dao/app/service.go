package app

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/viant/afs"
	"github.com/viant/rtsched/internal/yml"
	"github.com/viant/rtsched/model"
	"github.com/viant/rtsched/service/dao"
	"github.com/viant/rtsched/service/meta"
	"gopkg.in/yaml.v3"
)

// Service loads application declarations and caches them by location.
type Service struct {
	metaService *meta.Service
	mu          sync.RWMutex
	cache       map[string]*model.App
}

// New creates a declaration service.
func New(options ...Option) *Service {
	s := &Service{cache: map[string]*model.App{}}
	for _, opt := range options {
		opt(s)
	}
	if s.metaService == nil {
		s.metaService = meta.New(afs.New(), "")
	}
	return s
}

// DecodeYAML decodes a declaration from YAML
func (s *Service) DecodeYAML(encoded []byte) (*model.App, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(encoded, &node); err != nil {
		return nil, err
	}
	return s.Parse("", &node)
}

// Load loads a declaration from YAML at the specified URL; a location
// without extension gets ".yaml". Loaded declarations are cached until
// Refresh.
func (s *Service) Load(ctx context.Context, URL string) (*model.App, error) {
	if URL == "" {
		return nil, dao.ErrInvalidID
	}
	if filepath.Ext(URL) == "" {
		URL += ".yaml"
	}
	if app, err := s.Cached(URL); err == nil {
		return app, nil
	}
	var node yaml.Node
	if err := s.metaService.Load(ctx, URL, &node); err != nil {
		return nil, fmt.Errorf("failed to load declaration from %s: %w", URL, err)
	}
	app, err := s.Parse(URL, &node)
	if err != nil {
		return nil, err
	}
	return app, s.Upsert(URL, app)
}

// Cached returns a previously loaded declaration.
func (s *Service) Cached(URL string) (*model.App, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	app, ok := s.cache[URL]
	if !ok {
		return nil, fmt.Errorf("%w: %s", dao.ErrNotFound, URL)
	}
	return app, nil
}

// Upsert stores a declaration under URL.
func (s *Service) Upsert(URL string, app *model.App) error {
	if URL == "" {
		return dao.ErrInvalidID
	}
	if app == nil {
		return dao.ErrNilEntity
	}
	s.mu.Lock()
	s.cache[URL] = app
	s.mu.Unlock()
	return nil
}

// Refresh discards the cached copy of URL.
func (s *Service) Refresh(URL string) {
	s.mu.Lock()
	delete(s.cache, URL)
	s.mu.Unlock()
}

// Parse converts a YAML document into a declaration. Keys are matched
// case-insensitively; the name defaults to the file name of URL.
func (s *Service) Parse(URL string, node *yaml.Node) (*model.App, error) {
	app := &model.App{Name: nameFromURL(URL)}
	root := (*yml.Node)(node).Root()
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("failed to parse declaration %s: expected mapping", URL)
	}
	if err := parseApp(root, app); err != nil {
		return nil, fmt.Errorf("failed to parse declaration %s: %w", URL, err)
	}
	return app, nil
}

func nameFromURL(URL string) string {
	if URL == "" {
		return ""
	}
	base := filepath.Base(URL)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func parseApp(node *yml.Node, app *model.App) error {
	return node.Pairs(func(key string, value *yml.Node) error {
		var err error
		switch strings.ToLower(key) {
		case "name":
			app.Name = value.Value
		case "dispatchers":
			app.Dispatchers, err = parseDispatchers(value)
		case "shared":
			app.Shared, err = value.Strings()
		case "local":
			app.Local, err = value.Strings()
		case "idle":
			app.Idle, err = parseIdle(value)
		case "tasks":
			app.Tasks, err = parseTasks(value)
		default:
			return fmt.Errorf("line %d: unsupported key %q", value.Line, key)
		}
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		return nil
	})
}

func parseDispatchers(node *yml.Node) ([]*model.Dispatcher, error) {
	if node.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("line %d: expected sequence", node.Line)
	}
	var result []*model.Dispatcher
	err := node.Items(func(_ int, item *yml.Node) error {
		if item.Kind == yaml.ScalarNode {
			result = append(result, &model.Dispatcher{Vector: item.Value})
			return nil
		}
		if item.Kind != yaml.MappingNode {
			return fmt.Errorf("line %d: expected vector name or mapping", item.Line)
		}
		dispatcher := &model.Dispatcher{}
		if err := item.Pairs(func(key string, value *yml.Node) error {
			var err error
			switch strings.ToLower(key) {
			case "vector":
				dispatcher.Vector = value.Value
			case "capacity":
				dispatcher.Capacity, err = value.Int()
			default:
				err = fmt.Errorf("line %d: unsupported key %q", value.Line, key)
			}
			return err
		}); err != nil {
			return err
		}
		result = append(result, dispatcher)
		return nil
	})
	return result, err
}

func parseIdle(node *yml.Node) (*model.Idle, error) {
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: expected mapping", node.Line)
	}
	idle := &model.Idle{}
	err := node.Pairs(func(key string, value *yml.Node) error {
		var err error
		switch strings.ToLower(key) {
		case "shared":
			idle.Shared, err = value.Strings()
		case "local":
			idle.Local, err = value.Strings()
		default:
			err = fmt.Errorf("line %d: unsupported key %q", value.Line, key)
		}
		return err
	})
	return idle, err
}

// parseTasks accepts a sequence of task mappings or a mapping keyed by id.
func parseTasks(node *yml.Node) ([]*model.Task, error) {
	var result []*model.Task
	switch node.Kind {
	case yaml.SequenceNode:
		err := node.Items(func(_ int, item *yml.Node) error {
			task, err := parseTask("", item)
			if err == nil {
				result = append(result, task)
			}
			return err
		})
		return result, err
	case yaml.MappingNode:
		err := node.Pairs(func(id string, item *yml.Node) error {
			task, err := parseTask(id, item)
			if err == nil {
				result = append(result, task)
			}
			return err
		})
		return result, err
	}
	return nil, fmt.Errorf("line %d: expected sequence or mapping", node.Line)
}

func parseTask(id string, node *yml.Node) (*model.Task, error) {
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: task should be a mapping", node.Line)
	}
	task := &model.Task{ID: id}
	if idNode := node.Lookup("id"); idNode != nil {
		task.ID = idNode.Value
	}
	err := node.Pairs(func(key string, value *yml.Node) error {
		var err error
		switch strings.ToLower(key) {
		case "id":
			task.ID = value.Value
		case "priority":
			task.Priority, err = value.Int()
		case "vector", "binds":
			task.Vector = value.Value
		case "shared":
			task.Shared, err = value.Strings()
		case "local":
			task.Local, err = value.Strings()
		case "singleton":
			task.Singleton, err = value.Bool()
		default:
			err = fmt.Errorf("line %d: unsupported key %q", value.Line, key)
		}
		if err != nil {
			return fmt.Errorf("task %s: %w", task.ID, err)
		}
		return nil
	})
	return task, err
}
