package ssm

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/viant/elop/internal/yml"
	"github.com/viant/elop/model"
	"github.com/viant/elop/service/meta"
	"github.com/viant/elop/tracing"
	"gopkg.in/yaml.v3"
)

// Service decodes state machine documents: a mapping of state to a mapping
// of task to the ordered list of components it runs.
type Service struct {
	metaService *meta.Service
}

// Load reads the state machine at URL.
func (s *Service) Load(ctx context.Context, URL string) (machine *model.StateMachine, err error) {
	ctx, span := tracing.StartSpan(ctx, "ssm.load")
	span.WithAttributes(map[string]string{"url": URL})
	defer func() {
		if machine != nil {
			span.WithInt("states", len(machine.States))
		}
		tracing.EndSpan(span, err)
	}()

	err = s.metaService.Read(ctx, URL, func(reader io.Reader) error {
		var dErr error
		machine, dErr = s.Decode(reader)
		return dErr
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load state machine from %s: %w", URL, err)
	}
	return machine, nil
}

// DecodeYAML decodes a state machine from YAML
func (s *Service) DecodeYAML(encoded []byte) (*model.StateMachine, error) {
	return s.Decode(bytes.NewReader(encoded))
}

// Decode decodes the first YAML document of reader; later documents are
// ignored and an empty document yields an empty state machine. A repeated
// state or task key keeps its first position and its last value. Only YAML
// syntax errors fail; a malformed structure is recorded on the machine and
// reported by task lookups.
func (s *Service) Decode(reader io.Reader) (*model.StateMachine, error) {
	var node yaml.Node
	if err := yaml.NewDecoder(reader).Decode(&node); err != nil {
		if errors.Is(err, io.EOF) {
			return &model.StateMachine{}, nil
		}
		return nil, fmt.Errorf("%w: %v", model.ErrConfig, err)
	}
	ret := &model.StateMachine{}
	root := (*yml.Node)(&node).Root()
	if root.IsNull() {
		return ret, nil
	}
	positions := map[string]int{}
	err := root.Pairs(func(name string, value *yml.Node) error {
		state, err := parseState(name, value)
		if err != nil {
			return fmt.Errorf("state %s: %w", name, err)
		}
		if i, ok := positions[name]; ok {
			ret.States[i] = state
			return nil
		}
		positions[name] = len(ret.States)
		ret.States = append(ret.States, state)
		return nil
	})
	if err != nil {
		ret.Invalidate(err)
	}
	return ret, nil
}

func parseState(name string, node *yml.Node) (model.State, error) {
	state := model.State{Name: name}
	if node.IsNull() {
		return state, nil
	}
	positions := map[string]int{}
	err := node.Pairs(func(taskName string, value *yml.Node) error {
		task := model.Task{Name: taskName}
		if !value.IsNull() {
			err := value.Items(func(_ int, item *yml.Node) error {
				component, err := item.Text()
				if err != nil {
					return fmt.Errorf("task %s: %w", taskName, err)
				}
				task.Components = append(task.Components, component)
				return nil
			})
			if err != nil {
				return err
			}
		}
		if i, ok := positions[taskName]; ok {
			state.Tasks[i] = task
			return nil
		}
		positions[taskName] = len(state.Tasks)
		state.Tasks = append(state.Tasks, task)
		return nil
	})
	return state, err
}

// New creates a state machine service
func New(options ...Option) *Service {
	ret := &Service{}
	for _, option := range options {
		option(ret)
	}
	if ret.metaService == nil {
		ret.metaService = meta.New(nil, "")
	}
	return ret
}
