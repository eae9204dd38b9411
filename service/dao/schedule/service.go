package schedule

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/viant/elop/internal/yml"
	"github.com/viant/elop/model"
	"github.com/viant/elop/service/meta"
	"github.com/viant/elop/tracing"
	"gopkg.in/yaml.v3"
)

// Service decodes schedule documents of the form
//
//	defs:
//	  LEW: 100
//	queue:
//	  - [0, A]
//	  - [40, B, 10]
//	  - {offset: 70, task: A}
type Service struct {
	metaService *meta.Service
}

// Load reads the schedule at URL.
func (s *Service) Load(ctx context.Context, URL string) (schedule *model.Schedule, err error) {
	ctx, span := tracing.StartSpan(ctx, "schedule.load")
	span.WithAttributes(map[string]string{"url": URL})
	defer func() {
		if schedule != nil {
			span.WithInt("slots", len(schedule.Queue)).WithInt("lew", schedule.Defs.LEW)
		}
		tracing.EndSpan(span, err)
	}()

	err = s.metaService.Read(ctx, URL, func(reader io.Reader) error {
		var dErr error
		schedule, dErr = s.Decode(reader)
		return dErr
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load schedule from %s: %w", URL, err)
	}
	return schedule, nil
}

// DecodeYAML decodes a schedule from YAML
func (s *Service) DecodeYAML(encoded []byte) (*model.Schedule, error) {
	return s.Decode(bytes.NewReader(encoded))
}

// Decode decodes the first YAML document of reader. Only YAML syntax errors
// fail; a missing LEW or a malformed structure is recorded on the schedule
// and reported when it is queried.
func (s *Service) Decode(reader io.Reader) (*model.Schedule, error) {
	var node yaml.Node
	if err := yaml.NewDecoder(reader).Decode(&node); err != nil {
		if errors.Is(err, io.EOF) {
			return &model.Schedule{}, nil
		}
		return nil, fmt.Errorf("%w: %v", model.ErrConfig, err)
	}
	ret := &model.Schedule{}
	root := (*yml.Node)(&node).Root()
	if root.IsNull() {
		return ret, nil
	}
	if err := s.parseSchedule(root, ret); err != nil {
		ret.Invalidate(err)
	}
	return ret, nil
}

func (s *Service) parseSchedule(root *yml.Node, schedule *model.Schedule) error {
	return root.Pairs(func(key string, value *yml.Node) error {
		if value.IsNull() {
			return nil
		}
		switch strings.ToLower(key) {
		case "defs":
			if err := parseDefs(value, &schedule.Defs); err != nil {
				return fmt.Errorf("defs: %w", err)
			}
		case "queue":
			queue, err := parseQueue(value)
			if err != nil {
				return fmt.Errorf("queue: %w", err)
			}
			schedule.Queue = queue
		}
		return nil
	})
}

func parseDefs(node *yml.Node, defs *model.Defs) error {
	return node.Pairs(func(key string, value *yml.Node) error {
		if strings.EqualFold(key, "lew") {
			if value.IsNull() {
				return nil
			}
			lew, err := value.Int()
			if err != nil {
				return fmt.Errorf("LEW: %w", err)
			}
			defs.LEW = lew
			return nil
		}
		if defs.Extra == nil {
			defs.Extra = map[string]interface{}{}
		}
		defs.Extra[key] = value.Interface()
		return nil
	})
}

func parseQueue(node *yml.Node) ([]model.Slot, error) {
	queue := make([]model.Slot, 0, len(node.Content))
	err := node.Items(func(index int, item *yml.Node) error {
		var slot model.Slot
		var err error
		switch item.Kind {
		case yaml.MappingNode:
			err = parseSlotMapping(item, &slot)
		default:
			err = parseSlotSequence(item, &slot)
		}
		if err != nil {
			return fmt.Errorf("entry %d: %w", index, err)
		}
		queue = append(queue, slot)
		return nil
	})
	return queue, err
}

// parseSlotSequence decodes [offset, task] with an optional trailing duration.
func parseSlotSequence(item *yml.Node, slot *model.Slot) error {
	if item.Kind != yaml.SequenceNode || len(item.Content) < 2 || len(item.Content) > 3 {
		return fmt.Errorf("line %d: expected [offset, task] or [offset, task, duration]", item.Line)
	}
	return item.Items(func(index int, field *yml.Node) error {
		var err error
		switch index {
		case 0:
			slot.Offset, err = field.Int()
		case 1:
			slot.Task, err = field.Text()
		case 2:
			slot.Duration, err = field.Int()
		}
		return err
	})
}

func parseSlotMapping(item *yml.Node, slot *model.Slot) error {
	hasOffset, hasTask := false, false
	err := item.Pairs(func(key string, field *yml.Node) error {
		var err error
		switch strings.ToLower(key) {
		case "offset", "start":
			slot.Offset, err = field.Int()
			hasOffset = true
		case "task":
			slot.Task, err = field.Text()
			hasTask = true
		case "duration":
			if !field.IsNull() {
				slot.Duration, err = field.Int()
			}
		}
		return err
	})
	if err != nil {
		return err
	}
	if !hasOffset || !hasTask {
		return fmt.Errorf("line %d: slot requires offset and task", item.Line)
	}
	return nil
}

// New creates a schedule service
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
