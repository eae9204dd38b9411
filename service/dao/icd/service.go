package icd

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/viant/elop/model"
	"github.com/viant/elop/service/meta"
	"github.com/viant/elop/tracing"
)

// Column layout of an ICD row.
const (
	nameField = iota
	componentField
	typeField
	fieldCount
)

// Service decodes interface control documents: delimited rows of
// (name, component, type) with no header.
type Service struct {
	metaService *meta.Service
	comma       rune
	comment     rune
}

// Load reads the ICD at URL.
func (s *Service) Load(ctx context.Context, URL string) (signals model.Signals, err error) {
	ctx, span := tracing.StartSpan(ctx, "icd.load")
	span.WithAttributes(map[string]string{"url": URL})
	defer func() { tracing.EndSpan(span.WithInt("rows", len(signals)), err) }()

	err = s.metaService.Read(ctx, URL, func(reader io.Reader) error {
		var dErr error
		signals, dErr = s.Decode(reader)
		return dErr
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load ICD from %s: %w", URL, err)
	}
	return signals, nil
}

// Decode reads every row as a signal, in order and without trimming. Rows
// with missing columns are padded and flagged; they only fail the lookups
// that match them.
func (s *Service) Decode(reader io.Reader) (model.Signals, error) {
	csvReader := csv.NewReader(reader)
	csvReader.Comma = s.comma
	csvReader.Comment = s.comment
	csvReader.FieldsPerRecord = -1
	csvReader.LazyQuotes = true
	var signals model.Signals
	for {
		record, err := csvReader.Read()
		if errors.Is(err, io.EOF) {
			return signals, nil
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", model.ErrConfig, err)
		}
		fields := record
		if len(record) < fieldCount {
			fields = make([]string, fieldCount)
			copy(fields, record)
		}
		signal := model.Signal{
			Name:      fields[nameField],
			Component: fields[componentField],
			Type:      fields[typeField],
		}
		if len(record) < fieldCount {
			line, _ := csvReader.FieldPos(0)
			signal = signal.Malformed(fmt.Errorf("line %d: expected name, component and type, got %d field(s)", line, len(record)))
		}
		signals = append(signals, signal)
	}
}

// New creates an ICD service
func New(options ...Option) *Service {
	ret := &Service{comma: ','}
	for _, option := range options {
		option(ret)
	}
	if ret.metaService == nil {
		ret.metaService = meta.New(nil, "")
	}
	if ret.comma == 0 {
		ret.comma = ','
	}
	return ret
}
