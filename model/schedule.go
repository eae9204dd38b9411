package model

import "fmt"

type (
	// Slot is a single queue entry of the cyclic schedule.
	Slot struct {
		Offset int    `json:"offset" yaml:"offset"`
		Task   string `json:"task" yaml:"task"`
		// Duration is carried through from the source but not used for resolution.
		Duration int `json:"duration,omitempty" yaml:"duration,omitempty"`
	}

	// Defs holds schedule definitions; only LEW is interpreted.
	Defs struct {
		LEW   int                    `json:"LEW" yaml:"LEW"`
		Extra map[string]interface{} `json:"extra,omitempty" yaml:"extra,omitempty"`
	}

	// Schedule is a repeating cycle of LEW time units executing Queue in order.
	Schedule struct {
		Defs  Defs   `json:"defs" yaml:"defs"`
		Queue []Slot `json:"queue" yaml:"queue"`

		err error
	}

	// Occurrence locates a resolved slot: Time is the slot offset shifted by
	// the elapsed cycle offset, Index the raw queue position reached by the scan.
	Occurrence struct {
		Time  int `json:"time"`
		Index int `json:"index"`
	}
)

// Invalidate records a structural defect found while decoding. Resolution
// then fails with ErrConfig; the rest of the environment stays usable.
func (s *Schedule) Invalidate(err error) {
	s.err = err
}

// Err returns the recorded structural defect, or nil.
func (s *Schedule) Err() error {
	if s == nil {
		return nil
	}
	return s.err
}

// Window returns the logical execution window or ErrConfig when it is not
// positive or the schedule is malformed.
func (s *Schedule) Window() (int, error) {
	if s != nil && s.err != nil {
		return 0, fmt.Errorf("%w: malformed schedule: %v", ErrConfig, s.err)
	}
	if s == nil || s.Defs.LEW <= 0 {
		lew := 0
		if s != nil {
			lew = s.Defs.LEW
		}
		return 0, fmt.Errorf("%w: logical execution window must be > 0, got %d", ErrConfig, lew)
	}
	return s.Defs.LEW, nil
}

// Next finds the next slot running task at or after startTime, scanning the
// queue from startPos for two full lengths so that wraparound is covered.
// Both startTime and startPos are reduced modulo the window and the queue
// length before scanning.
func (s *Schedule) Next(task string, startTime, startPos int) (Occurrence, bool, error) {
	lew, err := s.Window()
	if err != nil {
		return Occurrence{}, false, err
	}
	size := len(s.Queue)
	if size == 0 {
		return Occurrence{}, false, nil
	}
	startTime = floorMod(startTime, lew)
	startPos = floorMod(startPos, size)
	// always zero after normalization; kept so reported times stay cycle relative
	cycleOffset := startTime / lew

	for i := startPos; i < startPos+2*size; i++ {
		slot := s.Queue[i%size]
		if slot.Offset >= startTime && slot.Task == task {
			return Occurrence{Time: slot.Offset + cycleOffset, Index: i}, true, nil
		}
	}
	return Occurrence{}, false, nil
}

func (s *Schedule) clone() *Schedule {
	if s == nil {
		return &Schedule{}
	}
	ret := &Schedule{Defs: Defs{LEW: s.Defs.LEW}, err: s.err}
	if s.Defs.Extra != nil {
		ret.Defs.Extra = make(map[string]interface{}, len(s.Defs.Extra))
		for k, v := range s.Defs.Extra {
			ret.Defs.Extra[k] = v
		}
	}
	if s.Queue != nil {
		ret.Queue = append([]Slot(nil), s.Queue...)
	}
	return ret
}

func floorMod(value, n int) int {
	m := value % n
	if m < 0 {
		m += n
	}
	return m
}
