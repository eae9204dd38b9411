package model

// Signal is a single interface control document row.
type Signal struct {
	Name      string `json:"name" yaml:"name"`
	Component string `json:"component" yaml:"component"`
	Type      string `json:"type" yaml:"type"`

	err error
}

// Malformed returns a copy of s flagged with the reason its row is incomplete.
func (s Signal) Malformed(reason error) Signal {
	s.err = reason
	return s
}

// Err returns why the row is incomplete, or nil for a well formed row.
func (s Signal) Err() error {
	return s.err
}

// Signals is the ICD table in file order.
type Signals []Signal

// Lookup returns the first signal named name. Names are compared exactly.
func (s Signals) Lookup(name string) (Signal, bool) {
	for i := range s {
		if s[i].Name == name {
			return s[i], true
		}
	}
	return Signal{}, false
}

func (s Signals) clone() Signals {
	if s == nil {
		return nil
	}
	return append(Signals(nil), s...)
}
