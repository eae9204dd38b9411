package model

import (
	"fmt"
	"time"
)

// Source records where the environment tables were loaded from.
type Source struct {
	ICD          string `json:"icd,omitempty" yaml:"icd,omitempty"`
	Schedule     string `json:"schedule,omitempty" yaml:"schedule,omitempty"`
	StateMachine string `json:"stateMachine,omitempty" yaml:"stateMachine,omitempty"`
}

// Environment is a read-only view over the ICD, schedule and state machine
// tables. It is safe for concurrent use: no method mutates it and accessors
// hand out copies.
type Environment struct {
	// ID identifies the loaded snapshot; empty for environments built in memory.
	ID       string
	Source   *Source
	LoadedAt time.Time

	signals  Signals
	schedule *Schedule
	machine  *StateMachine
}

// NewEnvironment builds an environment from already decoded tables. The
// tables are copied as they are; nothing is normalized.
func NewEnvironment(signals []Signal, schedule *Schedule, machine *StateMachine) *Environment {
	return &Environment{
		signals:  Signals(signals).clone(),
		schedule: schedule.clone(),
		machine:  machine.clone(),
	}
}

// Signals returns a copy of the ICD table.
func (e *Environment) Signals() []Signal {
	return e.signals.clone()
}

// Schedule returns a copy of the schedule table.
func (e *Environment) Schedule() *Schedule {
	return e.schedule.clone()
}

// StateMachine returns a copy of the state machine table.
func (e *Environment) StateMachine() *StateMachine {
	return e.machine.clone()
}

// States returns the declared state names in file order.
func (e *Environment) States() []string {
	ret := make([]string, 0, len(e.machine.States))
	for _, state := range e.machine.States {
		ret = append(ret, state.Name)
	}
	return ret
}

// Signal returns the first ICD row named name. A matching row with missing
// columns fails with ErrConfig.
func (e *Environment) Signal(name string) (Signal, bool, error) {
	signal, ok := e.signals.Lookup(name)
	if ok && signal.err != nil {
		return Signal{}, false, fmt.Errorf("%w: signal %q: %v", ErrConfig, name, signal.err)
	}
	return signal, ok, nil
}

// ComponentForSignal returns the software component owning signal name.
func (e *Environment) ComponentForSignal(name string) (string, bool, error) {
	signal, ok, err := e.Signal(name)
	if err != nil || !ok {
		return "", false, err
	}
	return signal.Component, true, nil
}

// TaskScheduling resolves the next slot executing task at or after startTime,
// searching the queue from startPos. Absence is reported with ok == false; a
// non-positive window fails with ErrConfig.
func (e *Environment) TaskScheduling(task string, startTime, startPos int) (Occurrence, bool, error) {
	return e.schedule.Next(task, startTime, startPos)
}

// Task returns the task running component while in state. An undeclared
// state fails with ErrInvalidState; an unassigned component yields ok == false.
func (e *Environment) Task(state, component string) (Assignment, bool, error) {
	if e.machine.err != nil {
		return Assignment{}, false, fmt.Errorf("%w: malformed state machine: %v", ErrConfig, e.machine.err)
	}
	declared, ok := e.machine.State(state)
	if !ok {
		return Assignment{}, false, fmt.Errorf("%w: %q", ErrInvalidState, state)
	}
	assignment, ok := declared.Assignment(component)
	return assignment, ok, nil
}
