package model

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEnvironment() *Environment {
	return NewEnvironment(
		[]Signal{
			{Name: "spd", Component: "EngineCtrl", Type: "float"},
			{Name: "rpm", Component: "EngineCtrl", Type: "int"},
			{Name: "spd", Component: "BrakeCtrl", Type: "double"},
			Signal{Name: "brk"}.Malformed(errors.New("line 4: expected name, component and type, got 1 field(s)")),
		},
		&Schedule{
			Defs:  Defs{LEW: 100},
			Queue: []Slot{{Offset: 0, Task: "A"}, {Offset: 40, Task: "B"}, {Offset: 70, Task: "A"}},
		},
		&StateMachine{States: []State{
			{Name: "IDLE", Tasks: []Task{
				{Name: "T1", Components: []string{"CompX", "CompY"}},
				{Name: "T2", Components: []string{"CompZ"}},
			}},
			{Name: "RUN", Tasks: []Task{
				{Name: "T2", Components: []string{"CompZ", "CompY"}},
				{Name: "T1", Components: []string{"CompY"}},
			}},
		}},
	)
}

func TestEnvironment_Signal(t *testing.T) {
	env := newTestEnvironment()
	testCases := []struct {
		description string
		name        string
		expect      Signal
		expectOK    bool
		expectErr   bool
	}{
		{description: "unique name", name: "rpm", expect: Signal{Name: "rpm", Component: "EngineCtrl", Type: "int"}, expectOK: true},
		{description: "duplicate name prefers file order", name: "spd", expect: Signal{Name: "spd", Component: "EngineCtrl", Type: "float"}, expectOK: true},
		{description: "missing name", name: "temp"},
		{description: "no case folding", name: "RPM"},
		{description: "no partial match", name: "rp"},
		{description: "row with missing columns", name: "brk", expectErr: true},
	}
	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			actual, ok, err := env.Signal(tc.name)
			if tc.expectErr {
				assert.ErrorIs(t, err, ErrConfig)
				assert.Contains(t, err.Error(), "line 4")
				assert.False(t, ok)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expectOK, ok)
			assert.Equal(t, tc.expect, actual)
		})
	}
}

func TestEnvironment_ComponentForSignal(t *testing.T) {
	env := newTestEnvironment()
	swc, ok, err := env.ComponentForSignal("rpm")
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "EngineCtrl", swc)

	swc, ok, err = env.ComponentForSignal("temp")
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, "", swc)

	_, ok, err = env.ComponentForSignal("brk")
	assert.ErrorIs(t, err, ErrConfig)
	assert.False(t, ok)

	for _, name := range []string{"spd", "rpm", "temp"} {
		signal, found, err := env.Signal(name)
		require.NoError(t, err)
		component, ok, err := env.ComponentForSignal(name)
		require.NoError(t, err)
		assert.Equal(t, found, ok, name)
		if found {
			assert.Equal(t, signal.Component, component, name)
		}
	}
}

func TestEnvironment_TaskScheduling(t *testing.T) {
	env := newTestEnvironment()
	testCases := []struct {
		description string
		task        string
		startTime   int
		startPos    int
		expect      Occurrence
		expectOK    bool
	}{
		{description: "defaults", task: "A", expect: Occurrence{Time: 0, Index: 0}, expectOK: true},
		{description: "first A at or after 50", task: "A", startTime: 50, expect: Occurrence{Time: 70, Index: 2}, expectOK: true},
		{description: "start time normalized into window", task: "A", startTime: 250, expect: Occurrence{Time: 70, Index: 2}, expectOK: true},
		{description: "negative start time wraps", task: "B", startTime: -70, expect: Occurrence{Time: 40, Index: 1}, expectOK: true},
		{description: "wraparound keeps raw index", task: "B", startPos: 2, expect: Occurrence{Time: 40, Index: 4}, expectOK: true},
		{description: "start position normalized", task: "B", startPos: 5, expect: Occurrence{Time: 40, Index: 4}, expectOK: true},
		{description: "later in time but earlier in queue", task: "A", startTime: 60, startPos: 1, expect: Occurrence{Time: 70, Index: 2}, expectOK: true},
		{description: "no slot left in cycle", task: "B", startTime: 41},
		{description: "unknown task", task: "C"},
	}
	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			actual, ok, err := env.TaskScheduling(tc.task, tc.startTime, tc.startPos)
			require.NoError(t, err)
			assert.Equal(t, tc.expectOK, ok)
			assert.Equal(t, tc.expect, actual)
		})
	}
}

func TestEnvironment_TaskScheduling_Periodic(t *testing.T) {
	env := newTestEnvironment()
	for _, task := range []string{"A", "B"} {
		for startTime := 0; startTime < 100; startTime += 7 {
			for pos := 0; pos < 3; pos++ {
				expect, expectOK, err := env.TaskScheduling(task, startTime, pos)
				require.NoError(t, err)
				for k := 1; k <= 3; k++ {
					actual, ok, err := env.TaskScheduling(task, startTime+k*100, pos)
					require.NoError(t, err)
					assert.Equal(t, expectOK, ok)
					assert.Equal(t, expect, actual)
				}
			}
		}
	}
}

func TestEnvironment_TaskScheduling_StartPosition(t *testing.T) {
	env := newTestEnvironment()
	size := len(env.Schedule().Queue)
	for _, startTime := range []int{0, 30, 40, 65, 70} {
		for _, pos := range []int{0, size - 1} {
			actual, ok, err := env.TaskScheduling("A", startTime, pos)
			require.NoError(t, err)
			require.True(t, ok)
			assert.GreaterOrEqual(t, actual.Time, startTime%100)
			assert.Equal(t, "A", env.Schedule().Queue[actual.Index%size].Task)
		}
	}
}

func TestEnvironment_TaskScheduling_Config(t *testing.T) {
	malformed := &Schedule{Defs: Defs{LEW: 10}, Queue: []Slot{{Task: "A"}}}
	malformed.Invalidate(errors.New("queue: entry 1: expected [offset, task]"))
	testCases := []struct {
		description string
		schedule    *Schedule
		expectErr   bool
	}{
		{description: "zero window", schedule: &Schedule{Queue: []Slot{{Task: "A"}}}, expectErr: true},
		{description: "negative window", schedule: &Schedule{Defs: Defs{LEW: -10}, Queue: []Slot{{Task: "A"}}}, expectErr: true},
		{description: "nil schedule", expectErr: true},
		{description: "empty queue", schedule: &Schedule{Defs: Defs{LEW: 10}}},
		{description: "malformed structure", schedule: malformed, expectErr: true},
	}
	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			env := NewEnvironment(nil, tc.schedule, nil)
			_, ok, err := env.TaskScheduling("A", 0, 0)
			assert.False(t, ok)
			if tc.expectErr {
				assert.True(t, errors.Is(err, ErrConfig))
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestEnvironment_Task(t *testing.T) {
	env := newTestEnvironment()
	testCases := []struct {
		description string
		state       string
		component   string
		expect      Assignment
		expectOK    bool
		expectErr   error
	}{
		{description: "second component of first task", state: "IDLE", component: "CompY", expect: Assignment{Task: "T1", Index: 1}, expectOK: true},
		{description: "first match in file order", state: "RUN", component: "CompY", expect: Assignment{Task: "T2", Index: 1}, expectOK: true},
		{description: "unassigned component", state: "IDLE", component: "CompW"},
		{description: "unknown state", state: "STOP", component: "CompY", expectErr: ErrInvalidState},
	}
	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			actual, ok, err := env.Task(tc.state, tc.component)
			if tc.expectErr != nil {
				assert.True(t, errors.Is(err, tc.expectErr))
				assert.False(t, ok)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expectOK, ok)
			assert.Equal(t, tc.expect, actual)
			if ok {
				state, _ := env.StateMachine().State(tc.state)
				components, _ := state.Task(actual.Task)
				assert.Equal(t, tc.component, components[actual.Index])
			}
		})
	}
}

func TestEnvironment_ReadOnly(t *testing.T) {
	signals := []Signal{{Name: "rpm", Component: "EngineCtrl", Type: "int"}}
	schedule := &Schedule{Defs: Defs{LEW: 10, Extra: map[string]interface{}{"unit": "ms"}}, Queue: []Slot{{Offset: 1, Task: "A"}}}
	machine := &StateMachine{States: []State{{Name: "IDLE", Tasks: []Task{{Name: "T1", Components: []string{"CompX"}}}}}}
	env := NewEnvironment(signals, schedule, machine)

	signals[0].Component = "changed"
	schedule.Queue[0].Task = "changed"
	schedule.Defs.Extra["unit"] = "changed"
	machine.States[0].Tasks[0].Components[0] = "changed"

	view := env.Signals()
	view[0].Name = "changed"
	env.Schedule().Queue[0].Offset = 99
	env.StateMachine().States[0].Name = "changed"

	assert.Equal(t, []Signal{{Name: "rpm", Component: "EngineCtrl", Type: "int"}}, env.Signals())
	assert.Equal(t, []Slot{{Offset: 1, Task: "A"}}, env.Schedule().Queue)
	assert.Equal(t, "ms", env.Schedule().Defs.Extra["unit"])
	assert.Equal(t, []string{"IDLE"}, env.States())
	assignment, ok, err := env.Task("IDLE", "CompX")
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, Assignment{Task: "T1", Index: 0}, assignment)
}

func TestEnvironment_MalformedStateMachine(t *testing.T) {
	machine := &StateMachine{States: []State{{Name: "IDLE", Tasks: []Task{{Name: "T1", Components: []string{"CompX"}}}}}}
	machine.Invalidate(errors.New("state RUN: expected mapping, got sequence"))
	env := NewEnvironment([]Signal{{Name: "rpm", Component: "EngineCtrl", Type: "int"}}, &Schedule{Defs: Defs{LEW: 10}}, machine)

	_, ok, err := env.Task("IDLE", "CompX")
	assert.ErrorIs(t, err, ErrConfig)
	assert.False(t, ok)
	assert.Error(t, env.StateMachine().Err())

	swc, ok, err := env.ComponentForSignal("rpm")
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "EngineCtrl", swc)
}

func TestEnvironment_ConcurrentQueries(t *testing.T) {
	env := newTestEnvironment()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				swc, ok, err := env.ComponentForSignal("rpm")
				assert.NoError(t, err)
				assert.True(t, ok)
				assert.Equal(t, "EngineCtrl", swc)

				at, ok, err := env.TaskScheduling("A", 50+worker*100, 0)
				assert.NoError(t, err)
				assert.True(t, ok)
				assert.Equal(t, Occurrence{Time: 70, Index: 2}, at)

				assignment, ok, err := env.Task("RUN", "CompY")
				assert.NoError(t, err)
				assert.True(t, ok)
				assert.Equal(t, Assignment{Task: "T2", Index: 1}, assignment)

				assert.Len(t, env.Signals(), 4)
				assert.Len(t, env.Schedule().Queue, 3)
			}
		}(i)
	}
	wg.Wait()
}
