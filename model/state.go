package model

type (
	// Task lists the components a task executes, in execution order.
	Task struct {
		Name       string   `json:"name" yaml:"name"`
		Components []string `json:"components" yaml:"components"`
	}

	// State is an operating state with its task assignments in file order.
	State struct {
		Name  string `json:"name" yaml:"name"`
		Tasks []Task `json:"tasks" yaml:"tasks"`
	}

	// StateMachine is the SSM table: operating states in file order.
	StateMachine struct {
		States []State `json:"states" yaml:"states"`

		err error
	}

	// Assignment locates a component within a task's component list.
	Assignment struct {
		Task  string `json:"task"`
		Index int    `json:"index"`
	}
)

// Invalidate records a structural defect found while decoding; task lookups
// then fail with ErrConfig.
func (m *StateMachine) Invalidate(err error) {
	m.err = err
}

// Err returns the recorded structural defect, or nil.
func (m *StateMachine) Err() error {
	if m == nil {
		return nil
	}
	return m.err
}

// State returns the first state named name.
func (m *StateMachine) State(name string) (*State, bool) {
	if m == nil {
		return nil, false
	}
	for i := range m.States {
		if m.States[i].Name == name {
			return &m.States[i], true
		}
	}
	return nil, false
}

// Assignment returns the first task, in file order, whose component list
// contains component, together with the component position.
func (s *State) Assignment(component string) (Assignment, bool) {
	for _, task := range s.Tasks {
		for i, candidate := range task.Components {
			if candidate == component {
				return Assignment{Task: task.Name, Index: i}, true
			}
		}
	}
	return Assignment{}, false
}

// Task returns the component list of the first task named name.
func (s *State) Task(name string) ([]string, bool) {
	for _, task := range s.Tasks {
		if task.Name == name {
			return task.Components, true
		}
	}
	return nil, false
}

func (m *StateMachine) clone() *StateMachine {
	ret := &StateMachine{}
	if m == nil {
		return ret
	}
	ret.err = m.err
	if m.States == nil {
		return ret
	}
	ret.States = make([]State, len(m.States))
	for i, state := range m.States {
		ret.States[i] = State{Name: state.Name}
		if state.Tasks == nil {
			continue
		}
		ret.States[i].Tasks = make([]Task, len(state.Tasks))
		for j, task := range state.Tasks {
			ret.States[i].Tasks[j] = Task{Name: task.Name}
			if task.Components != nil {
				ret.States[i].Tasks[j].Components = append([]string(nil), task.Components...)
			}
		}
	}
	return ret
}
