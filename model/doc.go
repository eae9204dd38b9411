// Package model contains the in-memory representation of an ELOP
// environment: the interface control document (signals), the cyclic task
// schedule and the state machine assigning software components to tasks.
//
// Tables are usually produced by the decoders in service/dao and wrapped in an
// Environment, which answers lookups without ever mutating its tables:
//
//	env := model.NewEnvironment(signals, schedule, machine)
//	swc, ok, err := env.ComponentForSignal("rpm")
//	at, ok, err := env.TaskScheduling("A", 50, 0)
//	assignment, ok, err := env.Task("IDLE", "CompY")
package model
