// Package elop resolves cross-references between the three documents that
// describe an ELOP embedded software environment:
//
//   - the interface control document (ICD), a CSV of signal, owning
//     software component and type;
//   - the cyclic schedule, a logical execution window (LEW) and a queue of
//     (offset, task) slots;
//   - the state machine (SSM), assigning ordered component lists to tasks per
//     operating state.
//
// Documents are read through viant/afs, so any supported storage works:
//
//	env, err := elop.Load(ctx, "icd.csv", "schedule.yaml", "ssm.yaml")
//	swc, ok, err := env.ComponentForSignal("rpm")
//	at, ok, err := env.TaskScheduling("A", 50, 0)
//	assignment, ok, err := env.Task("IDLE", "CompY")
//
// Long lived callers use a Service, which caches loaded environments:
//
//	srv := elop.New(elop.WithBaseURL("s3://bucket/elop"), elop.WithLogger(logger))
//	env, err := srv.Load(ctx, "icd.csv", "schedule.yaml", "ssm.yaml")
package elop

// Version is reported as the tracing service version by default.
const Version = "0.1.0"
