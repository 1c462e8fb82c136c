// Package executor drives a single dataflow task: it classifies the attached
// destination channels into one output topology, pulls the pipeline to
// exhaustion, reshapes every emitted record for that topology, and commits
// direct channels once the pipeline has ended cleanly.
//
// A task moves through initializing, classified, running and then exactly
// one of completed or failed. Failures are immediate and never retried here;
// restart policy belongs to the runtime that launched the task.
//
//	task, err := executor.New(cfg, leaf, channels, executor.WithLogger(log))
//	if err != nil {
//	    return err
//	}
//	res := task.Run(ctx)
package executor
