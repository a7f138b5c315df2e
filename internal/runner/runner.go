// Package runner executes a task's function graph sequentially, recording
// each step to the run-history store. The graph itself carries no retry or
// branching semantics; execution stops at the first failing step.
package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/marcus/dispatch/internal/db"
	"github.com/marcus/dispatch/internal/logging"
	"github.com/marcus/dispatch/internal/taskgraph"
)

// Runner walks task graphs.
type Runner struct {
	graph *taskgraph.Graph
	store *db.DB
	log   *logging.Logger
}

// New creates a runner. The store may be nil, in which case runs are not
// recorded.
func New(graph *taskgraph.Graph, store *db.DB, log *logging.Logger) *Runner {
	if log == nil {
		log = logging.Default()
	}
	return &Runner{graph: graph, store: store, log: log.WithComponent("runner")}
}

// StepResult is the outcome of one function invocation.
type StepResult struct {
	Function string
	Output   string
	Err      error
}

// RunResult is the outcome of one task run.
type RunResult struct {
	RunID int64
	Task  taskgraph.Task
	Steps []StepResult
	Err   error
}

// Run executes the graph for task. A lookup failure (unknown task) is
// returned as an error; a step failure is recorded in the result and stops
// the run, with result.Err set.
func (r *Runner) Run(ctx context.Context, task taskgraph.Task) (*RunResult, error) {
	steps, err := r.graph.For(task)
	if err != nil {
		return nil, err
	}

	result := &RunResult{Task: task}
	if r.store != nil {
		id, err := r.store.InsertRun(string(task), time.Now())
		if err != nil {
			return nil, err
		}
		result.RunID = id
	}

	r.log.Infof("running task %s (%d steps)", task, len(steps))

	for i, fn := range steps {
		out, callErr := fn.Call(ctx)

		sr := StepResult{Function: fn.Name, Err: callErr}
		if s, ok := out.(string); ok {
			sr.Output = s
		} else if out != nil {
			sr.Output = fmt.Sprintf("%v", out)
		}
		result.Steps = append(result.Steps, sr)

		status := db.StatusCompleted
		errMsg := ""
		if callErr != nil {
			status = db.StatusFailed
			errMsg = callErr.Error()
		}
		if r.store != nil {
			step := db.Step{
				RunID:    result.RunID,
				Position: i,
				Function: fn.Name,
				Status:   status,
				Output:   sr.Output,
				Error:    errMsg,
			}
			if err := r.store.InsertStep(step); err != nil {
				r.log.Err(err, "recording step")
			}
		}

		if callErr != nil {
			result.Err = fmt.Errorf("step %d (%s): %w", i, fn.Name, callErr)
			r.log.Err(callErr, "step failed, stopping run")
			break
		}
		r.log.Debugf("step %d (%s) completed", i, fn.Name)
	}

	if r.store != nil {
		status := db.StatusCompleted
		errMsg := ""
		if result.Err != nil {
			status = db.StatusFailed
			errMsg = result.Err.Error()
		}
		if err := r.store.FinishRun(result.RunID, status, errMsg, time.Now()); err != nil {
			r.log.Err(err, "recording run result")
		}
	}

	return result, nil
}
