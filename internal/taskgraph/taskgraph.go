// Package taskgraph maps supported tasks to the ordered list of registered
// functions that accomplish them. The graph is built once at composition
// time and validated against the registry, so a dangling function name is a
// startup failure rather than a runtime surprise.
package taskgraph

import (
	"errors"
	"fmt"
	"sort"

	"github.com/marcus/dispatch/internal/registry"
)

// Task identifies a supported high-level task. The set is closed at build
// time; Parse rejects anything outside it.
type Task string

const (
	Research Task = "research"
	Planning Task = "planning"
)

var (
	ErrUnknownTask  = errors.New("unknown task")
	ErrUnregistered = errors.New("function not in registry")
	ErrEmptyPlan    = errors.New("task has no functions")
)

// Tasks returns the closed set of supported tasks.
func Tasks() []Task {
	return []Task{Research, Planning}
}

// Parse converts a string into a Task, failing on anything outside the
// supported set.
func Parse(s string) (Task, error) {
	for _, t := range Tasks() {
		if s == string(t) {
			return t, nil
		}
	}
	return "", fmt.Errorf("%q: %w", s, ErrUnknownTask)
}

// Graph holds the ordered function steps per task.
type Graph struct {
	steps map[Task][]*registry.Function
}

// Build resolves each task's ordered function names against the registry
// and fails fast on any task outside the supported set, any empty plan, or
// any name with no registry entry.
func Build(reg *registry.Registry, plans map[Task][]string) (*Graph, error) {
	g := &Graph{steps: make(map[Task][]*registry.Function, len(plans))}

	for task, names := range plans {
		if _, err := Parse(string(task)); err != nil {
			return nil, err
		}
		if len(names) == 0 {
			return nil, fmt.Errorf("task %s: %w", task, ErrEmptyPlan)
		}
		steps := make([]*registry.Function, 0, len(names))
		for _, name := range names {
			fn, ok := reg.Get(name)
			if !ok {
				return nil, fmt.Errorf("task %s: %q: %w", task, name, ErrUnregistered)
			}
			steps = append(steps, fn)
		}
		g.steps[task] = steps
	}

	return g, nil
}

// For returns the ordered functions for task. The slice is a copy; mutating
// it does not affect the graph. Unknown tasks fail with ErrUnknownTask.
func (g *Graph) For(task Task) ([]*registry.Function, error) {
	steps, ok := g.steps[task]
	if !ok {
		return nil, fmt.Errorf("%q: %w", task, ErrUnknownTask)
	}
	out := make([]*registry.Function, len(steps))
	copy(out, steps)
	return out, nil
}

// TaskList returns the tasks present in the graph, sorted by name.
func (g *Graph) TaskList() []Task {
	out := make([]Task, 0, len(g.steps))
	for t := range g.steps {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
