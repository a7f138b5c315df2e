// Package components declares the task component functions and the standard
// task plans built from them. The components are placeholders: they carry
// real signatures and documentation for planner introspection but fail with
// ErrNotImplemented when called.
package components

import (
	"context"
	"errors"
	"fmt"

	"github.com/marcus/dispatch/internal/registry"
	"github.com/marcus/dispatch/internal/taskgraph"
)

// ErrNotImplemented is returned by every placeholder component.
var ErrNotImplemented = errors.New("not implemented")

// Analyse examines gathered material and produces findings.
func Analyse(ctx context.Context) (string, error) {
	return "", ErrNotImplemented
}

// Scrape collects source material from the web.
func Scrape(ctx context.Context) (string, error) {
	return "", ErrNotImplemented
}

// UploadToNotion publishes results to a Notion workspace.
func UploadToNotion(ctx context.Context) (string, error) {
	return "", ErrNotImplemented
}

// Planning drafts a plan of action for a stated goal.
func Planning(ctx context.Context) (string, error) {
	return "", ErrNotImplemented
}

// SendEmail delivers results by email.
func SendEmail(ctx context.Context) error {
	return ErrNotImplemented
}

// RegisterAll installs every component into reg.
func RegisterAll(reg *registry.Registry) error {
	for _, c := range []struct {
		name string
		doc  string
		fn   any
	}{
		{"analyse", "Examine gathered material and produce findings.", Analyse},
		{"scrape", "Collect source material from the web.", Scrape},
		{"upload_to_notion", "Publish results to a Notion workspace.", UploadToNotion},
		{"planning", "Draft a plan of action for a stated goal.", Planning},
		{"send_email", "Deliver results by email.", SendEmail},
	} {
		if _, err := reg.Register(c.name, c.doc, c.fn); err != nil {
			return fmt.Errorf("registering components: %w", err)
		}
	}
	return nil
}

// Plans returns the standard ordered component names per supported task.
func Plans() map[taskgraph.Task][]string {
	return map[taskgraph.Task][]string{
		taskgraph.Research: {"analyse", "scrape", "upload_to_notion"},
		taskgraph.Planning: {"planning", "send_email"},
	}
}

// BuildGraphs registers all components into reg and builds the standard
// task graph over them.
func BuildGraphs(reg *registry.Registry) (*taskgraph.Graph, error) {
	if err := RegisterAll(reg); err != nil {
		return nil, err
	}
	return taskgraph.Build(reg, Plans())
}
