package db

import (
	"path/filepath"
	"testing"
	"time"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	d, err := Open(filepath.Join(t.TempDir(), "dispatch.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })
	return d
}

func TestOpen_Migrates(t *testing.T) {
	d := openTestDB(t)

	version, err := CurrentVersion(d.sql)
	if err != nil {
		t.Fatalf("CurrentVersion() error = %v", err)
	}
	if version != len(migrations) {
		t.Errorf("schema version = %d, want %d", version, len(migrations))
	}
}

func TestOpen_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dispatch.db")

	d, err := Open(path)
	if err != nil {
		t.Fatalf("first Open() error = %v", err)
	}
	if _, err := d.InsertRun("research", time.Now()); err != nil {
		t.Fatalf("InsertRun() error = %v", err)
	}
	if err := d.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	d, err = Open(path)
	if err != nil {
		t.Fatalf("second Open() error = %v", err)
	}
	defer d.Close()

	runs, err := d.RecentRuns(10)
	if err != nil {
		t.Fatalf("RecentRuns() error = %v", err)
	}
	if len(runs) != 1 {
		t.Errorf("RecentRuns() returned %d runs, want 1", len(runs))
	}
}

func TestRunLifecycle(t *testing.T) {
	d := openTestDB(t)

	started := time.Now()
	id, err := d.InsertRun("research", started)
	if err != nil {
		t.Fatalf("InsertRun() error = %v", err)
	}

	steps := []Step{
		{RunID: id, Position: 0, Function: "analyse", Status: StatusFailed, Error: "not implemented"},
	}
	for _, s := range steps {
		if err := d.InsertStep(s); err != nil {
			t.Fatalf("InsertStep() error = %v", err)
		}
	}

	if err := d.FinishRun(id, StatusFailed, "step 0 (analyse): not implemented", time.Now()); err != nil {
		t.Fatalf("FinishRun() error = %v", err)
	}

	runs, err := d.RecentRuns(10)
	if err != nil {
		t.Fatalf("RecentRuns() error = %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("RecentRuns() returned %d runs, want 1", len(runs))
	}
	run := runs[0]
	if run.ID != id || run.Task != "research" || run.Status != StatusFailed {
		t.Errorf("run = %+v", run)
	}
	if run.Error == "" {
		t.Error("run error message not recorded")
	}

	got, err := d.StepsForRun(id)
	if err != nil {
		t.Fatalf("StepsForRun() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("StepsForRun() returned %d steps, want 1", len(got))
	}
	if got[0].Function != "analyse" || got[0].Status != StatusFailed {
		t.Errorf("step = %+v", got[0])
	}
}

func TestRecentRuns_FinishedTimes(t *testing.T) {
	d := openTestDB(t)

	started := time.Now().Add(-time.Minute)
	finishedID, err := d.InsertRun("research", started)
	if err != nil {
		t.Fatalf("InsertRun() error = %v", err)
	}
	finished := time.Now()
	if err := d.FinishRun(finishedID, StatusCompleted, "", finished); err != nil {
		t.Fatalf("FinishRun() error = %v", err)
	}
	if _, err := d.InsertRun("planning", time.Now()); err != nil {
		t.Fatalf("InsertRun() error = %v", err)
	}

	runs, err := d.RecentRuns(10)
	if err != nil {
		t.Fatalf("RecentRuns() error = %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("RecentRuns() returned %d runs, want 2", len(runs))
	}

	for _, run := range runs {
		switch run.ID {
		case finishedID:
			if !run.FinishedAt.After(run.StartedAt) {
				t.Errorf("finished run: FinishedAt = %v, StartedAt = %v", run.FinishedAt, run.StartedAt)
			}
		default:
			// still running: finished_at is NULL, reported as the start time
			if !run.FinishedAt.Equal(run.StartedAt) {
				t.Errorf("running run: FinishedAt = %v, want StartedAt %v", run.FinishedAt, run.StartedAt)
			}
		}
	}
}

func TestRecentRuns_NewestFirst(t *testing.T) {
	d := openTestDB(t)

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		if _, err := d.InsertRun("planning", base.Add(time.Duration(i)*time.Minute)); err != nil {
			t.Fatalf("InsertRun() error = %v", err)
		}
	}

	runs, err := d.RecentRuns(2)
	if err != nil {
		t.Fatalf("RecentRuns() error = %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("RecentRuns(2) returned %d runs", len(runs))
	}
	if !runs[0].StartedAt.After(runs[1].StartedAt) {
		t.Errorf("runs not newest first: %v then %v", runs[0].StartedAt, runs[1].StartedAt)
	}
}

func TestStepsForRun_Empty(t *testing.T) {
	d := openTestDB(t)

	steps, err := d.StepsForRun(999)
	if err != nil {
		t.Fatalf("StepsForRun() error = %v", err)
	}
	if len(steps) != 0 {
		t.Errorf("StepsForRun(999) returned %d steps, want 0", len(steps))
	}
}
