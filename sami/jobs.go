package sami

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/exp/slices"
)

// Synchronous job system: housekeeping callbacks run on their own
// schedule by a single cooperative loop.

type Job struct {
	Name            string
	Action          func() error
	DefaultSchedule time.Duration
	RemainingTime   time.Duration
}

func NewJob(name string, action func() error, schedule time.Duration) *Job {
	return &Job{
		Name:            name,
		Action:          action,
		DefaultSchedule: schedule,
		RemainingTime:   schedule,
	}
}

// runAction runs the callback, containing failures. A job that errors or
// panics is logged and resumes its normal schedule; it must never take
// the scheduler or its sibling jobs down with it.
func (j *Job) runAction() {
	defer func() {
		if r := recover(); r != nil {
			logError("job "+j.Name, fmt.Errorf("%v", r), "action panicked")
		}
	}()
	if err := j.Action(); err != nil {
		logError("job "+j.Name, err, "action failed")
	}
}

func (j *Job) reset() {
	j.RemainingTime = j.DefaultSchedule
}

// Jobs owns its job list exclusively: no other goroutine may read or
// mutate it while Run is live.
type Jobs struct {
	jobs      []*Job
	stopDelay time.Duration
}

func NewJobs(jobs []*Job, stopDelay time.Duration) *Jobs {
	return &Jobs{
		jobs:      jobs,
		stopDelay: stopDelay,
	}
}

// RunAll runs all the jobs at once and resets them. Used for eager
// execution at startup, independent of the wait loop.
func (js *Jobs) RunAll() {
	for _, job := range js.jobs {
		job.runAction()
		job.reset()
	}
}

// tick advances the schedule by one bounded wait: the job closest to due
// absorbs at most stopDelay of elapsed time, every job decays by that
// amount, and the closest job runs once it reaches zero. Ties go to
// insertion order (stable sort), deterministic within a run.
func (js *Jobs) tick() {
	slices.SortStableFunc(js.jobs, func(a, b *Job) int {
		switch {
		case a.RemainingTime < b.RemainingTime:
			return -1
		case a.RemainingTime > b.RemainingTime:
			return 1
		default:
			return 0
		}
	})
	nextJob := js.jobs[0]
	toWait := js.stopDelay
	if nextJob.RemainingTime < toWait {
		toWait = nextJob.RemainingTime
	}
	for _, job := range js.jobs {
		job.RemainingTime -= toWait
	}
	if nextJob.RemainingTime <= 0 {
		nextJob.runAction()
		nextJob.reset()
	}
}

// Run loops until the context is cancelled. Every wait is bounded by
// stopDelay, so shutdown latency is at most one stopDelay.
func (js *Jobs) Run(ctx context.Context) {
	logMsg("jobs", "scheduler started")
	for {
		select {
		case <-ctx.Done():
			logMsg("jobs", "scheduler stopped")
			return
		case <-time.After(js.stopDelay):
		}
		if len(js.jobs) == 0 {
			continue
		}
		js.tick()
	}
}
