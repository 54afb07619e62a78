package reminder

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ischedule/ischedule/internal/event_bus"
	"github.com/ischedule/ischedule/internal/utils"
	"github.com/ischedule/ischedule/pkg/calendar"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

// EventSource yields a copy of a user's loaded events.
type EventSource interface {
	Snapshot(username string) ([]calendar.Event, bool)
}

// Runner polls a Scheduler for every active session on a cron schedule.
type Runner struct {
	cron     *cron.Cron
	clock    utils.Clock
	events   EventSource
	markers  MarkerStore
	sink     NotificationSink
	messages *Messages
	options  Options
	interval time.Duration

	mu       sync.Mutex
	sessions map[string]cron.EntryID
}

func NewRunner(
	clock utils.Clock,
	events EventSource,
	markers MarkerStore,
	sink NotificationSink,
	messages *Messages,
	options Options,
	interval time.Duration,
) *Runner {
	logger := cron.PrintfLogger(log.StandardLogger())
	return &Runner{
		cron: cron.New(
			cron.WithLogger(logger),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
		clock:    clock,
		events:   events,
		markers:  markers,
		sink:     sink,
		messages: messages,
		options:  options,
		interval: interval,
		sessions: make(map[string]cron.EntryID),
	}
}

// Subscribe starts and stops session schedules following session events.
func (r *Runner) Subscribe(bus *event_bus.EventBus) (unsubscribe func()) {
	unsubStart := event_bus.SubscribeTyped(bus, event_bus.SessionStartedType, func(e event_bus.EventT[event_bus.SessionStarted]) error {
		return r.StartSession(e.Data.Username)
	})
	unsubEnd := event_bus.SubscribeTyped(bus, event_bus.SessionEndedType, func(e event_bus.EventT[event_bus.SessionEnded]) error {
		r.StopSession(e.Data.Username)
		return nil
	})
	return func() {
		unsubStart()
		unsubEnd()
	}
}

func (r *Runner) Start() {
	r.cron.Start()
}

// Stop halts the schedule and waits for running ticks to finish or ctx to be done.
func (r *Runner) Stop(ctx context.Context) {
	select {
	case <-r.cron.Stop().Done():
	case <-ctx.Done():
		log.Warn("reminder runner did not stop in time")
	}
}

// StartSession registers the user's poll. A user already scheduled keeps the running scheduler.
func (r *Runner) StartSession(username string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[username]; ok {
		return nil
	}

	job := r.newJob(username)
	id, err := r.cron.AddJob(fmt.Sprintf("@every %s", r.interval), job)
	if err != nil {
		return fmt.Errorf("failed to schedule reminders for %s: %w", username, err)
	}
	r.sessions[username] = id
	log.Infof("reminders scheduled for %s every %s", username, r.interval)
	return nil
}

func (r *Runner) StopSession(username string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.sessions[username]
	if !ok {
		return
	}
	r.cron.Remove(id)
	delete(r.sessions, username)
	log.Infof("reminders stopped for %s", username)
}

func (r *Runner) Scheduled(username string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.sessions[username]
	return ok
}

func (r *Runner) newJob(username string) *pollJob {
	return &pollJob{
		username:  username,
		clock:     r.clock,
		events:    r.events,
		scheduler: NewScheduler(username, r.markers, r.sink, r.messages, r.options, r.clock.Now()),
	}
}

type pollJob struct {
	username  string
	clock     utils.Clock
	events    EventSource
	scheduler *Scheduler
}

func (j *pollJob) Run() {
	events, ok := j.events.Snapshot(j.username)
	if !ok {
		log.Debugf("events of %s not loaded, skipping reminder poll", j.username)
		return
	}
	if err := j.scheduler.Poll(context.Background(), j.clock.Now(), events); err != nil {
		log.WithField("user", j.username).Errorf("reminder poll failed: %v", err)
	}
}
