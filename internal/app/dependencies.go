package app

import (
	"context"

	"github.com/ischedule/ischedule/internal/config"
	"github.com/ischedule/ischedule/internal/event_bus"
	"github.com/ischedule/ischedule/internal/utils"
	"github.com/ischedule/ischedule/pkg/calendar"
	"github.com/ischedule/ischedule/pkg/generator"
	"github.com/ischedule/ischedule/pkg/notification"
	"github.com/ischedule/ischedule/pkg/overview"
	"github.com/ischedule/ischedule/pkg/reminder"
	"github.com/ischedule/ischedule/pkg/session"
	"github.com/ischedule/ischedule/pkg/storage"
	log "github.com/sirupsen/logrus"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	Clock    utils.Clock
	EventBus *event_bus.EventBus
	Store    storage.Store

	SessionManager *session.Manager
	SessionHandler *session.Handler

	CalendarRepository *calendar.RepositoryImpl
	CalendarService    *calendar.Service
	CalendarHandler    *calendar.Handler

	OverviewHandler *overview.Handler

	Generator        generator.Generator
	GeneratorHandler *generator.Handler

	NotificationCenter  *notification.Center
	NotificationHandler *notification.Handler

	ReminderRunner *reminder.Runner
}

// BuildDependencies initializes and wires all application services and handlers.
func BuildDependencies(ctx context.Context, store storage.Store, cfg config.Application) (*Dependencies, error) {
	deps := &Dependencies{}
	location := cfg.Notifications.Location()

	deps.Clock = &utils.SystemClock{}
	deps.EventBus = event_bus.NewEventBus()
	deps.Store = store

	deps.CalendarRepository = calendar.NewRepository(store)
	deps.CalendarService = calendar.NewService(deps.CalendarRepository)
	deps.CalendarHandler = calendar.NewHandler(deps.CalendarService, deps.Clock)

	deps.OverviewHandler = overview.NewHandler(deps.CalendarService, deps.Clock, location)

	gemini, err := generator.NewGemini(ctx, cfg.Gemini, location, cfg.Notifications.Language)
	if err != nil {
		log.Warnf("AI generation disabled: %v", err)
		deps.Generator = generator.Disabled{Reason: err.Error()}
	} else {
		deps.Generator = gemini
	}
	deps.GeneratorHandler = generator.NewHandler(deps.Generator, deps.CalendarService, location)

	permission, err := notification.ParsePermission(cfg.Notifications.DefaultPermission)
	if err != nil {
		log.Warnf("invalid default notification permission %q, using granted", cfg.Notifications.DefaultPermission)
		permission = notification.PermissionGranted
	}
	deps.NotificationCenter = notification.NewCenter(permission, cfg.Notifications.InboxSize)
	deps.NotificationCenter.Subscribe(deps.EventBus)
	deps.NotificationHandler = notification.NewHandler(deps.NotificationCenter)

	messages, err := reminder.NewMessages(cfg.Notifications.Language)
	if err != nil {
		return nil, err
	}
	deps.ReminderRunner = reminder.NewRunner(
		deps.Clock,
		deps.CalendarService,
		store,
		notification.NewBusSink(deps.EventBus),
		messages,
		reminder.Options{
			BriefingHour: cfg.Notifications.BriefingHour,
			Location:     location,
			Icon:         cfg.Notifications.Icon,
		},
		cfg.Notifications.PollInterval,
	)
	deps.ReminderRunner.Subscribe(deps.EventBus)

	deps.SessionManager = session.NewManager(store, deps.CalendarService, deps.EventBus)
	deps.SessionHandler = session.NewHandler(deps.SessionManager)

	return deps, nil
}
