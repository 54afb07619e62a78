// Package notification holds the per-user notification permission and the inbox of
// notifications waiting to be shown by the client.
package notification

import (
	"context"
	"errors"
	"sync"

	"github.com/ischedule/ischedule/internal/event_bus"
	log "github.com/sirupsen/logrus"
)

type Notification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Icon  string `json:"icon,omitempty"`
	Tag   string `json:"tag,omitempty"`
}

type Permission string

const (
	PermissionDefault Permission = "default"
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
)

var ErrInvalidPermission = errors.New("invalid permission state")

func ParsePermission(value string) (Permission, error) {
	switch p := Permission(value); p {
	case PermissionDefault, PermissionGranted, PermissionDenied:
		return p, nil
	default:
		return "", ErrInvalidPermission
	}
}

type Center struct {
	answer    Permission
	inboxSize int

	mu          sync.Mutex
	permissions map[string]Permission
	requested   map[string]bool
	inboxes     map[string][]Notification
}

// NewCenter creates a Center answering permission requests with answer and keeping at most
// inboxSize pending notifications per user.
func NewCenter(answer Permission, inboxSize int) *Center {
	if inboxSize < 1 {
		inboxSize = 1
	}
	return &Center{
		answer:      answer,
		inboxSize:   inboxSize,
		permissions: make(map[string]Permission),
		requested:   make(map[string]bool),
		inboxes:     make(map[string][]Notification),
	}
}

// Subscribe hooks the Center to session and notification events.
func (c *Center) Subscribe(bus *event_bus.EventBus) (unsubscribe func()) {
	unsubs := []func(){
		event_bus.SubscribeTyped(bus, event_bus.SessionStartedType, func(e event_bus.EventT[event_bus.SessionStarted]) error {
			c.RequestPermission(e.Data.Username)
			return nil
		}),
		event_bus.SubscribeTyped(bus, event_bus.SessionEndedType, func(e event_bus.EventT[event_bus.SessionEnded]) error {
			c.Forget(e.Data.Username)
			return nil
		}),
		event_bus.SubscribeTyped(bus, event_bus.NotificationRequestedType, func(e event_bus.EventT[event_bus.NotificationRequested]) error {
			c.Deliver(e.Context(), e.Data.Username, Notification{
				Title: e.Data.Title,
				Body:  e.Data.Body,
				Icon:  e.Data.Icon,
				Tag:   e.Data.Tag,
			})
			return nil
		}),
	}
	return func() {
		for _, unsub := range unsubs {
			unsub()
		}
	}
}

// RequestPermission asks once per session. Only an undecided user gets the configured answer.
func (c *Center) RequestPermission(username string) Permission {
	c.mu.Lock()
	defer c.mu.Unlock()

	current := c.permissionLocked(username)
	if c.requested[username] {
		return current
	}
	c.requested[username] = true
	if current == PermissionDefault {
		c.permissions[username] = c.answer
		log.Infof("notification permission for %s: %s", username, c.answer)
	}
	return c.permissions[username]
}

func (c *Center) SetPermission(username string, p Permission) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.permissions[username] = p
}

func (c *Center) Permission(username string) Permission {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.permissionLocked(username)
}

func (c *Center) permissionLocked(username string) Permission {
	if p, ok := c.permissions[username]; ok {
		return p
	}
	return PermissionDefault
}

// Deliver queues n for the user. Without a granted permission it does nothing.
func (c *Center) Deliver(_ context.Context, username string, n Notification) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.permissionLocked(username) != PermissionGranted {
		log.Debugf("notification for %s dropped, permission not granted", username)
		return
	}

	inbox := c.inboxes[username]
	if n.Tag != "" {
		for i, pending := range inbox {
			if pending.Tag == n.Tag {
				inbox = append(inbox[:i], inbox[i+1:]...)
				break
			}
		}
	}
	inbox = append(inbox, n)
	if len(inbox) > c.inboxSize {
		inbox = inbox[len(inbox)-c.inboxSize:]
	}
	c.inboxes[username] = inbox
	log.Infof("notification for %s: %s", username, n.Title)
}

// Drain returns the pending notifications, oldest first, and empties the inbox.
func (c *Center) Drain(username string) []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()

	pending := c.inboxes[username]
	delete(c.inboxes, username)
	if pending == nil {
		return []Notification{}
	}
	return pending
}

// Forget ends the user's session: the inbox is cleared and the next session asks for
// permission again. A decided permission is kept.
func (c *Center) Forget(username string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.inboxes, username)
	delete(c.requested, username)
}

// BusSink publishes notifications on the event bus for the Center to deliver.
type BusSink struct {
	bus *event_bus.EventBus
}

func NewBusSink(bus *event_bus.EventBus) *BusSink {
	return &BusSink{bus: bus}
}

func (s *BusSink) Notify(ctx context.Context, username string, n Notification) {
	event := event_bus.NewEvent(ctx, event_bus.NotificationRequestedType, event_bus.NotificationRequested{
		Username: username,
		Title:    n.Title,
		Body:     n.Body,
		Icon:     n.Icon,
		Tag:      n.Tag,
	})
	if err := s.bus.Publish(event); err != nil {
		log.Errorf("failed to publish notification for %s: %v", username, err)
	}
}
