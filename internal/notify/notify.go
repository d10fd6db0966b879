package notify

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync"

	"mlnotify/internal/deeplink"
	"mlnotify/internal/domain"

	"github.com/rs/zerolog/log"
)

const (
	ChannelTaskStatus     = "task_status"
	channelTaskStatusName = "Task status changes"
)

// Notification is a user-visible notification. Tag is stable per task, so a
// repeat notification for the same task replaces the previous one instead of
// stacking.
type Notification struct {
	Tag       uint32
	ChannelID string
	Title     string
	Body      string
	DeepLink  string
}

// Emitter renders a notification to the user.
type Emitter interface {
	Notify(ctx context.Context, n Notification) error
}

// Tag derives the stable numeric notification tag for a process id.
func Tag(processID string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(processID))
	return h.Sum32()
}

// ForStatus builds the notification for a task's new status. Each status has
// its own template; the deep link opens the task's detail view.
func ForStatus(taskName, processID string, status domain.TaskStatus) Notification {
	n := Notification{
		Tag:       Tag(processID),
		ChannelID: ChannelTaskStatus,
		DeepLink:  deeplink.TaskDetail(processID),
	}

	switch status {
	case domain.StatusRunning:
		n.Title = fmt.Sprintf("%s is running", taskName)
		n.Body = fmt.Sprintf("Task %s has started.", taskName)
	case domain.StatusCompleted:
		n.Title = fmt.Sprintf("%s completed", taskName)
		n.Body = fmt.Sprintf("Task %s finished successfully.", taskName)
	case domain.StatusFailed:
		n.Title = fmt.Sprintf("%s failed", taskName)
		n.Body = fmt.Sprintf("Task %s finished with an error.", taskName)
	default:
		n.Title = taskName
		n.Body = fmt.Sprintf("Task %s is %s.", taskName, status)
	}

	return n
}

type channel struct {
	ID          string
	Name        string
	Description string
}

// Center is the in-process notification surface. Channels are created lazily
// on first use; the latest notification per tag replaces any earlier one.
type Center struct {
	mu       sync.Mutex
	channels map[string]channel
	active   map[uint32]Notification
}

func NewCenter() *Center {
	return &Center{
		channels: make(map[string]channel),
		active:   make(map[uint32]Notification),
	}
}

func (c *Center) Notify(ctx context.Context, n Notification) error {
	c.mu.Lock()
	c.ensureChannel(n.ChannelID)
	c.active[n.Tag] = n
	c.mu.Unlock()

	log.Ctx(ctx).Info().
		Uint32("tag", n.Tag).
		Str("channel", n.ChannelID).
		Str("deep_link", n.DeepLink).
		Msgf("notification: %s - %s", n.Title, n.Body)

	return nil
}

func (c *Center) ensureChannel(id string) {
	if _, ok := c.channels[id]; ok {
		return
	}
	ch := channel{ID: id}
	if id == ChannelTaskStatus {
		ch.Name = channelTaskStatusName
		ch.Description = "Notifications about task status changes"
	}
	c.channels[id] = ch
}

// Active returns the currently displayed notification for a tag, if any.
func (c *Center) Active(tag uint32) (Notification, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n, ok := c.active[tag]
	return n, ok
}

// ActiveCount reports how many distinct notifications are displayed.
func (c *Center) ActiveCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.active)
}

// HasChannel reports whether a channel has been created.
func (c *Center) HasChannel(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.channels[id]
	return ok
}
