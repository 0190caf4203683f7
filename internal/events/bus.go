// Package events provides the in-process notification channel between
// mutating flows and the view controllers that display the affected
// collections. It replaces the older pattern of a form holding an imperative
// refresh handle on a sibling view: publishers announce that a collection
// changed, subscribers decide how to reload.
package events

import "sync"

// Topic identifies a collection whose contents may have changed.
type Topic string

const (
	// TopicPosts fires after a post is created or deleted.
	TopicPosts Topic = "posts.changed"
	// TopicMembers fires after the circle roster changes.
	TopicMembers Topic = "members.changed"
	// TopicInvitations fires after an invitation is sent or responded to.
	TopicInvitations Topic = "invitations.changed"
)

// Handler receives a notification. Handlers run synchronously on the
// publisher's goroutine; keep them short and hand long work to the caller's
// own machinery.
type Handler func(Topic)

// Bus is a topic-keyed publish/subscribe channel. The zero value is not
// usable; construct with NewBus.
type Bus struct {
	mu     sync.Mutex
	nextID int
	subs   map[Topic]map[int]Handler
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[Topic]map[int]Handler)}
}

// Subscribe registers fn for topic and returns an unsubscribe function.
// Unsubscribing twice is harmless.
func (b *Bus) Subscribe(topic Topic, fn Handler) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.subs[topic] == nil {
		b.subs[topic] = make(map[int]Handler)
	}
	id := b.nextID
	b.nextID++
	b.subs[topic][id] = fn

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs[topic], id)
	}
}

// Publish notifies every subscriber of topic. Handlers registered while a
// publish is in flight are not invoked for that publish.
func (b *Bus) Publish(topic Topic) {
	b.mu.Lock()
	handlers := make([]Handler, 0, len(b.subs[topic]))
	for _, fn := range b.subs[topic] {
		handlers = append(handlers, fn)
	}
	b.mu.Unlock()

	for _, fn := range handlers {
		fn(topic)
	}
}
