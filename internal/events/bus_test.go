package events

import "testing"

func TestPublishReachesSubscribers(t *testing.T) {
	bus := NewBus()

	var posts, members int
	bus.Subscribe(TopicPosts, func(Topic) { posts++ })
	bus.Subscribe(TopicPosts, func(Topic) { posts++ })
	bus.Subscribe(TopicMembers, func(Topic) { members++ })

	bus.Publish(TopicPosts)

	if posts != 2 {
		t.Errorf("expected 2 post notifications, got %d", posts)
	}
	if members != 0 {
		t.Errorf("expected 0 member notifications, got %d", members)
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	bus := NewBus()

	var calls int
	unsubscribe := bus.Subscribe(TopicInvitations, func(Topic) { calls++ })

	bus.Publish(TopicInvitations)
	unsubscribe()
	bus.Publish(TopicInvitations)
	unsubscribe() // double unsubscribe is harmless

	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestPublishWithoutSubscribers(t *testing.T) {
	bus := NewBus()
	bus.Publish(TopicPosts) // must not panic
}
