package lightclient

import (
	"github.com/dominant-strategies/eth-light-client/auth"
	"github.com/dominant-strategies/eth-light-client/core/types"
	"github.com/ethereum/go-ethereum/event"
)

// Event is emitted after a successful state change.
type Event interface {
	isEvent()
}

// SetGenesisHeaderEvent is posted when the trusted genesis header is set.
type SetGenesisHeaderEvent struct {
	Header *types.Header
}

// UpdateBestNumberEvent is posted when the authority reports a new best
// block number.
type UpdateBestNumberEvent struct {
	Number uint64
}

// MaintainEvent is posted for every header appended to the light chain.
type MaintainEvent struct {
	Caller auth.CallerID
	Header *types.Header
	Tip    *types.ChainTip
}

func (SetGenesisHeaderEvent) isEvent() {}
func (UpdateBestNumberEvent) isEvent() {}
func (MaintainEvent) isEvent()         {}

// EventSink receives the events of the light client. Publish is called with
// the client lock held and must not call back into the client.
type EventSink interface {
	Publish(ev Event)
}

type nopSink struct{}

func (nopSink) Publish(Event) {}

// FeedSink fans events out to subscribers, one feed per event type.
type FeedSink struct {
	genesisFeed    event.Feed
	bestNumberFeed event.Feed
	maintainFeed   event.Feed
	scope          event.SubscriptionScope
}

var _ EventSink = (*FeedSink)(nil)

func (s *FeedSink) Publish(ev Event) {
	switch ev := ev.(type) {
	case SetGenesisHeaderEvent:
		s.genesisFeed.Send(ev)
	case UpdateBestNumberEvent:
		s.bestNumberFeed.Send(ev)
	case MaintainEvent:
		s.maintainFeed.Send(ev)
	}
}

// SubscribeSetGenesisHeaderEvent registers a subscription of SetGenesisHeaderEvent.
func (s *FeedSink) SubscribeSetGenesisHeaderEvent(ch chan<- SetGenesisHeaderEvent) event.Subscription {
	return s.scope.Track(s.genesisFeed.Subscribe(ch))
}

// SubscribeUpdateBestNumberEvent registers a subscription of UpdateBestNumberEvent.
func (s *FeedSink) SubscribeUpdateBestNumberEvent(ch chan<- UpdateBestNumberEvent) event.Subscription {
	return s.scope.Track(s.bestNumberFeed.Subscribe(ch))
}

// SubscribeMaintainEvent registers a subscription of MaintainEvent.
func (s *FeedSink) SubscribeMaintainEvent(ch chan<- MaintainEvent) event.Subscription {
	return s.scope.Track(s.maintainFeed.Subscribe(ch))
}

// Close unsubscribes every subscriber.
func (s *FeedSink) Close() {
	s.scope.Close()
}
