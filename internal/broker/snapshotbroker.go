package broker

type publication[TID comparable, TPayload any] struct {
	ID      TID
	Payload TPayload
}

type subscription[TID comparable, TPayload any] struct {
	ID      TID
	Channel chan TPayload
}

// SnapshotBroker fans out the latest payload published under an ID to every subscriber of that ID.
//
// Subscribers only ever care about the newest snapshot, so each subscriber channel holds a single
// value and an undelivered older value is replaced by the newer one. A subscriber that joins late
// immediately receives the last published payload.
//
// A game session publishes its view snapshot after every command and timer callback. The consumers
// are the websocket handlers of the browser tabs the player has open.
type SnapshotBroker[TID comparable, TPayload any] struct {
	stopChannel        chan struct{}
	publishChannel     chan publication[TID, TPayload]
	subscribeChannel   chan subscription[TID, TPayload]
	unsubscribeChannel chan subscription[TID, TPayload]
	forgetChannel      chan TID
}

// NewSnapshotBroker creates a new SnapshotBroker. Call Start in a goroutine and Stop when done.
func NewSnapshotBroker[TID comparable, TPayload any]() *SnapshotBroker[TID, TPayload] {
	return &SnapshotBroker[TID, TPayload]{
		stopChannel:        make(chan struct{}),
		publishChannel:     make(chan publication[TID, TPayload]),
		subscribeChannel:   make(chan subscription[TID, TPayload]),
		unsubscribeChannel: make(chan subscription[TID, TPayload]),
		forgetChannel:      make(chan TID),
	}
}

// Start handles publish and subscribe events until Stop is called. It blocks, so it should be called in a goroutine.
func (b *SnapshotBroker[TID, TPayload]) Start() {
	latest := map[TID]TPayload{}
	subscribers := map[TID][]chan TPayload{}
	for {
		select {
		case <-b.stopChannel:
			for _, list := range subscribers {
				for _, c := range list {
					close(c)
				}
			}
			return

		case s := <-b.subscribeChannel:
			subscribers[s.ID] = append(subscribers[s.ID], s.Channel)
			if payload, ok := latest[s.ID]; ok {
				s.Channel <- payload
			}

		case s := <-b.unsubscribeChannel:
			list := subscribers[s.ID]
			for i, c := range list {
				if c == s.Channel {
					close(c)
					subscribers[s.ID] = append(list[:i], list[i+1:]...)
					break
				}
			}
			if len(subscribers[s.ID]) == 0 {
				delete(subscribers, s.ID)
			}

		case p := <-b.publishChannel:
			latest[p.ID] = p.Payload
			for _, c := range subscribers[p.ID] {
				replace(c, p.Payload)
			}

		case id := <-b.forgetChannel:
			delete(latest, id)
			for _, c := range subscribers[id] {
				close(c)
			}
			delete(subscribers, id)
		}
	}
}

// replace drops a pending payload the subscriber has not consumed yet.
func replace[TPayload any](c chan TPayload, payload TPayload) {
	select {
	case <-c:
	default:
	}
	c <- payload
}

// Stop the broker goroutine. Every open subscription channel is closed.
func (b *SnapshotBroker[TID, TPayload]) Stop() {
	close(b.stopChannel)
}

// Subscribe returns a channel receiving the snapshots published under id. The channel is closed by
// the returned cancel function, by Forget, or by Stop.
func (b *SnapshotBroker[TID, TPayload]) Subscribe(id TID) (<-chan TPayload, func()) {
	s := subscription[TID, TPayload]{ID: id, Channel: make(chan TPayload, 1)}
	select {
	case b.subscribeChannel <- s:
	case <-b.stopChannel:
		close(s.Channel)
		return s.Channel, func() {}
	}
	cancel := func() {
		select {
		case b.unsubscribeChannel <- s:
		case <-b.stopChannel:
		}
	}
	return s.Channel, cancel
}

// Publish replaces the latest snapshot of id and delivers it to the current subscribers.
func (b *SnapshotBroker[TID, TPayload]) Publish(id TID, payload TPayload) {
	select {
	case b.publishChannel <- publication[TID, TPayload]{ID: id, Payload: payload}:
	case <-b.stopChannel:
	}
}

// Forget drops the latest snapshot of id and closes its subscriptions.
func (b *SnapshotBroker[TID, TPayload]) Forget(id TID) {
	select {
	case b.forgetChannel <- id:
	case <-b.stopChannel:
	}
}
