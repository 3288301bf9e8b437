package driftchat

import "sync"

// dispatcher routes server events to registered handlers. Inbound messages
// arrive on one generic event regardless of room; the dispatcher filters by
// the chat id embedded in the payload and delivers only to the binder of
// that room, so consumers never see another room's traffic.
type dispatcher struct {
	mu      sync.RWMutex
	byRoom  map[string]func(Message)
	onError func(error)
	onState func(StateEvent)
}

func newDispatcher() *dispatcher {
	return &dispatcher{byRoom: make(map[string]func(Message))}
}

// bind registers the message handler for a room, replacing any previous one.
func (d *dispatcher) bind(roomID string, fn func(Message)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.byRoom[roomID] = fn
}

// unbind removes the handler for a room. Events for an unbound room are
// dropped.
func (d *dispatcher) unbind(roomID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.byRoom, roomID)
}

func (d *dispatcher) setOnError(fn func(error)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.onError = fn
}

func (d *dispatcher) setOnState(fn func(StateEvent)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.onState = fn
}

func (d *dispatcher) dispatch(ev serverEvent) {
	if ev.Event == eventError && ev.Error != nil {
		d.fireError(ev.Error.toError())
		return
	}

	switch ev.Event {
	case eventMessage:
		var msg struct {
			Message
			ChatID string `json:"chatId"`
		}
		if err := unmarshalData(ev.Data, &msg); err != nil {
			d.fireError(WrapError(CodeSerialization, "failed to unmarshal message event", err))
			return
		}

		d.mu.RLock()
		fn := d.byRoom[msg.ChatID]
		if fn == nil && msg.ChatID == "" && len(d.byRoom) == 1 {
			// Some backends omit the chat id on the echo. With a single
			// bound room the event can only belong to it.
			for _, f := range d.byRoom {
				fn = f
			}
		}
		d.mu.RUnlock()
		if fn != nil {
			fn(msg.Message)
		}
	}
}

func (d *dispatcher) fireError(err error) {
	d.mu.RLock()
	fn := d.onError
	d.mu.RUnlock()
	if fn != nil && err != nil {
		fn(err)
	}
}

func (d *dispatcher) fireState(ev StateEvent) {
	d.mu.RLock()
	fn := d.onState
	d.mu.RUnlock()
	if fn != nil {
		fn(ev)
	}
}
