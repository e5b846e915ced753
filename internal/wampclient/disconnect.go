package wampclient

import "github.com/wampio/gowamp-client/internal/wampmsg"

// onTransportDisconnected fires exactly once per connection. It drains
// every pending-request table and invalidates every live handle with a
// synthetic ErrCancelled error callback rather than leaving callers
// hanging, reports session-ended to the delegate, and — only when the
// disconnect carried neither a reason nor an error and auto-reconnect
// was requested — re-enters Connect.
func (s *Session) onTransportDisconnected(err error, reason string) {
	s.mu.Lock()
	call := s.callPending
	register := s.registerPending
	unregister := s.unregisterPending
	subscribe := s.subscribePending
	unsubscribe := s.unsubscribePending
	publish := s.publishPending

	s.callPending = make(map[wampmsg.ID]*callContinuation)
	s.registerPending = make(map[wampmsg.ID]*registerContinuation)
	s.unregisterPending = make(map[wampmsg.ID]*unregisterContinuation)
	s.subscribePending = make(map[wampmsg.ID]*subscribeContinuation)
	s.unsubscribePending = make(map[wampmsg.ID]*unsubscribeContinuation)
	s.publishPending = make(map[wampmsg.ID]*publishContinuation)

	for _, rec := range s.subscriptions {
		rec.live.Store(false)
		if rec.handle != nil {
			rec.handle.invalidate()
		}
	}
	for _, rec := range s.registrations {
		rec.live.Store(false)
		if rec.handle != nil {
			rec.handle.invalidate()
		}
	}
	s.subscriptions = make(map[wampmsg.ID]*subscriptionRecord)
	s.registrations = make(map[wampmsg.ID]*registrationRecord)

	s.sessionID = 0
	s.serializer = nil
	s.ids = newIDAllocator()
	shouldReconnect := s.cfg.AutoReconnect && err == nil && reason == ""
	s.state = StateDisconnected
	s.mu.Unlock()

	drainCalls(call)
	drainSimple(register, func(c *registerContinuation) (SimpleErrorFunc, Lane) { return c.errCb, c.lane })
	drainSimple(unregister, func(c *unregisterContinuation) (SimpleErrorFunc, Lane) { return c.errCb, c.lane })
	drainSimple(subscribe, func(c *subscribeContinuation) (SimpleErrorFunc, Lane) { return c.errCb, c.lane })
	drainSimple(unsubscribe, func(c *unsubscribeContinuation) (SimpleErrorFunc, Lane) { return c.errCb, c.lane })
	drainSimple(publish, func(c *publishContinuation) (SimpleErrorFunc, Lane) { return c.errCb, c.lane })

	reasonStr := reason
	if reasonStr == "" {
		if err != nil {
			reasonStr = err.Error()
		} else {
			reasonStr = "Unknown error."
		}
	}
	if s.cfg.Delegate != nil {
		s.cfg.Delegate.SessionEnded(reasonStr)
	}

	if shouldReconnect {
		if cerr := s.Connect(); cerr != nil {
			s.logger.Error("wampclient: auto-reconnect failed", "error", cerr)
		}
	}
}

func drainCalls(pending map[wampmsg.ID]*callContinuation) {
	for _, cont := range pending {
		if cont.errCb == nil || cont.lane == nil {
			continue
		}
		cont.lane.Enqueue(func() {
			cont.errCb(cancelledDetails(), uriCancelled, nil, nil)
		})
	}
}

// drainSimple drains any pending-table value type whose error callback
// has the shared (details, errURI) shape, via an accessor that extracts
// (errCb, lane) from the continuation. Go 1.22+ per-iteration loop
// variables make it safe to close over errCb/lane directly here.
func drainSimple[T any](pending map[wampmsg.ID]T, access func(T) (SimpleErrorFunc, Lane)) {
	for _, cont := range pending {
		errCb, lane := access(cont)
		if errCb == nil || lane == nil {
			continue
		}
		lane.Enqueue(func() {
			errCb(cancelledDetails(), uriCancelled)
		})
	}
}

func cancelledDetails() wampmsg.Dict {
	return wampmsg.Dict{"error": ErrCancelled.Error()}
}
