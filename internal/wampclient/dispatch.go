package wampclient

import (
	"context"

	"github.com/wampio/gowamp-client/internal/wampmsg"
)

func (s *Session) handleWelcome(m *wampmsg.Welcome) {
	s.mu.Lock()
	if s.state != StateHelloSent && s.state != StateChallenged {
		state := s.state
		s.mu.Unlock()
		s.logger.Warn("wampclient: WELCOME received in unexpected state", "state", state)
		return
	}
	s.sessionID = m.Session
	s.routerRoles = rolesFromDetails(m.Details)
	s.state = StateEstablished
	s.mu.Unlock()

	if s.cfg.Delegate != nil {
		s.cfg.Delegate.Connected(m.Session)
	}
}

func (s *Session) handleAbort(m *wampmsg.Abort) {
	s.mu.Lock()
	s.state = StateAborted
	s.mu.Unlock()

	s.transport.Disconnect(string(m.Reason))
}

func (s *Session) handleChallenge(m *wampmsg.Challenge) {
	s.mu.Lock()
	if s.state != StateHelloSent {
		state := s.state
		s.mu.Unlock()
		s.logger.Warn("wampclient: CHALLENGE received outside hello-sent", "state", state)
		return
	}
	delegate := s.cfg.ChallengeDelegate
	s.mu.Unlock()

	if delegate == nil {
		s.logger.Error("wampclient: CHALLENGE received with no challenge delegate configured", "error", ErrNoChallengeDelegate)
		s.abortNoChallengeDelegate()
		return
	}

	signature, err := delegate.HandleChallenge(m.AuthMethod, m.Extra)
	if err != nil {
		s.logger.Error("wampclient: challenge delegate failed", "error", err)
		s.abortNoChallengeDelegate()
		return
	}

	s.mu.Lock()
	s.state = StateChallenged
	s.mu.Unlock()

	s.sendMessage(&wampmsg.Authenticate{Signature: signature, Extra: wampmsg.Dict{}})
}

func (s *Session) abortNoChallengeDelegate() {
	s.sendMessage(&wampmsg.Abort{Details: wampmsg.Dict{}, Reason: "wamp.error.system_shutdown"})

	s.mu.Lock()
	s.state = StateAborted
	s.mu.Unlock()

	s.transport.Disconnect("No challenge delegate found.")
}

func (s *Session) handleGoodbye(m *wampmsg.Goodbye) {
	if m.Reason != "wamp.error.goodbye_and_out" {
		s.sendMessage(&wampmsg.Goodbye{Details: wampmsg.Dict{}, Reason: "wamp.error.goodbye_and_out"})
	}

	s.mu.Lock()
	s.state = StateDisconnected
	s.mu.Unlock()

	s.transport.Disconnect(string(m.Reason))
}

func (s *Session) handleResult(m *wampmsg.Result) {
	s.mu.Lock()
	cont, ok := s.callPending[m.Request]
	if ok {
		delete(s.callPending, m.Request)
	}
	s.mu.Unlock()

	if !ok {
		s.logger.Debug("wampclient: RESULT for unknown request", "request", m.Request)
		return
	}
	cont.lane.Enqueue(func() {
		if cont.success != nil {
			cont.success(m.Details, m.Args, m.KwArgs)
		}
	})
}

func (s *Session) handleError(m *wampmsg.Error) {
	switch m.RequestType {
	case wampmsg.CALL:
		s.mu.Lock()
		cont, ok := s.callPending[m.Request]
		if ok {
			delete(s.callPending, m.Request)
		}
		s.mu.Unlock()
		if !ok {
			s.logOrphanError(m)
			return
		}
		cont.lane.Enqueue(func() {
			if cont.errCb != nil {
				cont.errCb(m.Details, m.URI, m.Args, m.KwArgs)
			}
		})

	case wampmsg.SUBSCRIBE:
		s.mu.Lock()
		cont, ok := s.subscribePending[m.Request]
		if ok {
			delete(s.subscribePending, m.Request)
		}
		s.mu.Unlock()
		if !ok {
			s.logOrphanError(m)
			return
		}
		cont.lane.Enqueue(func() {
			if cont.errCb != nil {
				cont.errCb(m.Details, m.URI)
			}
		})

	case wampmsg.UNSUBSCRIBE:
		s.mu.Lock()
		cont, ok := s.unsubscribePending[m.Request]
		if ok {
			delete(s.unsubscribePending, m.Request)
		}
		s.mu.Unlock()
		if !ok {
			s.logOrphanError(m)
			return
		}
		cont.lane.Enqueue(func() {
			if cont.errCb != nil {
				cont.errCb(m.Details, m.URI)
			}
		})

	case wampmsg.PUBLISH:
		s.mu.Lock()
		cont, ok := s.publishPending[m.Request]
		if ok {
			delete(s.publishPending, m.Request)
		}
		s.mu.Unlock()
		if !ok {
			s.logOrphanError(m)
			return
		}
		cont.lane.Enqueue(func() {
			if cont.errCb != nil {
				cont.errCb(m.Details, m.URI)
			}
		})

	case wampmsg.REGISTER:
		s.mu.Lock()
		cont, ok := s.registerPending[m.Request]
		if ok {
			delete(s.registerPending, m.Request)
		}
		s.mu.Unlock()
		if !ok {
			s.logOrphanError(m)
			return
		}
		cont.lane.Enqueue(func() {
			if cont.errCb != nil {
				cont.errCb(m.Details, m.URI)
			}
		})

	case wampmsg.UNREGISTER:
		s.mu.Lock()
		cont, ok := s.unregisterPending[m.Request]
		if ok {
			delete(s.unregisterPending, m.Request)
		}
		s.mu.Unlock()
		if !ok {
			s.logOrphanError(m)
			return
		}
		cont.lane.Enqueue(func() {
			if cont.errCb != nil {
				cont.errCb(m.Details, m.URI)
			}
		})

	default:
		s.logOrphanError(m)
	}
}

func (s *Session) logOrphanError(m *wampmsg.Error) {
	s.logger.Debug("wampclient: ERROR for unknown or unsupported request type",
		"request_type", m.RequestType, "request", m.Request, "error_uri", m.URI)
}

func (s *Session) handleSubscribed(m *wampmsg.Subscribed) {
	s.mu.Lock()
	cont, ok := s.subscribePending[m.Request]
	if ok {
		delete(s.subscribePending, m.Request)
	}
	s.mu.Unlock()
	if !ok {
		s.logger.Debug("wampclient: SUBSCRIBED for unknown request", "request", m.Request)
		return
	}

	handle := &Subscription{owner: s, id: m.Subscription, lane: cont.lane}
	rec := &subscriptionRecord{id: m.Subscription, topic: cont.topic, handler: cont.handler, lane: cont.lane, handle: handle}
	rec.live.Store(true)

	s.mu.Lock()
	s.subscriptions[m.Subscription] = rec
	s.mu.Unlock()

	cont.lane.Enqueue(func() {
		if cont.success != nil {
			cont.success(handle)
		}
	})
}

func (s *Session) handleUnsubscribed(m *wampmsg.Unsubscribed) {
	s.mu.Lock()
	cont, ok := s.unsubscribePending[m.Request]
	if ok {
		delete(s.unsubscribePending, m.Request)
	}
	var rec *subscriptionRecord
	if ok {
		rec = s.subscriptions[cont.subscriptionID]
		delete(s.subscriptions, cont.subscriptionID)
	}
	s.mu.Unlock()

	if !ok {
		s.logger.Debug("wampclient: UNSUBSCRIBED for unknown request", "request", m.Request)
		return
	}
	if rec != nil {
		rec.live.Store(false)
		if rec.handle != nil {
			rec.handle.invalidate()
		}
	}

	cont.lane.Enqueue(func() {
		if cont.success != nil {
			cont.success()
		}
	})
}

func (s *Session) handlePublished(m *wampmsg.Published) {
	s.mu.Lock()
	cont, ok := s.publishPending[m.Request]
	if ok {
		delete(s.publishPending, m.Request)
	}
	s.mu.Unlock()
	if !ok {
		s.logger.Debug("wampclient: PUBLISHED for unknown request", "request", m.Request)
		return
	}

	cont.lane.Enqueue(func() {
		if cont.success != nil {
			cont.success(m.Publication)
		}
	})
}

func (s *Session) handleEvent(m *wampmsg.Event) {
	s.mu.Lock()
	rec, ok := s.subscriptions[m.Subscription]
	s.mu.Unlock()
	if !ok {
		s.logger.Debug("wampclient: EVENT for unknown subscription", "subscription", m.Subscription)
		return
	}
	if !rec.live.Load() {
		return
	}

	details := m.Details
	if len(details) > 0 {
		details = mergeDict(details, func(d wampmsg.Dict) { d["topic"] = string(rec.topic) })
	}

	rec.lane.Enqueue(func() {
		if rec.handler != nil {
			rec.handler(details, m.Args, m.KwArgs)
		}
	})
}

func (s *Session) handleRegistered(m *wampmsg.Registered) {
	s.mu.Lock()
	cont, ok := s.registerPending[m.Request]
	if ok {
		delete(s.registerPending, m.Request)
	}
	s.mu.Unlock()
	if !ok {
		s.logger.Debug("wampclient: REGISTERED for unknown request", "request", m.Request)
		return
	}

	handle := &Registration{owner: s, id: m.Registration, lane: cont.lane}
	rec := &registrationRecord{id: m.Registration, procedure: cont.procedure, handler: cont.handler, lane: cont.lane, handle: handle}
	rec.live.Store(true)

	s.mu.Lock()
	s.registrations[m.Registration] = rec
	s.mu.Unlock()

	cont.lane.Enqueue(func() {
		if cont.success != nil {
			cont.success(handle)
		}
	})
}

func (s *Session) handleUnregistered(m *wampmsg.Unregistered) {
	s.mu.Lock()
	cont, ok := s.unregisterPending[m.Request]
	if ok {
		delete(s.unregisterPending, m.Request)
	}
	var rec *registrationRecord
	if ok {
		rec = s.registrations[cont.registrationID]
		delete(s.registrations, cont.registrationID)
	}
	s.mu.Unlock()

	if !ok {
		s.logger.Debug("wampclient: UNREGISTERED for unknown request", "request", m.Request)
		return
	}
	if rec != nil {
		rec.live.Store(false)
		if rec.handle != nil {
			rec.handle.invalidate()
		}
	}

	cont.lane.Enqueue(func() {
		if cont.success != nil {
			cont.success()
		}
	})
}

func (s *Session) handleInvocation(m *wampmsg.Invocation) {
	s.mu.Lock()
	rec, ok := s.registrations[m.Registration]
	s.mu.Unlock()
	if !ok {
		s.logger.Debug("wampclient: INVOCATION for unknown registration", "registration", m.Registration)
		return
	}
	if !rec.live.Load() {
		return
	}

	details := m.Details
	if len(details) > 0 {
		details = mergeDict(details, func(d wampmsg.Dict) { d["procedure"] = string(rec.procedure) })
	}

	reqID := m.Request
	args := m.Args
	kwargs := m.KwArgs

	rec.lane.Enqueue(func() {
		s.invoke(rec, reqID, details, args, kwargs)
	})
}

func (s *Session) invoke(rec *registrationRecord, reqID wampmsg.ID, details wampmsg.Dict, args wampmsg.List, kwargs wampmsg.Dict) {
	if rec.handler == nil {
		return
	}

	result, err := rec.handler(context.Background(), args, kwargs)
	if err != nil {
		s.sendMessage(&wampmsg.Error{
			RequestType: wampmsg.INVOCATION,
			Request:     reqID,
			Details:     wampmsg.Dict{},
			URI:         "wamp.error.invocation_exception",
			Args:        wampmsg.List{err.Error()},
		})
		return
	}
	s.sendMessage(yieldFor(reqID, result))
}

// yieldFor shapes an invocation handler's return value into a YIELD: a
// string-keyed map becomes kwargs, an ordered sequence becomes args,
// anything else becomes a single-element args list.
func yieldFor(reqID wampmsg.ID, result any) *wampmsg.Yield {
	switch v := result.(type) {
	case wampmsg.Dict:
		return &wampmsg.Yield{Request: reqID, Options: wampmsg.Dict{}, Args: wampmsg.List{}, KwArgs: v}
	case map[string]any:
		return &wampmsg.Yield{Request: reqID, Options: wampmsg.Dict{}, Args: wampmsg.List{}, KwArgs: wampmsg.Dict(v)}
	case wampmsg.List:
		return &wampmsg.Yield{Request: reqID, Options: wampmsg.Dict{}, Args: v}
	case []any:
		return &wampmsg.Yield{Request: reqID, Options: wampmsg.Dict{}, Args: wampmsg.List(v)}
	default:
		return &wampmsg.Yield{Request: reqID, Options: wampmsg.Dict{}, Args: wampmsg.List{v}}
	}
}
