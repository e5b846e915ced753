package wampclient

import "github.com/wampio/gowamp-client/internal/wampmsg"

// Call invokes a remote procedure. Result delivery happens exclusively
// through success/errCb, enqueued on lane. If the session is not
// ESTABLISHED, errCb is invoked (on lane) with ErrNotConnected rather
// than the call being silently dropped.
func (s *Session) Call(procedure wampmsg.URI, options wampmsg.Dict, args wampmsg.List, kwargs wampmsg.Dict, lane Lane, success CallSuccessFunc, errCb CallErrorFunc) {
	s.mu.Lock()
	if s.state != StateEstablished {
		s.mu.Unlock()
		s.logger.Warn("wampclient: call issued while not connected", "procedure", procedure)
		if errCb != nil && lane != nil {
			lane.Enqueue(func() { errCb(notConnectedDetails(), uriNotConnected, nil, nil) })
		}
		return
	}
	reqID := s.nextRequestID()
	s.callPending[reqID] = &callContinuation{success: success, errCb: errCb, lane: lane}
	s.mu.Unlock()

	s.sendMessage(&wampmsg.Call{Request: reqID, Options: options, Procedure: procedure, Args: args, KwArgs: kwargs})
}

// Register binds a procedure URI to handler, returning the registration
// handle through success once REGISTERED arrives.
func (s *Session) Register(procedure wampmsg.URI, options wampmsg.Dict, lane Lane, success RegisteredFunc, errCb SimpleErrorFunc, handler InvocationHandler) {
	s.mu.Lock()
	if s.state != StateEstablished {
		s.mu.Unlock()
		s.logger.Warn("wampclient: register issued while not connected", "procedure", procedure)
		s.notConnected(lane, errCb)
		return
	}
	reqID := s.nextRequestID()
	s.registerPending[reqID] = &registerContinuation{success: success, errCb: errCb, handler: handler, procedure: procedure, lane: lane}
	s.mu.Unlock()

	s.sendMessage(&wampmsg.Register{Request: reqID, Options: options, Procedure: procedure})
}

// Subscribe binds a topic URI to handler, returning the subscription
// handle through success once SUBSCRIBED arrives.
func (s *Session) Subscribe(topic wampmsg.URI, options wampmsg.Dict, lane Lane, success SubscribedFunc, errCb SimpleErrorFunc, handler EventHandler) {
	s.mu.Lock()
	if s.state != StateEstablished {
		s.mu.Unlock()
		s.logger.Warn("wampclient: subscribe issued while not connected", "topic", topic)
		s.notConnected(lane, errCb)
		return
	}
	reqID := s.nextRequestID()
	s.subscribePending[reqID] = &subscribeContinuation{success: success, errCb: errCb, handler: handler, topic: topic, lane: lane}
	s.mu.Unlock()

	s.sendMessage(&wampmsg.Subscribe{Request: reqID, Options: options, Topic: topic})
}

// Publish emits an event to topic. If success or errCb is non-nil, the
// publish is acknowledged (options["acknowledge"]=true) and a
// continuation is recorded; otherwise no record is created and the
// publish fires and forgets.
func (s *Session) Publish(topic wampmsg.URI, options wampmsg.Dict, args wampmsg.List, kwargs wampmsg.Dict, lane Lane, success func(publicationID wampmsg.ID), errCb SimpleErrorFunc) {
	acknowledge := success != nil || errCb != nil

	s.mu.Lock()
	if s.state != StateEstablished {
		s.mu.Unlock()
		s.logger.Warn("wampclient: publish issued while not connected", "topic", topic)
		if acknowledge {
			s.notConnected(lane, errCb)
		}
		return
	}

	opts := options
	if acknowledge {
		opts = mergeDict(options, func(d wampmsg.Dict) { d["acknowledge"] = true })
	}

	reqID := s.nextRequestID()
	if acknowledge {
		s.publishPending[reqID] = &publishContinuation{success: success, errCb: errCb, lane: lane}
	}
	s.mu.Unlock()

	s.sendMessage(&wampmsg.Publish{Request: reqID, Options: opts, Topic: topic, Args: args, KwArgs: kwargs})
}

// unregister is invoked only through a Registration handle.
func (s *Session) unregister(registrationID wampmsg.ID, lane Lane, success SimpleSuccessFunc, errCb SimpleErrorFunc) {
	s.mu.Lock()
	if s.state != StateEstablished {
		s.mu.Unlock()
		s.notConnected(lane, errCb)
		return
	}
	reqID := s.nextRequestID()
	s.unregisterPending[reqID] = &unregisterContinuation{registrationID: registrationID, success: success, errCb: errCb, lane: lane}
	s.mu.Unlock()

	s.sendMessage(&wampmsg.Unregister{Request: reqID, Registration: registrationID})
}

// unsubscribe is invoked only through a Subscription handle.
func (s *Session) unsubscribe(subscriptionID wampmsg.ID, lane Lane, success SimpleSuccessFunc, errCb SimpleErrorFunc) {
	s.mu.Lock()
	if s.state != StateEstablished {
		s.mu.Unlock()
		s.notConnected(lane, errCb)
		return
	}
	reqID := s.nextRequestID()
	s.unsubscribePending[reqID] = &unsubscribeContinuation{subscriptionID: subscriptionID, success: success, errCb: errCb, lane: lane}
	s.mu.Unlock()

	s.sendMessage(&wampmsg.Unsubscribe{Request: reqID, Subscription: subscriptionID})
}

func (s *Session) notConnected(lane Lane, errCb SimpleErrorFunc) {
	if errCb == nil || lane == nil {
		return
	}
	lane.Enqueue(func() { errCb(notConnectedDetails(), uriNotConnected) })
}

func notConnectedDetails() wampmsg.Dict {
	return wampmsg.Dict{"error": ErrNotConnected.Error()}
}
