package wampclient

import (
	"context"
	"sync/atomic"

	"github.com/wampio/gowamp-client/internal/wampmsg"
)

// CallSuccessFunc is invoked when a CALL completes with RESULT.
type CallSuccessFunc func(details wampmsg.Dict, args wampmsg.List, kwargs wampmsg.Dict)

// CallErrorFunc is invoked when a CALL completes with ERROR, or is
// rejected/drained locally.
type CallErrorFunc func(details wampmsg.Dict, errURI wampmsg.URI, args wampmsg.List, kwargs wampmsg.Dict)

// SimpleSuccessFunc is the shape of the success callback for UNREGISTER
// and UNSUBSCRIBE acknowledgements, which carry no payload beyond the
// identifier already held by the handle.
type SimpleSuccessFunc func()

// SimpleErrorFunc is the shape of the error callback shared by REGISTER,
// UNREGISTER, SUBSCRIBE, UNSUBSCRIBE, and acknowledged PUBLISH.
type SimpleErrorFunc func(details wampmsg.Dict, errURI wampmsg.URI)

// SubscribedFunc delivers the subscription handle once SUBSCRIBED
// arrives.
type SubscribedFunc func(sub *Subscription)

// RegisteredFunc delivers the registration handle once REGISTERED
// arrives.
type RegisteredFunc func(reg *Registration)

// EventHandler is invoked, on its subscription's lane, for every EVENT
// delivered to a live subscription.
type EventHandler func(details wampmsg.Dict, args wampmsg.List, kwargs wampmsg.Dict)

// InvocationHandler is invoked, on its registration's lane, for every
// INVOCATION delivered to a live registration. The return value is
// serialized into a YIELD; a non-nil error instead produces
// ERROR(INVOCATION, ...) with wamp.error.invocation_exception.
type InvocationHandler func(ctx context.Context, args wampmsg.List, kwargs wampmsg.Dict) (result any, err error)

type callContinuation struct {
	success CallSuccessFunc
	errCb   CallErrorFunc
	lane    Lane
}

type registerContinuation struct {
	success   RegisteredFunc
	errCb     SimpleErrorFunc
	handler   InvocationHandler
	procedure wampmsg.URI
	lane      Lane
}

type unregisterContinuation struct {
	registrationID wampmsg.ID
	success        SimpleSuccessFunc
	errCb          SimpleErrorFunc
	lane           Lane
}

type subscribeContinuation struct {
	success SubscribedFunc
	errCb   SimpleErrorFunc
	handler EventHandler
	topic   wampmsg.URI
	lane    Lane
}

type unsubscribeContinuation struct {
	subscriptionID wampmsg.ID
	success        SimpleSuccessFunc
	errCb          SimpleErrorFunc
	lane           Lane
}

type publishContinuation struct {
	success func(publicationID wampmsg.ID)
	errCb   SimpleErrorFunc
	lane    Lane
}

// registrationRecord is the handle-table entry for a live registration.
type registrationRecord struct {
	id        wampmsg.ID
	procedure wampmsg.URI
	handler   InvocationHandler
	lane      Lane
	live      atomic.Bool
	handle    *Registration
}

// subscriptionRecord is the handle-table entry for a live subscription.
type subscriptionRecord struct {
	id      wampmsg.ID
	topic   wampmsg.URI
	handler EventHandler
	lane    Lane
	live    atomic.Bool
	handle  *Subscription
}
