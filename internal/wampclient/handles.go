package wampclient

import (
	"sync/atomic"

	"github.com/wampio/gowamp-client/internal/wampmsg"
)

// sessionHandleOwner is the slice of Session that handles need: enough to
// issue unregister/unsubscribe without holding a full Session reference
// cycle. Handles observe the session; they do not extend its lifetime.
type sessionHandleOwner interface {
	unsubscribe(subscriptionID wampmsg.ID, lane Lane, success SimpleSuccessFunc, errCb SimpleErrorFunc)
	unregister(registrationID wampmsg.ID, lane Lane, success SimpleSuccessFunc, errCb SimpleErrorFunc)
}

// Subscription is returned to the caller on successful subscribe. It
// remains valid until Unsubscribe is acknowledged or the session ends.
type Subscription struct {
	owner       sessionHandleOwner
	id          wampmsg.ID
	lane        Lane
	invalidated atomic.Bool
}

// ID returns the router-assigned subscription identifier.
func (s *Subscription) ID() wampmsg.ID { return s.id }

// Unsubscribe requests removal of this subscription. success and errCb
// may be nil. After UNSUBSCRIBED is acknowledged the subscription stops
// dispatching EVENT and further calls to Unsubscribe are no-ops.
func (s *Subscription) Unsubscribe(success SimpleSuccessFunc, errCb SimpleErrorFunc) {
	if s.invalidated.Load() {
		return
	}
	s.owner.unsubscribe(s.id, s.lane, success, errCb)
}

func (s *Subscription) invalidate() { s.invalidated.Store(true) }

// Registration is returned to the caller on successful register. It
// remains valid until Unregister is acknowledged or the session ends.
type Registration struct {
	owner       sessionHandleOwner
	id          wampmsg.ID
	lane        Lane
	invalidated atomic.Bool
}

// ID returns the router-assigned registration identifier.
func (r *Registration) ID() wampmsg.ID { return r.id }

// Unregister requests removal of this registration. success and errCb
// may be nil. After UNREGISTERED is acknowledged the registration stops
// dispatching INVOCATION and further calls to Unregister are no-ops.
func (r *Registration) Unregister(success SimpleSuccessFunc, errCb SimpleErrorFunc) {
	if r.invalidated.Load() {
		return
	}
	r.owner.unregister(r.id, r.lane, success, errCb)
}

func (r *Registration) invalidate() { r.invalidated.Store(true) }
