package wampclient

import "github.com/wampio/gowamp-client/internal/wampmsg"

// idAllocator is a session-scoped, pre-incremented counter for outbound
// request identifiers. It starts at 1 and the first allocation returns 2;
// callers must serialize access externally (the session's own mutex).
type idAllocator struct {
	counter int64
}

func newIDAllocator() *idAllocator {
	return &idAllocator{counter: 1}
}

func (a *idAllocator) next() wampmsg.ID {
	a.counter++
	return wampmsg.ID(a.counter)
}
