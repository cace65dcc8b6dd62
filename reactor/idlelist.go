package reactor

import (
	"net"
	"sync"
	"sync/atomic"
)

// idleConnList tracks connections that are between requests (parked in
// ServerConn's StateIdle) so a shutdown or load-shedding pass can close
// them without waiting for their next keep-alive request.
type idleConnList struct {
	mtx       sync.Mutex
	firstItem *idleConnListItem
	lastItem  *idleConnListItem
}

type idleConnListItem struct {
	nextItem *idleConnListItem
	prevItem *idleConnListItem
	c        net.Conn
	connTime atomic.Int64
}

func (l *idleConnList) insertBack(item *idleConnListItem) {
	l.mtx.Lock()
	defer l.mtx.Unlock()

	if l.lastItem == nil {
		l.firstItem = item
		l.lastItem = item
	} else {
		l.lastItem.nextItem = item
		item.prevItem = l.lastItem
		l.lastItem = item
	}
}

func (l *idleConnList) remove(item *idleConnListItem) {
	l.mtx.Lock()
	defer l.mtx.Unlock()

	l.removeNoLock(item)
}

func (l *idleConnList) removeNoLock(item *idleConnListItem) {
	if item.prevItem != nil {
		item.prevItem.nextItem = item.nextItem
	} else {
		l.firstItem = item.nextItem
	}
	if item.nextItem != nil {
		item.nextItem.prevItem = item.prevItem
	} else {
		l.lastItem = item.prevItem
	}
	item.prevItem = nil
	item.nextItem = nil
}

func (l *idleConnList) forEach(f func(item *idleConnListItem)) {
	var nextItem *idleConnListItem

	l.mtx.Lock()
	defer l.mtx.Unlock()

	for item := l.firstItem; item != nil; item = nextItem {
		nextItem = item.nextItem
		f(item)
	}
}
