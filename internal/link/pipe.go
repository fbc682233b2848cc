package link

import "sync/atomic"

// Endpoint is one side of an in-memory link.
type Endpoint struct {
	id     int
	peer   *Endpoint
	inbox  Ring
	active atomic.Bool
}

// NewPipe returns two connected endpoints. The first one is the master.
func NewPipe() (*Endpoint, *Endpoint) {
	master, slave := &Endpoint{id: 0}, &Endpoint{id: 1}
	master.peer, slave.peer = slave, master
	return master, slave
}

func (e *Endpoint) IsConnected() bool {
	return e.active.Load() && e.peer.active.Load()
}

func (e *Endpoint) PlayerCount() int {
	if e.IsConnected() {
		return MaxPlayers
	}
	return 1
}

func (e *Endpoint) CurrentPlayerID() int { return e.id }

func (e *Endpoint) Send(data uint16) {
	if data == NoData || !e.IsConnected() {
		return
	}
	e.peer.inbox.Push(data)
}

func (e *Endpoint) Read(playerID int) uint16 {
	if playerID != e.peer.id {
		return NoData
	}
	return e.inbox.Pop()
}

func (e *Endpoint) HasMessage(playerID int) bool {
	return playerID == e.peer.id && e.inbox.Len() > 0
}

func (e *Endpoint) Activate() {
	e.active.Store(true)
}

func (e *Endpoint) Deactivate() {
	e.active.Store(false)
	e.inbox.Clear()
}
