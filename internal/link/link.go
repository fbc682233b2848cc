// Package link carries 16 bit words between the two players of a
// multiplayer session.
package link

const (
	// NoData is read when no message is waiting.
	NoData uint16 = 0xFFFF

	// BufferSize is the number of received words kept per remote player.
	BufferSize = 10

	MaxPlayers = 2
)

// Link is a connection to the other players. Player 0 is the master.
type Link interface {
	IsConnected() bool
	PlayerCount() int
	CurrentPlayerID() int

	// Send broadcasts data to the other players. It never blocks.
	Send(data uint16)
	// Read pops the oldest word received from playerID, or NoData.
	Read(playerID int) uint16
	HasMessage(playerID int) bool

	Activate()
	Deactivate()
}
