// Package multiplayer negotiates a session between two players and keeps
// their songs in sync.
package multiplayer

import (
	"git.lost.host/meutraa/stepline/internal/audio"
	"git.lost.host/meutraa/stepline/internal/link"
	log "github.com/sirupsen/logrus"
)

const (
	// SyncTimeout is the number of invalid messages tolerated while
	// negotiating.
	SyncTimeout = 10

	// RemoteTimeout is the number of frames without messages before the
	// remote player is considered gone during a song.
	RemoteTimeout = 16
)

type State uint8

const (
	SendRomID State = iota
	SendProgress
	Playing
)

func (s State) String() string {
	switch s {
	case SendRomID:
		return "SEND_ROM_ID"
	case SendProgress:
		return "SEND_PROGRESS"
	case Playing:
		return "PLAYING"
	}
	return "UNKNOWN"
}

type Mode uint8

const (
	Offline Mode = iota
	Vs
	Coop
)

type Error uint8

const (
	ErrorNone Error = iota
	ErrorWTF
	ErrorTooManyPlayers
	ErrorRomMismatch
	ErrorWrongMode
)

func (e Error) String() string {
	switch e {
	case ErrorNone:
		return "NONE"
	case ErrorWTF:
		return "WTF"
	case ErrorTooManyPlayers:
		return "TOO_MANY_PLAYERS"
	case ErrorRomMismatch:
		return "ROM_MISMATCH"
	case ErrorWrongMode:
		return "WRONG_MODE"
	}
	return "UNKNOWN"
}

type Syncer struct {
	link        link.Link
	romID       uint16
	progress    Progress
	librarySize int

	state    State
	mode     Mode
	err      Error
	playerID int

	outgoingEvent   uint8
	outgoingPayload uint16
	timeoutCount    int

	// Remote is the progress received by the slave.
	Remote Progress

	isPlayingSong     bool
	hasStartedAudio   bool
	songChecksum      uint16
	currentAudioChunk int
	remoteTimeout     int
}

// New creates an offline syncer. progress is sent to the slave when
// playing as the master.
func New(l link.Link, romID uint32, progress Progress, librarySize int) *Syncer {
	s := &Syncer{
		link:        l,
		romID:       PartialRomID(romID),
		progress:    progress,
		librarySize: librarySize,
	}
	s.reset()
	return s
}

func (s *Syncer) IsPlaying() bool { return s.state >= Playing }
func (s *Syncer) IsMaster() bool { return s.playerID == 0 }
func (s *Syncer) State() State { return s.state }
func (s *Syncer) Mode() Mode { return s.mode }
func (s *Syncer) LastError() Error { return s.err }
func (s *Syncer) isActive() bool { return s.playerID > -1 }
func (s *Syncer) IsPlayingSong() bool { return s.isPlayingSong }

// HasStartedAudio reports whether both players agreed on the song start.
func (s *Syncer) HasStartedAudio() bool { return s.hasStartedAudio }

func (s *Syncer) LocalPlayerID() int {
	if s.isActive() {
		return s.playerID
	}
	return 0
}

func (s *Syncer) RemotePlayerID() int {
	if s.isActive() {
		return 1 - s.playerID
	}
	return 0
}

// Initialize starts negotiating in mode, or goes offline.
func (s *Syncer) Initialize(mode Mode) {
	if mode != Offline {
		s.link.Activate()
	} else {
		s.link.Deactivate()
	}

	s.mode = mode
	s.reset()
	s.resetError()
}

// Update runs once per frame.
func (s *Syncer) Update() {
	if s.mode == Offline {
		return
	}

	if !s.link.IsConnected() {
		s.fail(ErrorNone)
		return
	}
	if s.link.PlayerCount() != 2 {
		s.fail(ErrorTooManyPlayers)
		return
	}

	if !s.isActive() {
		s.reset()
		s.playerID = s.link.CurrentPlayerID()
		log.WithField("player", s.playerID).Debug("link session started")
	}

	if s.IsPlaying() {
		s.resetError()
		if s.isPlayingSong && s.hasStartedAudio {
			s.receiveAudioChunks()
		}
		return
	}

	for {
		s.sync()
		if !s.isActive() || !s.link.HasMessage(s.RemotePlayerID()) {
			break
		}
	}
}

func (s *Syncer) setState(state State) {
	log.WithField("state", state).Debug("sync state")
	s.state = state
	s.ClearTimeout()
}

func (s *Syncer) sync() {
	incoming := s.link.Read(s.RemotePlayerID())
	event, payload := EventOf(incoming), PayloadOf(incoming)
	if incoming == link.NoData {
		event = 0
	}

	s.outgoingEvent = 0
	s.outgoingPayload = 0

	switch s.state {
	case SendRomID:
		s.outgoingEvent = EventRomID
		s.outgoingPayload = s.romID

		if !s.expect(event, EventRomID) {
			break
		}
		if payload != s.romID {
			s.fail(ErrorRomMismatch)
			return
		}
		s.setState(SendProgress)

	case SendProgress:
		var modeBit uint16
		if s.mode == Coop {
			modeBit = 1
		}
		s.outgoingEvent = EventProgress
		if s.IsMaster() {
			s.outgoingPayload = buildProgress(modeBit, s.progress)
		} else {
			s.outgoingPayload = modeBit
		}

		if !s.expect(event, EventProgress) {
			break
		}

		if s.IsMaster() {
			if payload != modeBit {
				s.fail(ErrorWrongMode)
				return
			}
			s.setState(Playing)
			break
		}

		receivedMode, remote := readProgress(payload)
		if receivedMode != modeBit {
			s.fail(ErrorWrongMode)
			return
		}
		if !remote.LibraryType.IsLibraryType() || int(remote.CompletedSongs) > s.librarySize {
			s.fail(ErrorWTF)
			return
		}
		s.Remote = remote
		s.setState(Playing)
	}

	s.sendOutgoingData()
	s.checkTimeout()
}

func (s *Syncer) expect(event, expected uint8) bool {
	if event != expected {
		s.timeoutCount++
		return false
	}
	s.timeoutCount = 0
	return true
}

func (s *Syncer) sendOutgoingData() {
	if s.outgoingEvent != 0 {
		s.link.Send(Build(s.outgoingEvent, s.outgoingPayload))
	}
}

// RegisterTimeout counts a frame spent waiting for the remote player.
func (s *Syncer) RegisterTimeout() {
	s.timeoutCount++
	s.checkTimeout()
}

func (s *Syncer) ClearTimeout() {
	s.timeoutCount = 0
	s.remoteTimeout = 0
}

func (s *Syncer) checkTimeout() {
	if s.timeoutCount >= SyncTimeout {
		log.WithFields(log.Fields{"state": s.state, "count": s.timeoutCount}).Warn("sync timeout")
		s.reset()
	}
}

func (s *Syncer) fail(err Error) {
	if err != ErrorNone {
		log.WithFields(log.Fields{"state": s.state, "error": err}).Warn("sync failed")
	}
	if s.isActive() {
		s.sendOutgoingData()
	}
	s.reset()
	s.err = err
}

func (s *Syncer) reset() {
	s.playerID = -1
	s.state = SendRomID
	s.timeoutCount = 0
	s.resetData()
	s.ResetSongState()
}

func (s *Syncer) resetData() {
	s.Remote = Progress{}
	s.outgoingEvent = 0
	s.outgoingPayload = 0
}

func (s *Syncer) resetError() {
	s.err = ErrorNone
}

// StartSong begins the start handshake for the song identified by
// checksum.
func (s *Syncer) StartSong(checksum uint16) {
	s.ResetSongState()
	s.isPlayingSong = true
	s.songChecksum = checksum & eventPayloadMask
}

// ResetSongState leaves the current song.
func (s *Syncer) ResetSongState() {
	s.isPlayingSong = false
	s.hasStartedAudio = false
	s.songChecksum = 0
	s.currentAudioChunk = 0
	s.remoteTimeout = 0
}

// SynchronizeSongStart runs one frame of the start handshake: both players
// send the song checksum until they read the other's. It returns true once
// the audio may start.
func (s *Syncer) SynchronizeSongStart() bool {
	if !s.isPlayingSong || s.hasStartedAudio {
		return s.hasStartedAudio
	}

	remote := s.RemotePlayerID()
	start := Build(EventStartSong, s.songChecksum)
	s.link.Send(start)

	isOnSync := false
	for s.link.HasMessage(remote) {
		if s.link.Read(remote) == start {
			isOnSync = true
		}
	}
	if !isOnSync {
		s.RegisterTimeout()
		return false
	}

	if !s.IsMaster() {
		s.currentAudioChunk = audio.SyncLimit
	}
	s.hasStartedAudio = true
	s.ClearTimeout()
	log.WithField("player", s.playerID).Info("song start synchronized")
	return true
}

// OnAudioChunks broadcasts the local chunk counter. The master's counter
// drives the slave, the slave's keeps the session alive.
func (s *Syncer) OnAudioChunks(current int) {
	if !s.isPlayingSong || !s.hasStartedAudio {
		return
	}
	if s.IsMaster() {
		s.currentAudioChunk = current
	}
	s.link.Send(BuildAudioChunk(current))
}

// ExpectedAudioChunk is the chunk the local player should be at, or 0 when
// playback is not gated.
func (s *Syncer) ExpectedAudioChunk() int {
	if s.isPlayingSong && !s.IsMaster() {
		return s.currentAudioChunk
	}
	return 0
}

func (s *Syncer) receiveAudioChunks() {
	remote := s.RemotePlayerID()
	received := false
	for s.link.HasMessage(remote) {
		data := s.link.Read(remote)
		if !IsAudioChunk(data) {
			continue
		}
		received = true
		if !s.IsMaster() {
			s.currentAudioChunk = ReadAudioChunk(data, s.currentAudioChunk)
		}
	}

	if received {
		s.remoteTimeout = 0
		return
	}
	s.remoteTimeout++
	if s.remoteTimeout >= RemoteTimeout {
		log.WithField("player", s.playerID).Warn("remote player timed out")
		s.reset()
	}
}
