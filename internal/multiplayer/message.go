package multiplayer

import (
	"git.lost.host/meutraa/stepline/internal/audio"
	"git.lost.host/meutraa/stepline/internal/game"
	"git.lost.host/meutraa/stepline/internal/link"
	"github.com/cespare/xxhash"
)

// Message events, stored in bits 13..11 of a word.
const (
	EventRomID     uint8 = 1
	EventProgress  uint8 = 2
	EventStartSong uint8 = 3
)

const (
	audioChunkHeader  uint16 = 0b11 << 14
	audioPayloadMask  uint16 = 0x3FFF
	eventPayloadMask  uint16 = 0x7FF
	eventShift               = 11
	progressModeShift        = 10
	progressTypeShift        = 8
)

// Build packs an event message. Events never set both top bits.
func Build(event uint8, payload uint16) uint16 {
	return uint16(event&0b111)<<eventShift | payload&eventPayloadMask
}

func EventOf(data uint16) uint8 {
	return uint8(data>>eventShift) & 0b111
}

func PayloadOf(data uint16) uint16 {
	return data & eventPayloadMask
}

// IsAudioChunk reports whether data carries an audio chunk count.
func IsAudioChunk(data uint16) bool {
	return data != link.NoData && data&audioChunkHeader == audioChunkHeader
}

// BuildAudioChunk packs the chunk counter, offset by the sync limit and
// truncated to 14 bits.
func BuildAudioChunk(current int) uint16 {
	return audioChunkHeader | uint16(current+audio.SyncLimit)&audioPayloadMask
}

// ReadAudioChunk restores the counter of an audio chunk message, picking
// the value closest to last.
func ReadAudioChunk(data uint16, last int) int {
	const span = int(audioPayloadMask) + 1

	raw := last + audio.SyncLimit
	v := raw&^int(audioPayloadMask) | int(data&audioPayloadMask)
	if v < raw-span/2 {
		v += span
	} else if v > raw+span/2 && v >= span {
		v -= span
	}
	return v - audio.SyncLimit
}

// Progress is what the master tells the slave about its save.
type Progress struct {
	LibraryType    game.Difficulty
	CompletedSongs uint8
}

func buildProgress(modeBit uint16, p Progress) uint16 {
	return modeBit<<progressModeShift |
		uint16(p.LibraryType&0b11)<<progressTypeShift |
		uint16(p.CompletedSongs)
}

func readProgress(payload uint16) (modeBit uint16, p Progress) {
	modeBit = payload >> progressModeShift & 1
	p.LibraryType = game.Difficulty(payload >> progressTypeShift & 0b11)
	p.CompletedSongs = uint8(payload)
	return modeBit, p
}

// RomID identifies a song library. Both players must agree on it.
func RomID(parts ...[]byte) uint32 {
	h := xxhash.New()
	for _, part := range parts {
		h.Write(part)
	}
	return uint32(h.Sum64())
}

// PartialRomID is the part of a RomID sent over the link.
func PartialRomID(romID uint32) uint16 {
	return uint16(romID >> 11 & 0x3FF)
}

// Checksum identifies a song in the start handshake.
func Checksum(data []byte) uint16 {
	return uint16(xxhash.Sum64(data)) & eventPayloadMask
}
