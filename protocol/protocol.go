// Package protocol implements the trace link between tickmux firmware and
// host tools: Klipper-style message blocks (length, sequence, VLQ payload,
// CRC16, sync byte) carrying scheduler reports.
package protocol

// Version is the trace protocol version sent in the hello report
const Version = 1

// Message block layout
const (
	MessageMax         = 512 // Scratch buffer size; holds several blocks
	MessageHeaderSize  = 2   // Length, sequence
	MessageTrailerSize = 3   // CRC16 (big endian), sync
	MessageLengthMin   = MessageHeaderSize + MessageTrailerSize
	MessageLengthMax   = 64
	MessagePositionLen = 0
	MessagePositionSeq = 1
	MessageTrailerCRC  = 3
	MessageTrailerSync = 1
	MessageValueSync   = 0x7E

	// Trace blocks flow firmware to host only, so the sequence byte keeps
	// the destination bits clear.
	MessageSeqMask = 0x0F
)
