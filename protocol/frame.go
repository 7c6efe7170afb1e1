package protocol

import "errors"

var ErrFrameTooLong = errors.New("frame exceeds MessageLengthMax")

// FrameEncoder wraps payloads in message blocks with a rolling sequence
type FrameEncoder struct {
	seq uint8
}

// Encode appends one block to out. fill writes the payload. If the result
// would exceed MessageLengthMax the block is rolled back and the sequence
// is not consumed.
func (e *FrameEncoder) Encode(out OutputBuffer, fill func(OutputBuffer)) error {
	start := out.CurPosition()
	out.Output([]byte{0, e.seq & MessageSeqMask})
	fill(out)

	msgLen := out.CurPosition() - start + MessageTrailerSize
	if msgLen > MessageLengthMax {
		rollback(out, start)
		return ErrFrameTooLong
	}
	out.Update(start+MessagePositionLen, uint8(msgLen))

	crc := CRC16(out.DataSince(start))
	out.Output([]byte{uint8(crc >> 8), uint8(crc), MessageValueSync})
	e.seq = (e.seq + 1) & MessageSeqMask
	return nil
}

func rollback(out OutputBuffer, pos int) {
	if s, ok := out.(*ScratchOutput); ok {
		s.pos = pos
	}
}

// FrameDecoder splits a byte stream into validated block payloads. A bad
// length, CRC or sync byte drops synchronization until the next sync byte.
type FrameDecoder struct {
	unsynced bool
	expect   uint8
	started  bool

	Frames  uint32 // Blocks delivered
	Dropped uint32 // Resynchronizations
	Lost    uint32 // Blocks missing according to the sequence
}

// Receive consumes complete blocks from input and calls fn with each
// payload. A trailing partial block is left in input for the next call.
// The payload slice is only valid during fn.
func (d *FrameDecoder) Receive(input InputBuffer, fn func(seq uint8, payload []byte)) {
	data := input.Data()

	for len(data) > 0 {
		if d.unsynced {
			i := 0
			for i < len(data) && data[i] != MessageValueSync {
				i++
			}
			if i == len(data) {
				data = nil
				break
			}
			data = data[i+1:]
			d.unsynced = false
			continue
		}

		if data[0] == MessageValueSync {
			data = data[1:]
			continue
		}
		if len(data) < MessageLengthMin {
			break
		}

		msgLen := int(data[MessagePositionLen])
		seq := data[MessagePositionSeq]
		if msgLen < MessageLengthMin || msgLen > MessageLengthMax || seq&^MessageSeqMask != 0 {
			d.desync()
			continue
		}
		if len(data) < msgLen {
			break
		}
		if data[msgLen-MessageTrailerSync] != MessageValueSync {
			d.desync()
			continue
		}
		crc := uint16(data[msgLen-MessageTrailerCRC])<<8 | uint16(data[msgLen-MessageTrailerCRC+1])
		if crc != CRC16(data[:msgLen-MessageTrailerSize]) {
			d.desync()
			continue
		}

		if d.started {
			d.Lost += uint32((seq - d.expect) & MessageSeqMask)
		}
		d.started = true
		d.expect = (seq + 1) & MessageSeqMask
		d.Frames++

		fn(seq, data[MessageHeaderSize:msgLen-MessageTrailerSize])
		data = data[msgLen:]
	}

	if consumed := input.Available() - len(data); consumed > 0 {
		input.Pop(consumed)
	}
}

func (d *FrameDecoder) desync() {
	d.unsynced = true
	d.Dropped++
}
