package devtools

import (
	"bytes"
	"compress/gzip"
	"io"

	"github.com/loom-dev/loom/internal/errors"
)

// Frame constants.
const (
	// MaxPayloadSize is the maximum stored payload size (8 MiB).
	MaxPayloadSize = 8 << 20

	// CompressThreshold is the payload size at which Encode starts
	// gzip-compressing payloads.
	CompressThreshold = 1 << 10
)

// FrameType identifies the type of inspection frame.
type FrameType uint8

const (
	FrameHello   FrameType = 0x01 // Connection setup, engine identity
	FrameTree    FrameType = 0x02 // Full tree snapshot
	FrameStats   FrameType = 0x03 // Pump statistics sample
	FrameGoodbye FrameType = 0x04 // Stream ending, engine shutting down
)

// String returns the string representation of the frame type.
func (ft FrameType) String() string {
	switch ft {
	case FrameHello:
		return "Hello"
	case FrameTree:
		return "Tree"
	case FrameStats:
		return "Stats"
	case FrameGoodbye:
		return "Goodbye"
	default:
		return "Unknown"
	}
}

// FrameFlags are optional flags for frame processing.
type FrameFlags uint8

const (
	// FlagCompressed marks a gzip-compressed payload. The codec sets and
	// clears it itself; decoded frames never carry it.
	FlagCompressed FrameFlags = 0x01
)

// Has returns true if the flags contain the specified flag.
func (ff FrameFlags) Has(flag FrameFlags) bool {
	return ff&flag != 0
}

// ErrFrameTooLarge reports a payload over MaxPayloadSize.
var ErrFrameTooLarge = errors.Newf(errors.CategoryProtocol, "frame payload too large")

// Frame is one unit of the inspection stream.
//
// Wire format (2 fixed header bytes, then a varint length):
//
//	┌─────────────┬──────────────┬───────────────────────────────┐
//	│ Frame Type  │ Flags        │ Payload Length                │
//	│ (1 byte)    │ (1 byte)     │ (uvarint)                     │
//	└─────────────┴──────────────┴───────────────────────────────┘
//	│                                                             │
//	│  Payload (variable length)                                  │
//	│                                                             │
//	└─────────────────────────────────────────────────────────────┘
//
// The length counts payload bytes as stored. Payloads at or above
// CompressThreshold are gzip-compressed on the wire when that shrinks
// them; decoding restores the original bytes either way.
type Frame struct {
	Type    FrameType
	Flags   FrameFlags
	Payload []byte
}

// NewFrame creates a new frame with the given type and payload.
func NewFrame(ft FrameType, payload []byte) *Frame {
	return &Frame{
		Type:    ft,
		Flags:   0,
		Payload: payload,
	}
}

// Encode encodes the frame to bytes including the header.
func (f *Frame) Encode() ([]byte, error) {
	payload := f.Payload
	flags := f.Flags &^ FlagCompressed
	if len(payload) >= CompressThreshold {
		if c := compress(payload); len(c) < len(payload) {
			payload = c
			flags |= FlagCompressed
		}
	}
	if len(payload) > MaxPayloadSize {
		return nil, ErrFrameTooLarge
	}

	length := len(payload)
	buf := make([]byte, 0, 2+UvarintLen(uint64(length))+length)
	buf = append(buf, byte(f.Type), byte(flags))
	var lenBuf [MaxVarintLen]byte
	n := EncodeUvarint(lenBuf[:], uint64(length))
	buf = append(buf, lenBuf[:n]...)
	buf = append(buf, payload...)
	return buf, nil
}

// DecodeFrame decodes a frame from bytes. The input must contain the
// full header and payload; trailing bytes are ignored.
func DecodeFrame(data []byte) (*Frame, error) {
	if len(data) < 2 {
		return nil, errors.New("E050").
			WithDetail("frame header truncated at %d bytes", len(data))
	}
	ft := FrameType(data[0])
	flags := FrameFlags(data[1])

	length, n := DecodeUvarint(data[2:])
	if n < 0 {
		return nil, errors.New("E050").
			WithDetail("frame length is not a valid uvarint")
	}
	if length > MaxPayloadSize {
		return nil, errors.New("E050").
			WithDetail("frame payload of %d bytes exceeds the %d byte limit", length, MaxPayloadSize)
	}
	rest := data[2+n:]
	if uint64(len(rest)) < length {
		return nil, errors.New("E050").
			WithDetail("frame payload truncated: header promises %d bytes, %d remain", length, len(rest))
	}

	payload := make([]byte, length)
	copy(payload, rest)
	if flags.Has(FlagCompressed) {
		raw, err := decompress(payload)
		if err != nil {
			return nil, errors.New("E050").
				WithDetail("frame payload failed to decompress").Wrap(err)
		}
		payload = raw
		flags &^= FlagCompressed
	}

	return &Frame{
		Type:    ft,
		Flags:   flags,
		Payload: payload,
	}, nil
}

// ReadFrame reads a complete frame from an io.Reader. It returns io.EOF
// only at a clean stream end, before any header byte; a stream cut off
// mid-frame is a malformed-frame error.
func ReadFrame(r io.Reader) (*Frame, error) {
	header := make([]byte, 2)
	if _, err := io.ReadFull(r, header); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, errors.New("E050").
			WithDetail("frame header truncated").Wrap(err)
	}
	ft := FrameType(header[0])
	flags := FrameFlags(header[1])

	length, err := readUvarint(r)
	if err != nil {
		return nil, err
	}
	if length > MaxPayloadSize {
		return nil, errors.New("E050").
			WithDetail("frame payload of %d bytes exceeds the %d byte limit", length, MaxPayloadSize)
	}

	payload := make([]byte, length)
	if length > 0 {
		if _, err := io.ReadFull(r, payload); err != nil {
			return nil, errors.New("E050").
				WithDetail("frame payload truncated: header promises %d bytes", length).Wrap(err)
		}
	}
	if flags.Has(FlagCompressed) {
		raw, err := decompress(payload)
		if err != nil {
			return nil, errors.New("E050").
				WithDetail("frame payload failed to decompress").Wrap(err)
		}
		payload = raw
		flags &^= FlagCompressed
	}

	return &Frame{
		Type:    ft,
		Flags:   flags,
		Payload: payload,
	}, nil
}

// WriteFrame writes a complete frame to an io.Writer.
func WriteFrame(w io.Writer, f *Frame) error {
	data, err := f.Encode()
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

func readUvarint(r io.Reader) (uint64, error) {
	var one [1]byte
	var v uint64
	var shift uint
	for i := 0; i < MaxVarintLen; i++ {
		if _, err := io.ReadFull(r, one[:]); err != nil {
			return 0, errors.New("E050").
				WithDetail("frame length truncated").Wrap(err)
		}
		b := one[0]
		v |= uint64(b&0x7F) << shift
		if b < 0x80 {
			return v, nil
		}
		shift += 7
	}
	return 0, errors.New("E050").WithDetail("frame length uvarint overflows")
}

func compress(p []byte) []byte {
	var buf bytes.Buffer
	zw, _ := gzip.NewWriterLevel(&buf, gzip.BestSpeed)
	zw.Write(p) // writes to a bytes.Buffer cannot fail
	zw.Close()
	return buf.Bytes()
}

func decompress(p []byte) ([]byte, error) {
	zr, err := gzip.NewReader(bytes.NewReader(p))
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	out, err := io.ReadAll(io.LimitReader(zr, MaxPayloadSize+1))
	if err != nil {
		return nil, err
	}
	if len(out) > MaxPayloadSize {
		return nil, ErrFrameTooLarge
	}
	return out, nil
}
