package devtools

import (
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/loom-dev/loom/internal/errors"
	"github.com/loom-dev/loom/pkg/core"
)

// ProtoVersion is the inspection protocol version carried in hello
// frames. Bump it when the frame layout or payload schemas change.
const ProtoVersion = 1

// Hello is the payload of a FrameHello frame, sent once per stream
// before any snapshot.
type Hello struct {
	Proto   int       `json:"proto" msgpack:"proto"`
	Engine  string    `json:"engine" msgpack:"engine"`
	PID     int       `json:"pid" msgpack:"pid"`
	Started time.Time `json:"started" msgpack:"started"`
}

// TreeSnapshot is the payload of a FrameTree frame: every mounted root
// at one instant, in mount order.
type TreeSnapshot struct {
	Taken time.Time           `json:"taken" msgpack:"taken"`
	Nodes int                 `json:"nodes" msgpack:"nodes"`
	Roots []core.SnapshotNode `json:"roots" msgpack:"roots"`
}

// StatsSample is the payload of a FrameStats frame: one pump's numbers.
type StatsSample struct {
	Taken    time.Time     `json:"taken" msgpack:"taken"`
	Duration time.Duration `json:"duration" msgpack:"duration"`
	Flags    int           `json:"flags" msgpack:"flags"`
	Applied  int           `json:"applied" msgpack:"applied"`
	Dropped  int           `json:"dropped" msgpack:"dropped"`
	Rounds   int           `json:"rounds" msgpack:"rounds"`
	Renders  int           `json:"renders" msgpack:"renders"`
	Nodes    int           `json:"nodes" msgpack:"nodes"`
}

// EncodeHelloFrame packs a hello into a FrameHello frame.
func EncodeHelloFrame(h Hello) (*Frame, error) {
	return encodeFrame(FrameHello, h)
}

// DecodeHelloFrame unpacks a FrameHello frame payload.
func DecodeHelloFrame(f *Frame) (Hello, error) {
	var h Hello
	err := decodeFrame(f, FrameHello, &h)
	return h, err
}

// EncodeTreeFrame packs a snapshot into a FrameTree frame.
func EncodeTreeFrame(s TreeSnapshot) (*Frame, error) {
	return encodeFrame(FrameTree, s)
}

// DecodeTreeFrame unpacks a FrameTree frame payload.
func DecodeTreeFrame(f *Frame) (TreeSnapshot, error) {
	var s TreeSnapshot
	err := decodeFrame(f, FrameTree, &s)
	return s, err
}

// EncodeStatsFrame packs a stats sample into a FrameStats frame.
func EncodeStatsFrame(s StatsSample) (*Frame, error) {
	return encodeFrame(FrameStats, s)
}

// DecodeStatsFrame unpacks a FrameStats frame payload.
func DecodeStatsFrame(f *Frame) (StatsSample, error) {
	var s StatsSample
	err := decodeFrame(f, FrameStats, &s)
	return s, err
}

func encodeFrame(ft FrameType, v any) (*Frame, error) {
	payload, err := msgpack.Marshal(v)
	if err != nil {
		return nil, err
	}
	return NewFrame(ft, payload), nil
}

func decodeFrame(f *Frame, want FrameType, v any) error {
	if f.Type != want {
		return errors.New("E050").
			WithDetail("expected a %s frame, got %s", want, f.Type)
	}
	if err := msgpack.Unmarshal(f.Payload, v); err != nil {
		return errors.New("E050").
			WithDetail("%s frame payload does not unpack", f.Type).Wrap(err)
	}
	return nil
}
