package recording

import (
	"bytes"
	"fmt"

	opuscodec "github.com/jj11hh/opus"
	"github.com/pion/rtp"
	"github.com/pion/webrtc/v4/pkg/media/oggwriter"
)

// Opus payload parameters. 20 ms frames; 1275 bytes is the maximum
// Opus packet size for a single frame.
const (
	opusFrameDuration = 50 // frames per second
	opusMaxPacket     = 1275
	opusPayloadType   = 111
)

// oggOpus encodes captured PCM into an Opus stream wrapped in an Ogg
// container.
type oggOpus struct{}

// NewOggOpus returns the stock Ogg/Opus encoder.
func NewOggOpus() Encoder {
	return oggOpus{}
}

func (oggOpus) MIME() string    { return "audio/ogg" }
func (oggOpus) Ext() string     { return "ogg" }
func (oggOpus) Supported() bool { return true }

func (oggOpus) Encode(pcm []float32, sampleRate int) ([]byte, error) {
	enc, err := opuscodec.NewEncoder(sampleRate, 1, opuscodec.AppAudio)
	if err != nil {
		return nil, fmt.Errorf("create opus encoder: %w", err)
	}

	var buf bytes.Buffer
	w, err := oggwriter.NewWith(&buf, uint32(sampleRate), 1)
	if err != nil {
		return nil, fmt.Errorf("create ogg writer: %w", err)
	}

	frame := sampleRate / opusFrameDuration
	packet := make([]byte, opusMaxPacket)
	var (
		seq uint16
		ts  uint32
	)
	for off := 0; off < len(pcm); off += frame {
		chunk := pcm[off:min(off+frame, len(pcm))]
		if len(chunk) < frame {
			// Zero-pad the tail to a full frame; Opus only accepts
			// fixed frame sizes.
			padded := make([]float32, frame)
			copy(padded, chunk)
			chunk = padded
		}

		n, err := enc.EncodeFloat32(chunk, packet)
		if err != nil {
			return nil, fmt.Errorf("opus encode: %w", err)
		}

		err = w.WriteRTP(&rtp.Packet{
			Header: rtp.Header{
				Version:        2,
				PayloadType:    opusPayloadType,
				SequenceNumber: seq,
				Timestamp:      ts,
			},
			Payload: append([]byte(nil), packet[:n]...),
		})
		if err != nil {
			return nil, fmt.Errorf("write ogg page: %w", err)
		}
		seq++
		ts += uint32(frame)
	}

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close ogg writer: %w", err)
	}
	return buf.Bytes(), nil
}
