package recording

// Encoder turns buffered PCM samples into a single encoded audio
// object. Supported reports whether the codec can actually be produced
// in this build; negotiation probes it before committing.
type Encoder interface {
	MIME() string
	Ext() string
	Supported() bool
	Encode(pcm []float32, sampleRate int) ([]byte, error)
}

// preferredMIMEs is the codec preference order used when negotiating
// an encoder for a stopped capture.
var preferredMIMEs = []string{"audio/webm", "audio/ogg", "audio/mp4"}

// negotiate picks the first encoder, in preference order, that reports
// itself supported. When capability detection yields nothing, it falls
// back to the encoder of the first preference, then to the first
// registered encoder. Returns nil only when no encoder is registered
// at all.
func negotiate(encoders []Encoder) Encoder {
	byMIME := func(mime string) Encoder {
		for _, e := range encoders {
			if e.MIME() == mime {
				return e
			}
		}
		return nil
	}

	for _, mime := range preferredMIMEs {
		if e := byMIME(mime); e != nil && e.Supported() {
			return e
		}
	}
	for _, e := range encoders {
		if e.Supported() {
			return e
		}
	}
	if e := byMIME(preferredMIMEs[0]); e != nil {
		return e
	}
	if len(encoders) > 0 {
		return encoders[0]
	}
	return nil
}
