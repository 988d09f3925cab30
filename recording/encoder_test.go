package recording

import "testing"

func enc(mime, ext string, supported bool) *fakeEncoder {
	return &fakeEncoder{mime: mime, ext: ext, supported: supported}
}

func TestNegotiatePreferenceOrder(t *testing.T) {
	webm := enc("audio/webm", "webm", true)
	ogg := enc("audio/ogg", "ogg", true)
	mp4 := enc("audio/mp4", "mp4", true)

	// Registration order must not matter, only the preference list.
	if got := negotiate([]Encoder{mp4, ogg, webm}); got != Encoder(webm) {
		t.Errorf("all supported: picked %s, want audio/webm", got.MIME())
	}

	webm.supported = false
	if got := negotiate([]Encoder{mp4, ogg, webm}); got != Encoder(ogg) {
		t.Errorf("webm unsupported: picked %s, want audio/ogg", got.MIME())
	}

	ogg.supported = false
	if got := negotiate([]Encoder{mp4, ogg, webm}); got != Encoder(mp4) {
		t.Errorf("only mp4 supported: picked %s", got.MIME())
	}
}

func TestNegotiateDefaultsToFirstPreferenceWithoutDetection(t *testing.T) {
	// No encoder reports supported: capability detection is effectively
	// unavailable, so the first preference wins.
	webm := enc("audio/webm", "webm", false)
	ogg := enc("audio/ogg", "ogg", false)
	if got := negotiate([]Encoder{ogg, webm}); got != Encoder(webm) {
		t.Errorf("picked %s, want the first-preference encoder", got.MIME())
	}

	// First preference absent entirely: fall back to whatever exists.
	if got := negotiate([]Encoder{ogg}); got != Encoder(ogg) {
		t.Errorf("picked %v, want the only registered encoder", got)
	}

	if got := negotiate(nil); got != nil {
		t.Errorf("no encoders: want nil, got %v", got)
	}
}

func TestNegotiateOffListSupported(t *testing.T) {
	// A supported encoder outside the preference list still beats an
	// unsupported preferred one.
	wav := enc("audio/wav", "wav", true)
	webm := enc("audio/webm", "webm", false)
	if got := negotiate([]Encoder{webm, wav}); got != Encoder(wav) {
		t.Errorf("picked %s, want audio/wav", got.MIME())
	}
}

func TestStockOggOpusMetadata(t *testing.T) {
	e := NewOggOpus()
	if e.MIME() != "audio/ogg" || e.Ext() != "ogg" {
		t.Errorf("mime/ext = %s/%s", e.MIME(), e.Ext())
	}
	if !e.Supported() {
		t.Error("stock encoder must report supported")
	}
}
