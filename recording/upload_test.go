package recording

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestUploadMIMEByExtension(t *testing.T) {
	cases := []struct {
		path, mime string
	}{
		{"suara.ogg", "audio/ogg"},
		{"Suara.OGG", "audio/ogg"},
		{"take.webm", "audio/webm"},
		{"take.m4a", "audio/mp4"},
		{"take.wav", "audio/wav"},
		{"take.mp3", "audio/mpeg"},
		{"take", "audio/ogg"},
		{"take.xyz", "audio/ogg"},
	}
	for _, c := range cases {
		if got := uploadMIME(c.path); got != c.mime {
			t.Errorf("uploadMIME(%q) = %q, want %q", c.path, got, c.mime)
		}
	}
}

func TestUploadProducesWellFormedDataURL(t *testing.T) {
	r := newTestRepos(t)

	path := filepath.Join(t.TempDir(), "suara.unknown-ext")
	if err := os.WriteFile(path, []byte("fake-audio"), 0644); err != nil {
		t.Fatal(err)
	}

	rec, err := Upload(r.Recordings, r.Tasks, "npm001", path)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	// No wildcard media types: the data URL must carry a concrete
	// audio type even for an unrecognized extension.
	if strings.Contains(rec.DataURL, "*") {
		t.Errorf("data url carries a wildcard type: %q", rec.DataURL)
	}
	if !strings.HasPrefix(rec.DataURL, "data:audio/ogg;base64,") {
		t.Errorf("data url = %q", rec.DataURL)
	}
	if rec.MIME != "audio/ogg" {
		t.Errorf("mime = %q", rec.MIME)
	}
}
