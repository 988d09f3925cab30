package recording

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.vokalia.id/voicecheck/internal/types"
	"go.vokalia.id/voicecheck/repo"
)

// audioMIMEs maps the audio file extensions the system accepts to
// their media types. The stdlib mime table is host-dependent and has
// no entry for .ogg on a bare system, so the mapping is explicit.
var audioMIMEs = map[string]string{
	".ogg":  "audio/ogg",
	".oga":  "audio/ogg",
	".opus": "audio/ogg",
	".webm": "audio/webm",
	".mp4":  "audio/mp4",
	".m4a":  "audio/mp4",
	".wav":  "audio/wav",
	".mp3":  "audio/mpeg",
}

// uploadMIME resolves a file's media type from its extension,
// defaulting to the stock encoder's type for anything unrecognized.
func uploadMIME(path string) string {
	if mt, ok := audioMIMEs[strings.ToLower(filepath.Ext(path))]; ok {
		return mt
	}
	return "audio/ogg"
}

// Upload persists an existing audio file for a member, bypassing the
// capture state machine. The file is wrapped as a self-contained data
// URL and attached to the member's latest task when one exists, the
// same path a captured take goes through.
func Upload(recs *repo.Recordings, tasks *repo.Tasks, username, path string) (types.Recording, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.Recording{}, fmt.Errorf("read audio file: %w", err)
	}

	mt := uploadMIME(path)

	taskID := ""
	if tasks != nil {
		if t, ok := tasks.LatestFor(username); ok {
			taskID = t.ID
		}
	}

	return recs.Add(types.Recording{
		Username: username,
		FileName: filepath.Base(path),
		MIME:     mt,
		DataURL:  "data:" + mt + ";base64," + base64.StdEncoding.EncodeToString(data),
		TaskID:   taskID,
	})
}
