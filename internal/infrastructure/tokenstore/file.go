package tokenstore

import (
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// File persists the token to a 0600 file so a restarted dashboard stays
// logged in. The current value is cached in memory; the file is only
// touched on Set and Clear. An unreadable or missing file reads as no
// token; expiry is discovered reactively via 401s either way, so a
// stale persisted token is harmless.
type File struct {
	path string
	log  zerolog.Logger

	mu    sync.Mutex
	token string
}

// NewFile creates a file-backed store and loads any persisted token.
func NewFile(path string, log zerolog.Logger) *File {
	f := &File{path: path, log: log}
	if data, err := os.ReadFile(path); err == nil {
		f.token = strings.TrimSpace(string(data))
	}
	return f
}

func (f *File) Token() (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token, f.token != ""
}

func (f *File) Set(token string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.token = token
	if err := os.WriteFile(f.path, []byte(token+"\n"), 0o600); err != nil {
		f.log.Warn().Err(err).Str("path", f.path).Msg("failed to persist access token")
	}
}

func (f *File) Clear() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.token = ""
	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		f.log.Warn().Err(err).Str("path", f.path).Msg("failed to remove persisted token")
	}
}
