package recording

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// streamTable tracks in-flight stream state per session. Transcript segments
// accumulate in memory; audio bytes are appended to a file under audioDir as
// they arrive so a dropped connection loses nothing already streamed.
type streamTable struct {
	mu       sync.Mutex
	audioDir string
	streams  map[string]*stream
}

type stream struct {
	segments  []string
	file      *os.File
	audioPath string
	bytes     int64
	recording bool
}

func newStreamTable(audioDir string) *streamTable {
	return &streamTable{
		audioDir: audioDir,
		streams:  make(map[string]*stream),
	}
}

func (t *streamTable) get(sessionID string) *stream {
	st, ok := t.streams[sessionID]
	if !ok {
		st = &stream{}
		t.streams[sessionID] = st
	}
	return st
}

func (t *streamTable) isRecording(sessionID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	st, ok := t.streams[sessionID]
	return ok && st.recording
}

func (t *streamTable) markRecording(sessionID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if st, ok := t.streams[sessionID]; ok {
		st.recording = true
		return
	}
	t.streams[sessionID] = &stream{recording: true}
}

func (t *streamTable) appendSegment(sessionID, text string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	st := t.get(sessionID)
	st.segments = append(st.segments, text)
}

func (t *streamTable) appendAudio(eventID, sessionID string, chunk []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	st := t.get(sessionID)
	if st.file == nil {
		dir := filepath.Join(t.audioDir, eventID)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create audio dir: %w", err)
		}
		path := filepath.Join(dir, sessionID+".webm")
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open audio file: %w", err)
		}
		st.file = f
		st.audioPath = path
	}

	n, err := st.file.Write(chunk)
	st.bytes += int64(n)
	if err != nil {
		return fmt.Errorf("write audio chunk: %w", err)
	}
	return nil
}

func (t *streamTable) closeStream(sessionID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if st, ok := t.streams[sessionID]; ok && st.file != nil {
		st.file.Close()
		st.file = nil
	}
}

// finalize closes and removes the stream, returning the accumulated
// transcript text, segment count, audio byte count, and audio path.
func (t *streamTable) finalize(sessionID string) (string, int, int64, string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	st, ok := t.streams[sessionID]
	if !ok {
		return "", 0, 0, ""
	}
	if st.file != nil {
		st.file.Close()
	}
	delete(t.streams, sessionID)

	return strings.Join(st.segments, " "), len(st.segments), st.bytes, st.audioPath
}
