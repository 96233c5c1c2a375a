package warpbench

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// SessionResult is one logged benchmark outcome, written to the session
// file as it is produced so a crashed run still leaves its partial results
// on disk.
type SessionResult struct {
	Result
	Status    string    `json:"status"` // "pass" or "fail"
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// SessionLog appends benchmark results to a timestamped JSON file.
type SessionLog struct {
	mu          sync.Mutex
	results     []SessionResult
	logDir      string
	sessionFile string
}

var globalLog = &SessionLog{
	logDir: "benchmark_logs",
}

// InitSessionLog starts a new logging session. Until it is called, results
// are discarded.
func InitSessionLog(sessionName string) error {
	globalLog.mu.Lock()
	defer globalLog.mu.Unlock()

	if err := os.MkdirAll(globalLog.logDir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	timestamp := time.Now().Format("20060102_150405")
	globalLog.sessionFile = filepath.Join(globalLog.logDir,
		fmt.Sprintf("%s_%s.json", sessionName, timestamp))
	globalLog.results = nil

	return globalLog.flush()
}

// FlushSessionLog writes any buffered results to disk. Registered as an
// exit handler by the driver so fatal aborts still persist the session.
func FlushSessionLog() {
	globalLog.mu.Lock()
	defer globalLog.mu.Unlock()
	globalLog.flush()
}

// SessionFile returns the path of the current session file, empty when
// logging is inactive.
func SessionFile() string {
	globalLog.mu.Lock()
	defer globalLog.mu.Unlock()
	return globalLog.sessionFile
}

// logResult records one benchmark outcome in the active session.
func logResult(res Result, err error) {
	globalLog.mu.Lock()
	defer globalLog.mu.Unlock()

	if globalLog.sessionFile == "" {
		return
	}

	sr := SessionResult{
		Result:    res,
		Status:    "pass",
		Timestamp: time.Now(),
	}
	if err != nil {
		sr.Status = "fail"
		sr.Error = err.Error()
	}
	globalLog.results = append(globalLog.results, sr)
	globalLog.flush()
}

func (sl *SessionLog) flush() error {
	if sl.sessionFile == "" {
		return nil
	}

	data, err := json.MarshalIndent(sl.results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	return os.WriteFile(sl.sessionFile, data, 0644)
}
