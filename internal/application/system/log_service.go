package system

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/dms/backend/internal/domain/shared"
)

// knownLogs maps log ids to file names under the log directory. Only these
// files are ever served, arbitrary paths are not reachable through the API.
var knownLogs = map[string]string{
	"server":   "server.log",
	"consumer": "consumer.log",
}

// LogService exposes the server log files to superusers
type LogService struct {
	dir string
}

// NewLogService creates a log service reading from dir
func NewLogService(dir string) *LogService {
	return &LogService{dir: dir}
}

// List returns the ids of log files that exist on disk
func (s *LogService) List(ctx context.Context, viewer shared.Viewer) ([]string, error) {
	if !viewer.Superuser {
		return nil, shared.ErrForbidden
	}
	ids := []string{}
	for _, id := range []string{"server", "consumer"} {
		if _, err := os.Stat(filepath.Join(s.dir, knownLogs[id])); err == nil {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// Tail returns the lines of the given log file
func (s *LogService) Tail(ctx context.Context, viewer shared.Viewer, id string) ([]string, error) {
	if !viewer.Superuser {
		return nil, shared.ErrForbidden
	}
	name, ok := knownLogs[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		return nil, shared.ErrNotFound
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) == 1 && lines[0] == "" {
		return []string{}, nil
	}
	return lines, nil
}
