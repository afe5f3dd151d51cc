// Package logfinder locates the games.log written by an OpenArena or
// Quake 3 server.
package logfinder

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/adrg/xdg"
)

// EnvLogFile is the environment variable naming the log file.
const EnvLogFile = "OASTATS_LOG"

// LogFileName is the file name the engine writes with g_log at its default.
const LogFileName = "games.log"

// ErrLogNotFound is returned when no log file can be located.
var ErrLogNotFound = errors.New("games.log not found")

// DefaultLogFiles returns the candidate log locations of the common engine
// installs under the user's home directory.
func DefaultLogFiles() []string {
	home := xdg.Home
	if home == "" {
		return nil
	}
	return []string{
		filepath.Join(home, ".openarena", "baseoa", LogFileName),
		filepath.Join(home, ".q3a", "baseq3", LogFileName),
		filepath.Join(home, ".ioquake3", "baseq3", LogFileName),
	}
}

// FindLogFile returns the log file to process.
//
// Priority:
//  1. explicit (if non-empty)
//  2. OASTATS_LOG environment variable
//  3. the most recently modified of DefaultLogFiles()
//
// The returned path has symlinks resolved.
func FindLogFile(explicit string) (string, error) {
	if explicit != "" {
		if resolved := resolveLogFile(explicit); resolved != "" {
			return resolved, nil
		}
		return "", fmt.Errorf("%w: %s is not a readable file", ErrLogNotFound, explicit)
	}

	if env := os.Getenv(EnvLogFile); env != "" {
		if resolved := resolveLogFile(env); resolved != "" {
			return resolved, nil
		}
		return "", fmt.Errorf("%w: %s environment variable points to an invalid file", ErrLogNotFound, EnvLogFile)
	}

	return latest(DefaultLogFiles())
}

// logCandidate caches a stat result so sorting does not race with deletes.
type logCandidate struct {
	path    string
	modTime int64
}

func latest(paths []string) (string, error) {
	candidates := make([]logCandidate, 0, len(paths))
	for _, p := range paths {
		resolved := resolveLogFile(p)
		if resolved == "" {
			continue
		}
		info, err := os.Stat(resolved)
		if err != nil {
			continue
		}
		candidates = append(candidates, logCandidate{
			path:    resolved,
			modTime: info.ModTime().UnixNano(),
		})
	}
	if len(candidates) == 0 {
		return "", ErrLogNotFound
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].modTime > candidates[j].modTime
	})
	return candidates[0].path, nil
}

// resolveLogFile resolves symlinks and checks that the target is a regular
// file. It returns "" otherwise.
func resolveLogFile(path string) string {
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return ""
	}
	info, err := os.Stat(resolved)
	if err != nil || !info.Mode().IsRegular() {
		return ""
	}
	return resolved
}
