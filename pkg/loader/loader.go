package loader

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/vanderheijden86/depthlog/pkg/divelog"
)

// LogbookDirEnvVar is the name of the environment variable for a custom logbook directory
const LogbookDirEnvVar = "DL_LOGBOOK_DIR"

// PreferredJSONLNames defines the priority order for looking up dive log files.
var PreferredJSONLNames = []string{"dives.jsonl", "logbook.jsonl"}

// GetLogbookDir returns the logbook directory path, respecting DL_LOGBOOK_DIR.
// If DL_LOGBOOK_DIR is set, it is used directly.
// Otherwise, falls back to .depthlog in the given basePath (or cwd if empty).
func GetLogbookDir(basePath string) (string, error) {
	if envDir := os.Getenv(LogbookDirEnvVar); envDir != "" {
		return envDir, nil
	}

	if basePath == "" {
		var err error
		basePath, err = os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get current working directory: %w", err)
		}
	}

	return filepath.Join(basePath, ".depthlog"), nil
}

// FindJSONLPath locates the dive log JSONL file in the given directory.
// Prefers dives.jsonl over logbook.jsonl. Skips backup files.
func FindJSONLPath(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("failed to read logbook directory: %w", err)
	}

	var candidates []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()

		if !strings.HasSuffix(name, ".jsonl") {
			continue
		}
		if strings.Contains(name, ".backup") || strings.Contains(name, ".orig") {
			continue
		}

		candidates = append(candidates, name)
	}

	if len(candidates) == 0 {
		return "", fmt.Errorf("no dive log JSONL file found in %s", dir)
	}

	for _, preferred := range PreferredJSONLNames {
		for _, name := range candidates {
			if name == preferred {
				path := filepath.Join(dir, name)
				// Check if file has content (skip empty files)
				if info, err := os.Stat(path); err == nil && info.Size() > 0 {
					return path, nil
				}
			}
		}
	}

	// Fall back to first non-empty candidate
	for _, name := range candidates {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && info.Size() > 0 {
			return path, nil
		}
	}

	// Last resort: return first candidate even if empty
	return filepath.Join(dir, candidates[0]), nil
}

// DefaultMaxBufferSize is the default buffer size for the scanner (10MB).
const DefaultMaxBufferSize = 1024 * 1024 * 10

// ParseOptions configures the behavior of ParseDives.
type ParseOptions struct {
	// WarningHandler is called with warning messages (e.g., malformed JSON).
	// If nil, warnings are printed to os.Stderr.
	WarningHandler func(string)

	// BufferSize sets the maximum line size (in bytes) to read at once.
	// Lines longer than this are skipped with a warning.
	// If 0, uses DefaultMaxBufferSize (10MB).
	BufferSize int

	// DiveFilter optionally filters parsed dives. Return true to include.
	// When nil, all valid dives are included.
	DiveFilter func(*divelog.Dive) bool
}

// LoadDives reads dives from the logbook directory.
// Respects DL_LOGBOOK_DIR, otherwise uses .depthlog in basePath.
func LoadDives(basePath string) ([]*divelog.Dive, error) {
	dir, err := GetLogbookDir(basePath)
	if err != nil {
		return nil, err
	}

	path, err := FindJSONLPath(dir)
	if err != nil {
		return nil, err
	}

	return LoadDivesFromFile(path)
}

// LoadDivesFromFile reads dives directly from a specific JSONL file path.
func LoadDivesFromFile(path string) ([]*divelog.Dive, error) {
	return LoadDivesFromFileWithOptions(path, ParseOptions{})
}

// LoadDivesFromFileWithOptions reads dives from a file with custom options.
func LoadDivesFromFileWithOptions(path string, opts ParseOptions) ([]*divelog.Dive, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("no dive log found at %s", path)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dive log: %w", err)
	}
	defer file.Close()

	return ParseDivesWithOptions(file, opts)
}

// ParseDives parses JSONL content from a reader into dive records.
// Handles UTF-8 BOM stripping, large lines, and validation.
func ParseDives(r io.Reader) ([]*divelog.Dive, error) {
	return ParseDivesWithOptions(r, ParseOptions{})
}

// ParseDivesWithOptions parses JSONL content with custom options.
func ParseDivesWithOptions(r io.Reader, opts ParseOptions) ([]*divelog.Dive, error) {
	var dives []*divelog.Dive
	if f, ok := r.(*os.File); ok {
		if info, err := f.Stat(); err == nil {
			// Heuristic: average dive line ~1KB. Prefer conservative
			// underestimation to avoid large over-allocations for big files.
			const avgDiveBytes = 1024
			const minCap = 64
			const maxCap = 200_000

			est := int(info.Size() / avgDiveBytes)
			if est < minCap && info.Size() > 0 {
				est = minCap
			}
			if est > maxCap {
				est = maxCap
			}
			if est > 0 {
				dives = make([]*divelog.Dive, 0, est)
			}
		}
	}

	maxCapacity := opts.BufferSize
	if maxCapacity <= 0 {
		maxCapacity = DefaultMaxBufferSize
	}

	reader := bufio.NewReaderSize(r, maxCapacity)

	warn := opts.WarningHandler
	if warn == nil {
		warn = func(msg string) {
			fmt.Fprintf(os.Stderr, "Warning: %s\n", msg)
		}
	}

	lineNum := 0
	for {
		lineNum++
		// ReadLine returns a single line, not including the end-of-line bytes.
		// If the line was too long for the buffer then isPrefix is set and the
		// beginning of the line is returned.
		line, isPrefix, err := reader.ReadLine()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("error reading dive log at line %d: %w", lineNum, err)
		}

		if isPrefix {
			// Line too long. Discard the rest of the line.
			warn(fmt.Sprintf("skipping line %d: line too long (exceeds %d bytes)", lineNum, maxCapacity))
			for isPrefix {
				_, isPrefix, err = reader.ReadLine()
				if err != nil && err != io.EOF {
					return nil, fmt.Errorf("error skipping long line at line %d: %w", lineNum, err)
				}
				if err == io.EOF {
					break
				}
			}
			continue
		}

		if len(line) == 0 {
			continue
		}

		// Strip UTF-8 BOM if present on the first line
		if lineNum == 1 {
			line = stripBOM(line)
		}

		var dive divelog.Dive
		if err := json.Unmarshal(line, &dive); err != nil {
			// Skip malformed lines but warn
			warn(fmt.Sprintf("skipping malformed JSON on line %d: %v", lineNum, err))
			continue
		}

		if err := dive.Validate(); err != nil {
			warn(fmt.Sprintf("skipping invalid dive on line %d: %v", lineNum, err))
			continue
		}

		if opts.DiveFilter != nil && !opts.DiveFilter(&dive) {
			continue
		}

		dives = append(dives, &dive)
	}

	return dives, nil
}

// stripBOM removes the UTF-8 Byte Order Mark if present
func stripBOM(b []byte) []byte {
	if bytes.HasPrefix(b, []byte{0xEF, 0xBB, 0xBF}) {
		return b[3:]
	}
	return b
}
