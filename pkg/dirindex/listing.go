package dirindex

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// ScriptName is never listed, next to the output file and the running
// executable.
const ScriptName = "generate_index.py"

var ErrNotDirectory = errors.New("is not a valid directory")

// Entry is one listed item.
type Entry struct {
	Name    string
	IsDir   bool
	Size    int64
	ModTime time.Time
	// StatFailed marks entries whose metadata could not be read.
	StatFailed bool
}

// Label is the displayed name; directories carry a trailing slash.
func (e Entry) Label() string {
	if e.IsDir {
		return e.Name + "/"
	}
	return e.Name
}

// SizeText is "-" for directories and unreadable entries.
func (e Entry) SizeText() string {
	if e.IsDir || e.StatFailed {
		return "-"
	}
	return FormatSize(e.Size)
}

// TimeText is "-" for unreadable entries.
func (e Entry) TimeText() string {
	if e.StatFailed {
		return "-"
	}
	return FormatModTime(e.ModTime)
}

// ListOptions tunes which entries are listed.
type ListOptions struct {
	// Exclude holds extra names that are never listed.
	Exclude []string
	// Filter, when set, keeps only entries it accepts.
	Filter *Filter
	Now    time.Time
}

// List reads folder and returns its visible entries: directories first,
// then files, each sorted case-insensitively.
func List(folder, outputName string, opts ListOptions) ([]Entry, error) {
	st, err := os.Stat(folder)
	if err != nil || !st.IsDir() {
		return nil, fmt.Errorf("'%s' %w", folder, ErrNotDirectory)
	}

	dirents, err := os.ReadDir(folder)
	if err != nil {
		if errors.Is(err, os.ErrPermission) {
			return nil, fmt.Errorf("permission denied accessing '%s'", folder)
		}
		return nil, err
	}

	skip := map[string]bool{outputName: true, ScriptName: true}
	for _, name := range opts.Exclude {
		skip[name] = true
	}

	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	var entries []Entry
	for _, d := range dirents {
		name := d.Name()
		if strings.HasPrefix(name, ".") || skip[name] {
			continue
		}

		e := Entry{Name: name}
		// follow symlinks, like a plain stat of the path
		info, err := os.Stat(filepath.Join(folder, name))
		if err != nil {
			e.IsDir = d.IsDir()
			e.StatFailed = true
		} else {
			e.IsDir = info.IsDir()
			e.ModTime = info.ModTime()
			if !e.IsDir {
				e.Size = info.Size()
			}
		}

		if !e.IsDir && strings.EqualFold(filepath.Ext(name), ".bat") {
			continue
		}
		if opts.Filter != nil {
			ok, err := opts.Filter.Match(e, now)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
		}
		entries = append(entries, e)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.IsDir != b.IsDir {
			return a.IsDir
		}
		return strings.ToLower(a.Name) < strings.ToLower(b.Name)
	})
	return entries, nil
}
