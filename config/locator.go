package config

import (
	"os"
	"path/filepath"
	"sort"
)

// Locator resolves the files referenced by a project.
type Locator interface {
	SetBaseDir(dir string)
	AddDir(dir string)
	// Data returns the path of a datasource file.
	Data(fname string) string
	// Style returns the path of a style document.
	Style(fname string) string
	// MissingFiles returns the files that were not found, sorted.
	MissingFiles() []string
}

// LookupLocator searches files in the base directory first and then in
// the added directories in order. Missing files are returned unchanged
// and recorded.
type LookupLocator struct {
	baseDir string
	dirs    []string
	missing map[string]struct{}
}

func NewLocator() *LookupLocator {
	return &LookupLocator{missing: make(map[string]struct{})}
}

func (l *LookupLocator) SetBaseDir(dir string) {
	l.baseDir = dir
}

func (l *LookupLocator) AddDir(dir string) {
	l.dirs = append(l.dirs, dir)
}

func (l *LookupLocator) find(fname string) string {
	if filepath.IsAbs(fname) {
		if exists(fname) {
			return fname
		}
	} else {
		for _, d := range append([]string{l.baseDir}, l.dirs...) {
			p := filepath.Join(d, fname)
			if exists(p) {
				return p
			}
		}
	}
	l.missing[fname] = struct{}{}
	return fname
}

func exists(fname string) bool {
	info, err := os.Stat(fname)
	return err == nil && !info.IsDir()
}

func (l *LookupLocator) Data(fname string) string {
	return l.find(fname)
}

func (l *LookupLocator) Style(fname string) string {
	return l.find(fname)
}

func (l *LookupLocator) MissingFiles() []string {
	if len(l.missing) == 0 {
		return nil
	}
	files := make([]string, 0, len(l.missing))
	for f := range l.missing {
		files = append(files, f)
	}
	sort.Strings(files)
	return files
}
