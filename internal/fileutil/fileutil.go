// Package fileutil provides local artifact checks and cleanup helpers used
// by the extraction adapter and the worker loop.
package fileutil

import (
	"errors"
	"os"
	"path/filepath"
)

// NonEmpty reports whether path names a regular file with a non-zero size.
// A size-zero or missing file counts as absent even when the producing tool
// reported success.
func NonEmpty(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular() && info.Size() > 0
}

// RemoveIfExists deletes path, treating a missing file as success.
func RemoveIfExists(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// RemovePartials deletes the target file plus any partial-transfer artifacts
// sharing its base name (".part", ".ytdl", format-id suffixes). Used between
// quality tier attempts so no stale bytes leak into the next invocation.
func RemovePartials(path string) error {
	var firstErr error
	if err := RemoveIfExists(path); err != nil {
		firstErr = err
	}
	matches, err := filepath.Glob(path + ".*")
	if err != nil {
		return err
	}
	for _, match := range matches {
		if err := RemoveIfExists(match); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// RemoveAllQuiet deletes the provided paths best-effort and returns every
// path that could not be removed. Callers log, not escalate.
func RemoveAllQuiet(paths ...string) []string {
	var failed []string
	for _, path := range paths {
		if path == "" {
			continue
		}
		if err := RemoveIfExists(path); err != nil {
			failed = append(failed, path)
		}
	}
	return failed
}
