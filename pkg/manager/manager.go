// Package manager runs a report over a list of filesystem paths, one at a
// time, keeping a failure on one path from affecting the others.
package manager

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"btrfsusage/pkg/log"
	"btrfsusage/pkg/store"
)

// Opener opens the filesystem mounted at path.
type Opener func(path string) (store.Store, error)

// Builder writes the report of s to w.
type Builder func(s store.Store, w io.Writer) error

// FailedPathsError is returned when at least one path could not be reported.
type FailedPathsError struct {
	Failed int
	Total  int
}

func (e FailedPathsError) Error() string {
	return fmt.Sprintf("%d of %d paths failed", e.Failed, e.Total)
}

// Manager produces reports for filesystem paths.
type Manager struct {
	open Opener
	out  io.Writer
}

// New creates a Manager opening filesystems with open and writing reports to out.
func New(open Opener, out io.Writer) *Manager {
	return &Manager{
		open: open,
		out:  out,
	}
}

// Run builds the report of every path in turn. Reports are separated by a
// blank line. A path whose report fails prints nothing; the remaining paths
// are still processed unless memory ran out.
func (m *Manager) Run(paths []string, build Builder) error {
	failed := 0
	printed := false

	for _, path := range paths {
		buf, err := m.report(path, build)
		if err != nil {
			log.Error().Err(err).Str("path", path).Msg("Failed to build report")
			failed++

			var exhausted store.ResourceExhaustionError
			if errors.As(err, &exhausted) {
				return err
			}
			continue
		}

		if printed {
			if _, err := io.WriteString(m.out, "\n"); err != nil {
				return err
			}
		}
		if _, err := buf.WriteTo(m.out); err != nil {
			log.Error().Err(err).Str("path", path).Msg("Failed to write report")
			return err
		}
		printed = true
	}

	if failed > 0 {
		return FailedPathsError{Failed: failed, Total: len(paths)}
	}
	return nil
}

// report builds the report of path into a buffer of its own. The store is
// closed before returning.
func (m *Manager) report(path string, build Builder) (*bytes.Buffer, error) {
	s, err := m.open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := s.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Str("path", path).Msg("Failed to close filesystem")
		}
	}()

	log.Debug().Str("path", path).Msg("Building report")

	buf := new(bytes.Buffer)
	if err := build(s, buf); err != nil {
		return nil, err
	}
	return buf, nil
}
