// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package materialize writes generated projects to disk as runnable Vite
// projects, one directory per user and website. Entry files the model did
// not supply are filled from embedded defaults.
package materialize

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"sitecraft/internal/project"
)

// ErrUnsafePath is returned when a path would resolve outside the
// materializer's root or the project directory.
var ErrUnsafePath = errors.New("materialize: unsafe path")

// DefaultWorkers bounds concurrent file writes for one project.
const DefaultWorkers = 8

// Materializer writes projects under a root directory. Writes to the same
// project directory are serialized; different projects proceed in parallel.
type Materializer struct {
	root    string
	workers int
	locks   *dirLocks
}

// New creates a materializer rooted at root.
func New(root string) *Materializer {
	return &Materializer{root: filepath.Clean(root), workers: DefaultWorkers, locks: newDirLocks()}
}

// Root returns the directory projects are written under.
func (m *Materializer) Root() string { return m.root }

// Dir returns the project directory for a user's website.
func (m *Materializer) Dir(userID, websiteID string) (string, error) {
	for _, part := range []string{userID, websiteID} {
		if !pathElement(part) {
			return "", fmt.Errorf("%w: %q", ErrUnsafePath, part)
		}
	}
	return filepath.Join(m.root, userID, websiteID), nil
}

// Write materializes p and returns its directory. Every directory is
// created before any file is written into it.
func (m *Materializer) Write(ctx context.Context, userID, websiteID string, p project.Project, websiteName string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	dir, err := m.Dir(userID, websiteID)
	if err != nil {
		return "", err
	}
	files, err := plan(p, websiteName)
	if err != nil {
		return "", err
	}

	unlock := m.locks.lock(dir)
	defer unlock()

	if err := makeDirs(dir, files); err != nil {
		return "", err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(m.workers)
	for _, f := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			target := filepath.Join(dir, filepath.FromSlash(f.Path))
			if err := os.WriteFile(target, []byte(f.Content), 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", f.Path, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", fmt.Errorf("materializing project %s: %w", websiteID, err)
	}

	slog.Info("project materialized", "dir", dir, "files", len(files))
	return dir, nil
}

// Remove deletes a materialized project directory. An empty dir is a no-op;
// a dir outside the root is rejected.
func (m *Materializer) Remove(dir string) error {
	if dir == "" {
		return nil
	}
	rel, err := filepath.Rel(m.root, filepath.Clean(dir))
	if err != nil || rel == "." || !filepath.IsLocal(rel) {
		return fmt.Errorf("%w: %s", ErrUnsafePath, dir)
	}

	unlock := m.locks.lock(filepath.Clean(dir))
	defer unlock()

	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("removing %s: %w", dir, err)
	}
	return nil
}

func makeDirs(dir string, files []file) error {
	seen := map[string]bool{}
	var dirs []string
	for _, f := range files {
		d := path.Dir(f.Path)
		if !seen[d] {
			seen[d] = true
			dirs = append(dirs, d)
		}
	}
	sort.Strings(dirs)
	for _, d := range dirs {
		if err := os.MkdirAll(filepath.Join(dir, filepath.FromSlash(d)), 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", d, err)
		}
	}
	return nil
}

func pathElement(s string) bool {
	return s != "" && s != "." && s != ".." && !strings.ContainsAny(s, `/\`) && filepath.IsLocal(s)
}

// dirLocks hands out one mutex per directory, dropping it once no writer
// holds or waits for it.
type dirLocks struct {
	mu    sync.Mutex
	locks map[string]*dirLock
}

type dirLock struct {
	sync.Mutex
	refs int
}

func newDirLocks() *dirLocks {
	return &dirLocks{locks: make(map[string]*dirLock)}
}

func (l *dirLocks) lock(dir string) func() {
	l.mu.Lock()
	dl, ok := l.locks[dir]
	if !ok {
		dl = &dirLock{}
		l.locks[dir] = dl
	}
	dl.refs++
	l.mu.Unlock()

	dl.Lock()
	return func() {
		dl.Unlock()
		l.mu.Lock()
		dl.refs--
		if dl.refs == 0 {
			delete(l.locks, dir)
		}
		l.mu.Unlock()
	}
}
