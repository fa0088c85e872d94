package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

const watchDebounce = 200 * time.Millisecond

// watchAndRun calls run once and again after every burst of *.php changes
// below paths, until ctx is done.
func watchAndRun(ctx context.Context, paths []string, log io.Writer, run func(context.Context) error) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	for _, p := range paths {
		if err := addWatchDirs(watcher, p, log); err != nil {
			return err
		}
	}

	if err := run(ctx); err != nil {
		fmt.Fprintf(log, "watch: %v\n", err)
	}

	debounce := time.NewTimer(time.Hour)
	debounce.Stop()
	reset := func() {
		if !debounce.Stop() {
			select {
			case <-debounce.C:
			default:
			}
		}
		debounce.Reset(watchDebounce)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := addWatchDirs(watcher, event.Name, log); err != nil {
						fmt.Fprintf(log, "watch: %v\n", err)
					}
					continue
				}
			}
			if !strings.EqualFold(filepath.Ext(event.Name), ".php") {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0 {
				reset()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(log, "watch: %v\n", err)
		case <-debounce.C:
			fmt.Fprintf(log, "watch: change detected, re-running\n")
			if err := run(ctx); err != nil {
				fmt.Fprintf(log, "watch: %v\n", err)
			}
		}
	}
}

// addWatchDirs adds root and every directory below it except vendor.
// A file root watches its directory.
func addWatchDirs(w *fsnotify.Watcher, root string, log io.Writer) error {
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("watch %s: %w", root, err)
	}
	if !info.IsDir() {
		return w.Add(filepath.Dir(root))
	}
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && (d.Name() == "vendor" || strings.HasPrefix(d.Name(), ".")) {
			return filepath.SkipDir
		}
		if err := w.Add(path); err != nil {
			fmt.Fprintf(log, "watch: cannot watch %s: %v\n", path, err)
		}
		return nil
	})
}
