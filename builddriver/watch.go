package builddriver

import (
	"io/fs"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/go-clib/clib/internal/dcontext"
)

// Watch rebuilds depsDir's packages whenever a file under depsDir
// changes, until ctx is canceled. This is additive CLI sugar over the
// single-shot Build contract; it reuses fsnotify to watch the tree
// rather than polling it.
func (d *Driver) Watch(ctx dcontext.Context, depsDir string, target Target) error {
	log := dcontext.GetLogger(ctx)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := addTreeWatches(watcher, depsDir); err != nil {
		return err
	}

	rebuild := func() {
		results, err := d.Build(ctx, depsDir, target)
		if err != nil {
			log.Warnf("builddriver: watch rebuild failed: %v", err)
			return
		}

		for _, r := range results {
			if r.Err != nil {
				log.Warnf("builddriver: %s failed: %v", r.Name, r.Err)
			}
		}
	}

	rebuild()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
				log.Debugf("builddriver: watch triggered by %s", event.Name)
				rebuild()
			}
		case werr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}

			log.Warnf("builddriver: watcher error: %v", werr)
		}
	}
}

// addTreeWatches registers a watch on root and every directory beneath
// it; fsnotify does not watch recursively on its own.
func addTreeWatches(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			return watcher.Add(path)
		}

		return nil
	})
}
