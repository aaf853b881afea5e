package shaders

import (
	"github.com/fsnotify/fsnotify"

	"github.com/datoviz/datoviz-sub007/core"
)

// Watcher reloads a shader whenever its TOML manifest file is written or
// created on disk, calling Store.LoadManifest again for that id. The .spv
// files a manifest names are not watched.
type Watcher struct {
	store   *Store
	watcher *fsnotify.Watcher
	byPath  map[string]core.ID
	paths   map[core.ID]string
}

// NewWatcher starts an fsnotify watcher bound to store. Call Close when done.
func NewWatcher(store *Store) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, core.NewError(core.ErrorKindUnsupportedFeature, err)
	}
	w := &Watcher{store: store, watcher: fw, byPath: map[string]core.ID{}, paths: map[core.ID]string{}}
	go w.run()
	return w, nil
}

// Watch registers id's manifest path for reload-on-change.
func (w *Watcher) Watch(id core.ID, manifestPath string) error {
	if err := w.watcher.Add(manifestPath); err != nil {
		return core.NewError(core.ErrorKindUnsupportedFeature, err)
	}
	w.byPath[manifestPath] = id
	w.paths[id] = manifestPath
	return nil
}

// Unwatch stops tracking id, e.g. right before Store.Delete.
func (w *Watcher) Unwatch(id core.ID) {
	path, ok := w.paths[id]
	if !ok {
		return
	}
	w.watcher.Remove(path)
	delete(w.byPath, path)
	delete(w.paths, id)
}

func (w *Watcher) run() {
	for {
		select {
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			id, ok := w.byPath[ev.Name]
			if !ok {
				continue
			}
			if err := w.store.LoadManifest(id, ev.Name); err != nil {
				core.LogWarn("shader reload %s: %v", ev.Name, err)
				continue
			}
			core.LogInfo("shader %d reloaded from %s", id, ev.Name)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			core.LogWarn("shader watcher: %v", err)
		}
	}
}

// Close stops the underlying fsnotify watcher.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
