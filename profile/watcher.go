package profile

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// Watch reloads the profile at path whenever it changes on disk and hands
// the result to onReload. Invalid intermediate saves are logged and skipped.
// The returned stop function closes the watcher.
func Watch(path string, onReload func(Profile)) (func(), error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	// Watch the directory: editors replace the file on save, which drops a
	// watch registered on the file itself.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, err
	}

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != filepath.Clean(path) {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				p, err := Load(path)
				if err != nil {
					logrus.WithError(err).Warn("ignoring invalid profile reload")
					continue
				}
				logrus.WithField("profile", p.Name).Info("profile reloaded")
				onReload(p)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logrus.WithError(err).Warn("profile watcher error")
			}
		}
	}()
	return func() { watcher.Close() }, nil
}
