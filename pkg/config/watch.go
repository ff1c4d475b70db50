package config

import (
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/riverstonedata/ch-jdbc-bridge/pkg/logger"
)

// WatchDirectory watches dir for filesystem events and additionally fires
// onChange once per scanPeriod as a fallback (matching the original
// implementation's periodic ConfigRetriever scan), for filesystems where
// fsnotify events are unreliable (e.g. some network mounts). It returns a
// stop function. Errors starting the watcher are logged and only the
// periodic scan fallback remains active.
func WatchDirectory(dir string, scanPeriod time.Duration, log *logger.Logger, onChange func()) (stop func(), err error) {
	done := make(chan struct{})

	watcher, werr := fsnotify.NewWatcher()
	if werr == nil {
		if err := watcher.Add(dir); err != nil {
			log.Warnf("config: could not watch %s: %v (falling back to periodic scan only)", dir, err)
		}
	} else {
		log.Warnf("config: fsnotify unavailable: %v (falling back to periodic scan only)", werr)
	}

	ticker := time.NewTicker(scanPeriod)

	go func() {
		defer ticker.Stop()
		var events <-chan fsnotify.Event
		if watcher != nil {
			events = watcher.Events
		}
		for {
			select {
			case <-done:
				if watcher != nil {
					watcher.Close()
				}
				return
			case <-ticker.C:
				onChange()
			case ev, ok := <-events:
				if !ok {
					events = nil
					continue
				}
				log.Debugf("config: change detected in %s: %s", dir, ev.Name)
				onChange()
			}
		}
	}()

	return func() { close(done) }, nil
}
