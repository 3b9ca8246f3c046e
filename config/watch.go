package config

import (
	"context"
	"log"

	"github.com/fsnotify/fsnotify"
)

// Watch re-applies the YAML overlay at path onto base each time the file is
// written and passes the result to onChange. It runs until ctx is cancelled.
// A failed reload is logged and the previous configuration stays active.
func Watch(ctx context.Context, base *Config, path string, onChange func(*Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(path); err != nil {
		return err
	}

	log.Printf("👀 Watching config file %s", path)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			// Editors often save by rename, which shows up as Create
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			cfg, err := ApplyFile(base, path)
			if err != nil {
				log.Printf("⚠️  Config reload failed, keeping previous config: %v", err)
				continue
			}

			log.Printf("🔄 Reloaded config file %s", path)
			onChange(cfg)

			// The inode may have been replaced
			_ = watcher.Add(path)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("❌ Config watcher error: %v", err)
		}
	}
}
