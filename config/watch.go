/*
Copyright (C) 2026  SpinelDB Contributors

	This program is free software: you can redistribute it and/or modify
	it under the terms of the GNU General Public License as published by
	the Free Software Foundation, either version 3 of the License, or
	(at your option) any later version.

	This program is distributed in the hope that it will be useful,
	but WITHOUT ANY WARRANTY; without even the implied warranty of
	MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
	GNU General Public License for more details.

	You should have received a copy of the GNU General Public License
	along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/
package config

import (
	"github.com/fsnotify/fsnotify"

	"github.com/spineldb/spineldb/logx"
)

// WatchACLFile watches path for writes/renames (editors commonly replace a
// file via rename-on-save) and invokes reload whenever the file changes, so
// `ACL LOAD` doesn't need to be issued manually after editing the users
// file by hand. Returns a stop function; reload errors are logged, not
// propagated, since a bad edit shouldn't take down the watcher goroutine.
func WatchACLFile(path string, reload func() error) (stop func(), err error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(path); err != nil {
		w.Close()
		return nil, err
	}

	done := make(chan struct{})
	go func() {
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
					if err := reload(); err != nil {
						logx.Warn("acl file reload failed", "path", path, "err", err)
					} else {
						logx.Info("acl file reloaded", "path", path)
					}
					if ev.Op&fsnotify.Rename != 0 {
						// some editors replace the inode; re-add so the
						// watch survives rename-on-save.
						_ = w.Add(path)
					}
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				logx.Warn("acl file watcher error", "err", err)
			case <-done:
				return
			}
		}
	}()

	return func() {
		close(done)
		w.Close()
	}, nil
}
