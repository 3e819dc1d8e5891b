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
package cache

import (
	"bytes"
	"io"
	"path"
	"sync"

	"github.com/ceph/go-ceph/rados"
)

// CephConfig names the librados connection parameters, mirroring the
// teacher's CephFactory (storage/persistence-ceph.go) field for field.
type CephConfig struct {
	ClusterName string
	UserName    string
	ConfFile    string
	Pool        string
	Prefix      string
}

// CephBodyStore stores cache bodies as plain librados objects, one whole
// object per body (WriteFull atomic overwrite), repurposing the teacher's
// CephStorage column backend for cache bodies the same way S3BodyStore
// repurposes S3Storage.
type CephBodyStore struct {
	cfg CephConfig

	mu     sync.Mutex
	conn   *rados.Conn
	ioctx  *rados.IOContext
	opened bool
}

func NewCephBodyStore(cfg CephConfig) *CephBodyStore {
	return &CephBodyStore{cfg: cfg}
}

func (s *CephBodyStore) ensureOpen() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.opened {
		return nil
	}
	conn, err := rados.NewConnWithClusterAndUser(s.cfg.ClusterName, s.cfg.UserName)
	if err != nil {
		return err
	}
	if s.cfg.ConfFile != "" {
		if err := conn.ReadConfigFile(s.cfg.ConfFile); err != nil {
			return err
		}
	} else {
		_ = conn.ReadDefaultConfigFile()
	}
	if err := conn.Connect(); err != nil {
		return err
	}
	ioctx, err := conn.OpenIOContext(s.cfg.Pool)
	if err != nil {
		conn.Shutdown()
		return err
	}
	s.conn = conn
	s.ioctx = ioctx
	s.opened = true
	return nil
}

func (s *CephBodyStore) obj(ref string) string {
	return path.Join(s.cfg.Prefix, ref)
}

func (s *CephBodyStore) Put(ref string, r io.Reader) error {
	if err := s.ensureOpen(); err != nil {
		return err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	return s.ioctx.WriteFull(s.obj(ref), data)
}

func (s *CephBodyStore) Get(ref string) (io.ReadCloser, error) {
	if err := s.ensureOpen(); err != nil {
		return nil, err
	}
	obj := s.obj(ref)
	stat, err := s.ioctx.Stat(obj)
	if err != nil {
		return nil, err
	}
	data := make([]byte, stat.Size)
	n, err := s.ioctx.Read(obj, data, 0)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(data[:n])), nil
}

func (s *CephBodyStore) Remove(ref string) error {
	if err := s.ensureOpen(); err != nil {
		return err
	}
	return s.ioctx.Delete(s.obj(ref))
}
