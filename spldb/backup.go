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
package spldb

import (
	"io"
	"os"

	"github.com/ulikunitz/xz"
)

// SaveBackup writes an xz-compressed variant of the SPLDB file Save writes
// (spec.md §4.8), favoring xz's much higher compression ratio over lz4's
// speed, the opposite tradeoff from the AOF rewrite's lz4 choice (see
// DESIGN.md). No command in cmd/spineldb calls it.
func SaveBackup(path string, next func() (Record, bool)) error {
	tmpPath := path + ".tmp"
	raw, err := os.Create(tmpPath)
	if err != nil {
		return err
	}
	xw, err := xz.NewWriter(raw)
	if err != nil {
		raw.Close()
		os.Remove(tmpPath)
		return err
	}

	plainTmp := tmpPath + ".plain"
	if err := Save(plainTmp, next); err != nil {
		xw.Close()
		raw.Close()
		os.Remove(tmpPath)
		return err
	}
	defer os.Remove(plainTmp)

	plain, err := os.Open(plainTmp)
	if err != nil {
		xw.Close()
		raw.Close()
		os.Remove(tmpPath)
		return err
	}
	defer plain.Close()

	buf := make([]byte, 64*1024)
	for {
		n, rerr := plain.Read(buf)
		if n > 0 {
			if _, werr := xw.Write(buf[:n]); werr != nil {
				xw.Close()
				raw.Close()
				os.Remove(tmpPath)
				return werr
			}
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			xw.Close()
			raw.Close()
			os.Remove(tmpPath)
			return rerr
		}
	}
	if err := xw.Close(); err != nil {
		raw.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := raw.Sync(); err != nil {
		raw.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := raw.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return os.Rename(tmpPath, path)
}

// LoadBackup reads an xz-compressed SPLDB file produced by SaveBackup.
func LoadBackup(path string, apply func(Record) error) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer f.Close()

	xr, err := xz.NewReader(f)
	if err != nil {
		return err
	}

	plainTmp := path + ".decompressed.tmp"
	out, err := os.Create(plainTmp)
	if err != nil {
		return err
	}
	defer os.Remove(plainTmp)

	buf := make([]byte, 64*1024)
	for {
		n, rerr := xr.Read(buf)
		if n > 0 {
			if _, werr := out.Write(buf[:n]); werr != nil {
				out.Close()
				return werr
			}
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			out.Close()
			return rerr
		}
	}
	if err := out.Close(); err != nil {
		return err
	}
	return Load(plainTmp, apply)
}
