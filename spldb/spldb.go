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

// Package spldb implements SpinelDB's binary point-in-time snapshot format:
// a magic header, a stream of records (one per live key across every
// database), and a trailing CRC32 checksum. Grounded on the teacher's
// schema.json + per-column file persistence (storage/database.go's
// database.save, storage/persistence-files.go's WriteColumn), generalized
// from "one JSON file plus one file per column" to "one binary file per
// snapshot", since SpinelDB has no column-oriented storage to mirror.
package spldb

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"hash/crc32"
	"io"
	"os"
)

// magic identifies a SpinelDB SPLDB file; bumped on incompatible format
// changes.
var magic = [8]byte{'S', 'P', 'L', 'D', 'B', '0', '0', '1'}

// Record is one key's full on-disk representation. The Payload is an
// opaque, already-serialized form of storage.KeyEntry produced by the
// server package (spldb stays independent of storage's concrete container
// types, the same layering the teacher keeps between PersistenceEngine and
// the table/column types it serializes).
type Record struct {
	DBIndex int    `json:"db"`
	Key     string `json:"key"`
	Payload []byte `json:"payload"`
}

// Save writes every record yielded by next to path as a new SPLDB file,
// using a temp file + atomic rename so a crash mid-write never corrupts the
// previous snapshot, per spec.md §4.8. next should return (Record{}, false)
// to signal completion.
func Save(path string, next func() (Record, bool)) error {
	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return err
	}

	crc := crc32.NewIEEE()
	mw := io.MultiWriter(f, crc)
	bw := bufio.NewWriter(mw)

	if _, err := bw.Write(magic[:]); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return err
	}

	for {
		rec, ok := next()
		if !ok {
			break
		}
		b, err := json.Marshal(rec)
		if err != nil {
			bw.Flush()
			f.Close()
			os.Remove(tmpPath)
			return err
		}
		if err := binary.Write(bw, binary.BigEndian, uint32(len(b))); err != nil {
			f.Close()
			os.Remove(tmpPath)
			return err
		}
		if _, err := bw.Write(b); err != nil {
			f.Close()
			os.Remove(tmpPath)
			return err
		}
	}

	if err := bw.Flush(); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return err
	}
	sum := crc.Sum32()
	if err := binary.Write(f, binary.BigEndian, sum); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return os.Rename(tmpPath, path)
}

// Load reads every record from path, verifying the trailing checksum only
// after the full body has been read (so a truncated file is detected as a
// checksum mismatch rather than a silent partial load).
func Load(path string, apply func(Record) error) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer f.Close()

	body, err := io.ReadAll(f)
	if err != nil {
		return err
	}
	if len(body) < len(magic)+4 {
		return errMalformed
	}
	footerStart := len(body) - 4
	payload, footer := body[:footerStart], body[footerStart:]
	wantSum := binary.BigEndian.Uint32(footer)
	gotSum := crc32.ChecksumIEEE(payload)
	if gotSum != wantSum {
		return errChecksum
	}

	if string(payload[:8]) != string(magic[:]) {
		return errMalformed
	}
	rest := payload[8:]
	for len(rest) > 0 {
		if len(rest) < 4 {
			return errMalformed
		}
		n := binary.BigEndian.Uint32(rest)
		rest = rest[4:]
		if uint32(len(rest)) < n {
			return errMalformed
		}
		var rec Record
		if err := json.Unmarshal(rest[:n], &rec); err != nil {
			return err
		}
		rest = rest[n:]
		if err := apply(rec); err != nil {
			return err
		}
	}
	return nil
}
