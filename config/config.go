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

// Package config holds the Config struct for every option spec.md §6 names,
// grounded on the teacher's storage/settings.go package-level SettingsT
// struct (plain fields + defaults + a get/set-by-name accessor), here
// loaded from a TOML file instead of set interactively through a Scheme
// callback.
package config

import (
	"time"

	"github.com/BurntSushi/toml"
	units "github.com/docker/go-units"
)

type SaveRule struct {
	Seconds int `toml:"seconds"`
	Changes int `toml:"changes"`
}

type CachePolicy struct {
	Name                string   `toml:"name"`
	KeyPattern          string   `toml:"key_pattern"`
	URLTemplate         string   `toml:"url_template"`
	TTL                 string   `toml:"ttl"`
	SWR                 string   `toml:"swr"`
	Grace               string   `toml:"grace"`
	Tags                []string `toml:"tags"`
	VaryOn              []string `toml:"vary_on"`
	Prewarm             bool     `toml:"prewarm"`
	DisallowStatusCodes []int    `toml:"disallow_status_codes"`
	MaxSizeBytes        string   `toml:"max_size_bytes"`
	RespectOriginHeaders bool    `toml:"respect_origin_headers"`
	NegativeTTL         string   `toml:"negative_ttl"`
	Priority            int      `toml:"priority"`
	Compression         bool     `toml:"compression"`
	ForceDisk           bool     `toml:"force_disk"`
}

type ACLRule struct {
	Name        string   `toml:"name"`
	Commands    []string `toml:"commands"`
	KeyPatterns []string `toml:"key_patterns"`
}

// Config mirrors spec.md §6's configuration surface table field for field.
type Config struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`

	MaxMemory       string `toml:"maxmemory"`
	MaxMemoryPolicy string `toml:"maxmemory_policy"`
	Databases       int    `toml:"databases"`

	SaveRules []SaveRule `toml:"save_rules"`

	AOFEnabled               bool   `toml:"aof_enabled"`
	AOFPath                  string `toml:"aof_path"`
	AppendFsync              string `toml:"appendfsync"`
	AutoAOFRewritePercentage int    `toml:"auto_aof_rewrite_percentage"`
	AutoAOFRewriteMinSize    string `toml:"auto_aof_rewrite_min_size"`

	Replication struct {
		Role        string `toml:"role"`
		PrimaryHost string `toml:"primary_host"`
		PrimaryPort int    `toml:"primary_port"`
	} `toml:"replication"`
	MinReplicasToWrite int `toml:"min_replicas_to_write"`
	MinReplicasMaxLag  int `toml:"min_replicas_max_lag"`

	Cluster struct {
		Enabled        bool   `toml:"enabled"`
		ConfigFile     string `toml:"config_file"`
		NodeTimeoutMs  int    `toml:"node_timeout"`
		FailoverQuorum int    `toml:"failover_quorum"`
	} `toml:"cluster"`

	Cache struct {
		OnDiskPath             string        `toml:"on_disk_path"`
		StreamingThresholdBytes string       `toml:"streaming_threshold_bytes"`
		MaxDiskSize            string        `toml:"max_disk_size"`
		MaxVariantsPerKey      int           `toml:"max_variants_per_key"`
		Policies               []CachePolicy `toml:"policy"`
	} `toml:"cache"`

	ACLFile string `toml:"acl_file"`
	ACL     struct {
		Enabled bool      `toml:"enabled"`
		Rules   []ACLRule `toml:"rules"`
	} `toml:"acl"`
}

// Default returns the built-in defaults, the same role storage.Settings's
// package-level initializer plays in the teacher.
func Default() *Config {
	c := &Config{
		Host:                     "127.0.0.1",
		Port:                     6380,
		MaxMemory:                "0",
		MaxMemoryPolicy:          "noeviction",
		Databases:                16,
		AOFEnabled:               false,
		AOFPath:                  "appendonly.aof",
		AppendFsync:              "everysec",
		AutoAOFRewritePercentage: 100,
		AutoAOFRewriteMinSize:    "64mb",
		MinReplicasToWrite:       0,
		MinReplicasMaxLag:        10,
	}
	c.Cluster.NodeTimeoutMs = 15000
	c.Cluster.FailoverQuorum = 1
	c.Cache.MaxVariantsPerKey = 32
	c.Cache.StreamingThresholdBytes = "64kb"
	c.Cache.MaxDiskSize = "1gb"
	return c
}

// Load reads path as TOML over the defaults (unset fields keep Default's
// values, the same layering the teacher's SettingsT default literal plus
// ChangeSettings overlay provides).
func Load(path string) (*Config, error) {
	c := Default()
	if _, err := toml.DecodeFile(path, c); err != nil {
		return nil, err
	}
	return c, nil
}

// MaxMemoryBytes parses the maxmemory byte-size string, per spec.md §6
// ("maxmemory, maxmemory_policy"), via docker/go-units (the teacher's own
// dependency for human-readable byte sizes).
func (c *Config) MaxMemoryBytes() (int64, error) {
	return units.RAMInBytes(c.MaxMemory)
}

func (c *Config) StreamingThresholdBytes() (int64, error) {
	return units.RAMInBytes(c.Cache.StreamingThresholdBytes)
}

func (c *Config) MaxDiskSizeBytes() (int64, error) {
	return units.RAMInBytes(c.Cache.MaxDiskSize)
}

func (c *Config) AutoAOFRewriteMinSizeBytes() (int64, error) {
	return units.RAMInBytes(c.AutoAOFRewriteMinSize)
}

func (p *CachePolicy) MaxSizeBytesParsed() (int64, error) {
	if p.MaxSizeBytes == "" {
		return 0, nil
	}
	return units.RAMInBytes(p.MaxSizeBytes)
}

func parseDurationOrZero(s string) time.Duration {
	if s == "" {
		return 0
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0
	}
	return d
}

func (p *CachePolicy) TTLDuration() time.Duration   { return parseDurationOrZero(p.TTL) }
func (p *CachePolicy) SWRDuration() time.Duration   { return parseDurationOrZero(p.SWR) }
func (p *CachePolicy) GraceDuration() time.Duration { return parseDurationOrZero(p.Grace) }
func (p *CachePolicy) NegativeTTLDuration() time.Duration {
	return parseDurationOrZero(p.NegativeTTL)
}
