/*
 * babeld. Copyright (C) 2021-present
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation; either version 2 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License along
 * with this program; if not, write to the Free Software Foundation, Inc.,
 * 51 Franklin Street, Fifth Floor, Boston, MA 02110-1301 USA.
 */

// Package config loads the YAML configuration that drives cmd/babeld.
package config

import (
	"encoding/hex"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tinynet/babeld/babel"
)

// Prefix is one statically advertised prefix as written in YAML, e.g.:
//
//	ae: 1
//	prefix: "c00002"
//	plen: 24
//	metric: 128
type Prefix struct {
	AE     uint8  `yaml:"ae"`
	Prefix string `yaml:"prefix"` // hex-encoded raw prefix bytes
	PLen   uint8  `yaml:"plen"`
	Metric uint16 `yaml:"metric"`
}

// Config is the on-disk shape of babeld's configuration file.
type Config struct {
	Interface        string   `yaml:"interface"`
	RouterID         string   `yaml:"router_id"` // 16 hex chars, 8 bytes
	HelloIntervalMS  uint16   `yaml:"hello_interval_ms"`
	IHUIntervalMS    uint16   `yaml:"ihu_interval_ms"`
	UpdateIntervalMS uint16   `yaml:"update_interval_ms"`
	AdvertisedPrefixes []Prefix `yaml:"advertised_prefixes"`
	MetricsListen    string   `yaml:"metrics_listen"`
}

// Default returns a Config with the §6 defaults applied.
func Default() Config {
	return Config{
		HelloIntervalMS:  4000,
		IHUIntervalMS:    4000,
		UpdateIntervalMS: 10000,
	}
}

// Load reads and parses a YAML config file, filling in defaults for any
// zero-valued interval fields.
func Load(path string) (Config, error) {
	c := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Config{}, err
	}
	if c.HelloIntervalMS == 0 {
		c.HelloIntervalMS = 4000
	}
	if c.IHUIntervalMS == 0 {
		c.IHUIntervalMS = 4000
	}
	if c.UpdateIntervalMS == 0 {
		c.UpdateIntervalMS = 10000
	}
	return c, nil
}

// RouterIDBytes decodes the hex RouterID field into the 8-byte form the
// babel package expects.
func (c Config) RouterIDBytes() ([8]byte, error) {
	var id [8]byte
	b, err := hex.DecodeString(c.RouterID)
	if err != nil {
		return id, fmt.Errorf("config: router_id: %w", err)
	}
	if len(b) != 8 {
		return id, fmt.Errorf("config: router_id must decode to 8 bytes, got %d", len(b))
	}
	copy(id[:], b)
	return id, nil
}

// NodeConfig converts to babel.NodeConfig, decoding each advertised
// prefix's hex bytes.
func (c Config) NodeConfig() (babel.NodeConfig, error) {
	nc := babel.NodeConfig{
		HelloIntervalMS:  c.HelloIntervalMS,
		IHUIntervalMS:    c.IHUIntervalMS,
		UpdateIntervalMS: c.UpdateIntervalMS,
	}
	for _, p := range c.AdvertisedPrefixes {
		raw, err := hex.DecodeString(p.Prefix)
		if err != nil {
			return babel.NodeConfig{}, fmt.Errorf("config: advertised_prefixes: %w", err)
		}
		nc.AdvertisedPrefixes = append(nc.AdvertisedPrefixes, babel.AdvertisedPrefix{
			AE: p.AE, PLen: p.PLen, Prefix: raw, Metric: p.Metric,
		})
	}
	return nc, nil
}
