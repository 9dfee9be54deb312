package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vshulcz/hostdash/internal/misc"
)

// fileConfig mirrors the optional YAML file. Pointer fields tell "absent"
// apart from a zero value.
type fileConfig struct {
	Address       *string `yaml:"address"`
	RefreshPeriod *period `yaml:"refresh_period"`
	HistoryPoints *int    `yaml:"history_points"`
	DiskPath      *string `yaml:"disk_path"`
	Debug         *bool   `yaml:"debug"`
}

// period decodes both `refresh_period: 2` and `refresh_period: 1500ms`.
type period time.Duration

func (p *period) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: refresh_period must be a scalar", n.Line)
	}
	d, err := misc.ParsePeriod(n.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", n.Line, err)
	}
	*p = period(d)
	return nil
}

func readFile(path string) (fileConfig, error) {
	var fc fileConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return fc, fmt.Errorf("read config file: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&fc); err != nil && !errors.Is(err, io.EOF) {
		return fc, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return fc, nil
}

func (fc fileConfig) apply(c *DashboardConfig) {
	if fc.Address != nil {
		c.Address = *fc.Address
	}
	if fc.RefreshPeriod != nil {
		c.RefreshPeriod = time.Duration(*fc.RefreshPeriod)
	}
	if fc.HistoryPoints != nil {
		c.HistoryPoints = *fc.HistoryPoints
	}
	if fc.DiskPath != nil {
		c.DiskPath = *fc.DiskPath
	}
	if fc.Debug != nil {
		c.Debug = *fc.Debug
	}
}
