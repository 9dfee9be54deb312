// Package config loads dashboard settings from flags, environment and an
// optional YAML file.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"net"
	"strings"
	"time"

	"github.com/vshulcz/hostdash/internal/misc"
)

const (
	defaultAddress       = ":8050"
	defaultRefreshPeriod = time.Second
	defaultHistoryPoints = 60
	defaultDiskPath      = "/"
)

var (
	ErrInvalidRefresh = errors.New("refresh period must be positive")
	ErrInvalidHistory = errors.New("history points must not be negative")
)

type DashboardConfig struct {
	Address       string
	RefreshPeriod time.Duration
	HistoryPoints int
	DiskPath      string
	Debug         bool
	File          string
}

// Default returns the built-in settings.
func Default() DashboardConfig {
	return DashboardConfig{
		Address:       defaultAddress,
		RefreshPeriod: defaultRefreshPeriod,
		HistoryPoints: defaultHistoryPoints,
		DiskPath:      defaultDiskPath,
	}
}

// LoadDashboardConfig resolves settings with ENV > CLI > config file > defaults.
func LoadDashboardConfig(args []string, out io.Writer) (DashboardConfig, error) {
	if out == nil {
		out = io.Discard
	}

	fs := flag.NewFlagSet("hostdash", flag.ContinueOnError)
	fs.SetOutput(out)

	var (
		addrOpt    string
		refreshOpt string
		histOpt    int
		diskOpt    string
		debugOpt   bool
		fileOpt    string
	)
	fs.StringVar(&addrOpt, "a", "", fmt.Sprintf("ADDRESS to listen on, default: %s", defaultAddress))
	fs.StringVar(&refreshOpt, "r", "", fmt.Sprintf("REFRESH_PERIOD in seconds or Go duration, default: %s", defaultRefreshPeriod))
	fs.IntVar(&histOpt, "n", defaultHistoryPoints, "HISTORY_POINTS kept per series")
	fs.StringVar(&diskOpt, "disk", "", fmt.Sprintf("DISK_PATH to report usage for, default: %s", defaultDiskPath))
	fs.BoolVar(&debugOpt, "debug", false, "DEBUG development logging")
	fs.StringVar(&fileOpt, "c", "", "CONFIG yaml file")

	if err := fs.Parse(args); err != nil {
		return DashboardConfig{}, err
	}
	given := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { given[f.Name] = true })

	cfg := Default()

	cfg.File = misc.Getenv("CONFIG", strings.TrimSpace(fileOpt))
	if cfg.File != "" {
		fc, err := readFile(cfg.File)
		if err != nil {
			return DashboardConfig{}, err
		}
		fc.apply(&cfg)
	}

	if given["a"] {
		cfg.Address = addrOpt
	}
	if given["r"] {
		d, err := misc.ParsePeriod(refreshOpt)
		if err != nil {
			return DashboardConfig{}, fmt.Errorf("-r: %w", err)
		}
		cfg.RefreshPeriod = d
	}
	if given["n"] {
		cfg.HistoryPoints = histOpt
	}
	if given["disk"] {
		cfg.DiskPath = diskOpt
	}
	if given["debug"] {
		cfg.Debug = debugOpt
	}

	cfg.Address = misc.Getenv("ADDRESS", cfg.Address)
	cfg.RefreshPeriod = misc.GetDuration("REFRESH_PERIOD", cfg.RefreshPeriod)
	cfg.HistoryPoints = misc.GetInt("HISTORY_POINTS", cfg.HistoryPoints)
	cfg.DiskPath = misc.Getenv("DISK_PATH", cfg.DiskPath)
	cfg.Debug = misc.GetBool("DEBUG", cfg.Debug)

	if err := cfg.validate(); err != nil {
		return DashboardConfig{}, err
	}
	return cfg, nil
}

func (c *DashboardConfig) validate() error {
	c.Address = normalizeListenAddr(c.Address)
	if _, port, err := net.SplitHostPort(c.Address); err != nil || port == "" {
		return fmt.Errorf("invalid listen address: %q", c.Address)
	}
	if c.RefreshPeriod <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidRefresh, c.RefreshPeriod)
	}
	if c.HistoryPoints < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidHistory, c.HistoryPoints)
	}
	if strings.TrimSpace(c.DiskPath) == "" {
		c.DiskPath = defaultDiskPath
	}
	return nil
}
