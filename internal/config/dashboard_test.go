package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

var envKeys = []string{"ADDRESS", "REFRESH_PERIOD", "HISTORY_POINTS", "DISK_PATH", "DEBUG", "CONFIG"}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func writeYAML(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "hostdash.yaml")
	if err := os.WriteFile(p, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoadDashboardConfig(t *testing.T) {
	file := ""
	tests := []struct {
		name    string
		args    []string
		env     map[string]string
		yaml    string
		want    DashboardConfig
		wantErr string
	}{
		{
			name: "defaults",
			want: Default(),
		},
		{
			name: "flags",
			args: []string{"-a", "http://127.0.0.1:9090", "-r", "2", "-n", "10", "-disk", "/data", "-debug"},
			want: DashboardConfig{Address: "127.0.0.1:9090", RefreshPeriod: 2 * time.Second, HistoryPoints: 10, DiskPath: "/data", Debug: true},
		},
		{
			name: "env overrides flags",
			args: []string{"-a", ":1111", "-r", "5s", "-n", "10"},
			env:  map[string]string{"ADDRESS": "0.0.0.0:2222", "REFRESH_PERIOD": "250ms", "HISTORY_POINTS": "3", "DEBUG": "yes"},
			want: DashboardConfig{Address: "0.0.0.0:2222", RefreshPeriod: 250 * time.Millisecond, HistoryPoints: 3, DiskPath: "/", Debug: true},
		},
		{
			name: "file under flags",
			args: []string{"-n", "7"},
			yaml: "address: \"9000\"\nrefresh_period: 3\nhistory_points: 120\ndisk_path: /home\ndebug: true\n",
			want: DashboardConfig{Address: ":9000", RefreshPeriod: 3 * time.Second, HistoryPoints: 7, DiskPath: "/home", Debug: true},
		},
		{
			name: "env beats file",
			yaml: "refresh_period: 1500ms\n",
			env:  map[string]string{"REFRESH_PERIOD": "4"},
			want: DashboardConfig{Address: ":8050", RefreshPeriod: 4 * time.Second, HistoryPoints: 60, DiskPath: "/"},
		},
		{
			name: "empty file keeps defaults",
			yaml: "",
			want: Default(),
		},
		{
			name: "zero history is allowed",
			args: []string{"-n", "0"},
			want: DashboardConfig{Address: ":8050", RefreshPeriod: time.Second, HistoryPoints: 0, DiskPath: "/"},
		},
		{
			name:    "zero refresh rejected",
			args:    []string{"-r", "0"},
			wantErr: ErrInvalidRefresh.Error(),
		},
		{
			name:    "negative history rejected",
			env:     map[string]string{"HISTORY_POINTS": "-4"},
			wantErr: ErrInvalidHistory.Error(),
		},
		{
			name:    "bad refresh flag",
			args:    []string{"-r", "often"},
			wantErr: "invalid period",
		},
		{
			name:    "unknown yaml key",
			yaml:    "listen: :1\n",
			wantErr: "parse config file",
		},
		{
			name:    "bad address",
			args:    []string{"-a", "http://example.com"},
			wantErr: "invalid listen address",
		},
		{
			name:    "unknown flag",
			args:    []string{"-z"},
			wantErr: "flag provided but not defined",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			args := tc.args
			file = ""
			if tc.yaml != "" || tc.name == "empty file keeps defaults" {
				file = writeYAML(t, tc.yaml)
				args = append([]string{"-c", file}, args...)
			}

			got, err := LoadDashboardConfig(args, nil)
			if tc.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
					t.Fatalf("err=%v want containing %q", err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			tc.want.File = file
			if got != tc.want {
				t.Fatalf("got %+v\nwant %+v", got, tc.want)
			}
		})
	}
}

func TestLoadDashboardConfig_ConfigFromEnv(t *testing.T) {
	clearEnv(t)
	p := writeYAML(t, "history_points: 5\n")
	t.Setenv("CONFIG", p)

	got, err := LoadDashboardConfig(nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got.HistoryPoints != 5 || got.File != p {
		t.Fatalf("got %+v", got)
	}
}

func TestLoadDashboardConfig_MissingFile(t *testing.T) {
	clearEnv(t)
	_, err := LoadDashboardConfig([]string{"-c", filepath.Join(t.TempDir(), "nope.yaml")}, nil)
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("err=%v want ErrNotExist", err)
	}
}

func TestNormalizeListenAddr(t *testing.T) {
	tests := map[string]string{
		"":                      ":8050",
		"8080":                  ":8080",
		":9":                    ":9",
		"localhost:1":           "localhost:1",
		"https://0.0.0.0:8443/": "0.0.0.0:8443",
	}
	for in, want := range tests {
		if got := normalizeListenAddr(in); got != want {
			t.Errorf("normalizeListenAddr(%q)=%q want %q", in, got, want)
		}
	}
}
