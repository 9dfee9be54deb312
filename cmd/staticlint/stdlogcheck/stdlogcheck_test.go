package stdlogcheck

import (
	"testing"

	"golang.org/x/tools/go/analysis/analysistest"
)

func TestAnalyzer(t *testing.T) {
	analysistest.Run(t, analysistest.TestData(), Analyzer,
		"example.com/app/internal/store",
		"example.com/app/cmd/tool",
	)
}

func TestIsInternal(t *testing.T) {
	tests := map[string]bool{
		"github.com/vshulcz/hostdash/internal/config": true,
		"internal/misc":                   true,
		"example.com/app/internal":        true,
		"github.com/vshulcz/hostdash/cmd": false,
		"example.com/internalize":         false,
	}
	for path, want := range tests {
		if got := isInternal(path); got != want {
			t.Errorf("isInternal(%q)=%v want %v", path, got, want)
		}
	}
}
