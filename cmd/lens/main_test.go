package main

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"CONFIG_PATH", "LENS_DATA_BASE_URL", "LENS_DATA_API_KEY", "HTTPS_PROXY",
		"TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID", "SQLITE_PATH", "LOG_LEVEL",
		"LENS_START", "LENS_END", "LENS_SELECT",
	} {
		t.Setenv(k, "")
	}
}

// barsServer serves one close on the 15th of each month of 2020.
// Gold moves as a tenth of KOSPI.
func barsServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		scale := map[string]float64{"^KS11": 1, "GC=F": 0.1}[r.URL.Query().Get("symbol")]
		if scale == 0 {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		var parts []string
		for m := 1; m <= 6; m++ {
			ts := time.Date(2020, time.Month(m), 15, 0, 0, 0, 0, time.UTC).Unix()
			parts = append(parts, fmt.Sprintf(`{"timestamp":%d,"close":%g}`, ts, scale*float64(2000+m*m*10)))
		}
		_, _ = w.Write([]byte("[" + strings.Join(parts, ",") + "]"))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func writeConfig(t *testing.T, baseURL string) string {
	t.Helper()
	body := fmt.Sprintf(`
index: {name: KOSPI, ticker: "^KS11"}
instruments:
  - {name: Gold, ticker: "GC=F"}
  - {name: Oats, ticker: "ZO=F"}
data_source:
  base_url: %q
  requests_per_second: -1
analysis:
  start_date: "2020-01-01"
  end_date: "2020-06-30"
`, baseURL)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestRun_List(t *testing.T) {
	clearEnv(t)
	var out bytes.Buffer
	code := run([]string{"-config", writeConfig(t, ""), "-list"}, &out)
	assert.Equal(t, 0, code)
	assert.Contains(t, out.String(), "index: KOSPI (^KS11)")
	assert.Contains(t, out.String(), "Oats")
}

func TestRun_EndToEnd(t *testing.T) {
	clearEnv(t)
	srv := barsServer(t)
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "overlay.csv")
	t.Setenv("SQLITE_PATH", filepath.Join(dir, "lens.db"))

	var out bytes.Buffer
	code := run([]string{"-config", writeConfig(t, srv.URL), "-select", "Gold,Oats", "-csv", csvPath}, &out)
	require.Equal(t, 0, code)

	report := out.String()
	assert.Contains(t, report, "KOSPI and Gold, Oats Long-term Trend (2020-01-01 - 2020-06-30, Normalized)")
	assert.Regexp(t, `Gold\s+1\.00\s+over 6 months`, report)
	assert.Contains(t, report, "Oats (ZO=F): unavailable")

	data, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Equal(t, "month,KOSPI,Gold", lines[0])
	assert.Len(t, lines, 7)
	assert.Equal(t, "2020-01-31,0.000000,0.000000", lines[1])
}

func TestRun_InvalidRange(t *testing.T) {
	clearEnv(t)
	var out bytes.Buffer
	code := run([]string{"-config", writeConfig(t, ""), "-start", "2021-01-01", "-end", "2020-01-01"}, &out)
	assert.Equal(t, 1, code)
	assert.Empty(t, out.String())
}

func TestRun_NotifyRequiresTelegram(t *testing.T) {
	clearEnv(t)
	var out bytes.Buffer
	code := run([]string{"-config", writeConfig(t, ""), "-notify"}, &out)
	assert.Equal(t, 1, code)
}
