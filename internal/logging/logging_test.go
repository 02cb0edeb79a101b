package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name      string
		level     string
		wantDebug bool
	}{
		{"debug level", "debug", true},
		{"upper case", "DEBUG", true},
		{"info level", "info", false},
		{"unknown falls back to info", "chatty", false},
		{"empty falls back to info", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			log := New(&buf, tt.level)

			log.Debug().Msg("debug line")
			require.Equal(t, tt.wantDebug, buf.Len() > 0)

			buf.Reset()
			log.Info().Str("user", "ada@example.com").Msg("login succeeded")

			var line map[string]any
			require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
			require.Equal(t, "login succeeded", line["message"])
			require.Equal(t, "ada@example.com", line["user"])
			require.Contains(t, line, "time")
		})
	}
}
