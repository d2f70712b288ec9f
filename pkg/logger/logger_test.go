package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitLogger(t *testing.T) {
	tests := []struct {
		name          string
		logLevel      string
		isDevelopment bool
		expectedLevel logrus.Level
		expectJSON    bool
	}{
		{
			name:          "production defaults to info json",
			logLevel:      "info",
			isDevelopment: false,
			expectedLevel: logrus.InfoLevel,
			expectJSON:    true,
		},
		{
			name:          "development uses text formatter",
			logLevel:      "debug",
			isDevelopment: true,
			expectedLevel: logrus.DebugLevel,
			expectJSON:    false,
		},
		{
			name:          "invalid level falls back to info",
			logLevel:      "loud",
			isDevelopment: true,
			expectedLevel: logrus.InfoLevel,
			expectJSON:    false,
		},
		{
			name:          "case insensitive level",
			logLevel:      "WARN",
			isDevelopment: false,
			expectedLevel: logrus.WarnLevel,
			expectJSON:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			Logger = nil
			log := InitLogger(tt.logLevel, tt.isDevelopment)

			assert.Equal(t, tt.expectedLevel, log.GetLevel())
			if tt.expectJSON {
				_, ok := log.Formatter.(*logrus.JSONFormatter)
				assert.True(t, ok, "expected JSON formatter")
			} else {
				_, ok := log.Formatter.(*logrus.TextFormatter)
				assert.True(t, ok, "expected text formatter")
			}
		})
	}
}

func TestWithService(t *testing.T) {
	Logger = nil
	log := InitLogger("info", false)

	var buf bytes.Buffer
	log.SetOutput(&buf)

	WithService("optimizer-service").Info("starting")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "optimizer-service", entry["service"])
	assert.Equal(t, "starting", entry["msg"])
}

func TestGetLogger_ReturnsSameInstance(t *testing.T) {
	Logger = nil

	first := GetLogger()
	assert.NotNil(t, first)
	assert.Same(t, first, GetLogger())
}
