package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/formtree/internal/tracing"
)

func TestDefaults(t *testing.T) {
	d := Defaults()
	require.Equal(t, "debug.log", d.LogPath)
	require.Equal(t, 200*time.Millisecond, d.WatchDebounce)
	require.False(t, d.Tracing.Enabled)
	require.NoError(t, Validate(d))
}

func TestValidate_NegativeDebounce(t *testing.T) {
	c := Defaults()
	c.WatchDebounce = -time.Second
	err := Validate(c)
	require.Error(t, err)
	require.Contains(t, err.Error(), "watch_debounce")
}

func TestValidateTracing(t *testing.T) {
	tests := []struct {
		name    string
		cfg     tracing.Config
		wantErr string
	}{
		{name: "zero value", cfg: tracing.Config{}},
		{name: "defaults", cfg: tracing.DefaultConfig()},
		{name: "sample rate too high", cfg: tracing.Config{SampleRate: 1.5}, wantErr: "sample_rate"},
		{name: "sample rate negative", cfg: tracing.Config{SampleRate: -0.1}, wantErr: "sample_rate"},
		{name: "unknown exporter", cfg: tracing.Config{Exporter: "zipkin"}, wantErr: "exporter"},
		{name: "otlp without endpoint", cfg: tracing.Config{Enabled: true, Exporter: "otlp"}, wantErr: "otlp_endpoint"},
		{name: "otlp disabled without endpoint", cfg: tracing.Config{Exporter: "otlp"}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTracing(tt.cfg)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestResolveTracing_FillsFilePath(t *testing.T) {
	c := Defaults()
	c.Tracing.ServiceName = ""
	got := c.ResolveTracing()
	require.Equal(t, "formtree", got.ServiceName)
	require.Equal(t, DefaultTracesFilePath(), got.FilePath)

	c.Tracing.FilePath = "/tmp/custom.jsonl"
	require.Equal(t, "/tmp/custom.jsonl", c.ResolveTracing().FilePath)
}

func TestWriteDefaultConfig_RoundTripsThroughViper(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".formtree", "config.yaml")
	require.NoError(t, WriteDefaultConfig(path))

	v := viper.New()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	var c Config
	require.NoError(t, v.Unmarshal(&c))
	require.False(t, c.Debug)
	require.Equal(t, "debug.log", c.LogPath)
	require.Equal(t, 200*time.Millisecond, c.WatchDebounce)
	require.NoError(t, Validate(c))
}

func TestSaveLayout_CreatesNewFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, SaveLayout(path, "forms.yaml"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "layout: forms.yaml\n", string(data))
}

func TestSaveLayout_PreservesOtherKeysAndComments(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, WriteDefaultConfig(path))
	require.NoError(t, SaveLayout(path, "forms/signup.yaml"))
	require.NoError(t, SaveLayout(path, "forms/login.yaml"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)
	require.Contains(t, content, "# formtree configuration")
	require.Contains(t, content, "layout: forms/login.yaml")
	require.NotContains(t, content, "signup")

	v := viper.New()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())
	require.Equal(t, "forms/login.yaml", v.GetString("layout"))
	require.Equal(t, "debug.log", v.GetString("log_path"))
}

func TestSaveLayout_RejectsNonMapping(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- a\n- b\n"), 0o600))
	require.Error(t, SaveLayout(path, "forms.yaml"))
}
