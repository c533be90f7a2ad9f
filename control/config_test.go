package control

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/numaheap/api"
)

func TestParseByteSize(t *testing.T) {
	tests := map[string]ByteSize{
		"2MiB":    2 << 20,
		"64 KiB":  64 << 10,
		"1GiB":    1 << 30,
		"4096":    4096,
		"4096B":   4096,
	}
	for in, want := range tests {
		got, err := ParseByteSize(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseByteSize("two megs")
	assert.True(t, errors.Is(err, api.ErrInvalidArgument))
	_, err = ParseByteSize("17179869185GiB")
	assert.ErrorIs(t, err, api.ErrInvalidArgument, "wraps to 1GiB without the overflow check")
	got, err := ParseByteSize("17179869183GiB")
	require.NoError(t, err)
	assert.Equal(t, ByteSize(17179869183<<30), got)
	assert.Equal(t, "2MiB", ByteSize(2<<20).String())
	assert.Equal(t, "12", ByteSize(12).String())
}

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig([]byte(`
grain: 4MiB
regions: 16
numa:
  enabled: true
  homing: "on"
log:
  level: debug
  format: json
metrics:
  namespace: gcheap
`))
	require.NoError(t, err)
	assert.Equal(t, ByteSize(4<<20), cfg.Grain)
	assert.Equal(t, 16, cfg.Regions)
	assert.Equal(t, HomingOn, cfg.NUMA.Homing)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "gcheap", cfg.Metrics.Namespace)
}

func TestParseConfig_Defaults(t *testing.T) {
	cfg, err := ParseConfig([]byte("regions: 2\n"))
	require.NoError(t, err)
	assert.Equal(t, ByteSize(api.DefaultGrain), cfg.Grain)
	assert.Equal(t, HomingAuto, cfg.NUMA.Homing)
	assert.True(t, cfg.NUMA.Enabled)
}

func TestParseConfig_Invalid(t *testing.T) {
	_, err := ParseConfig([]byte("grain: 3MiB\n"))
	var apiErr *api.Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, api.ErrCodeInvalidArgument, apiErr.Code)

	_, err = ParseConfig([]byte("regions: 0\n"))
	assert.True(t, errors.Is(err, api.ErrInvalidArgument))

	_, err = ParseConfig([]byte("numa:\n  homing: sometimes\n"))
	assert.True(t, errors.Is(err, api.ErrInvalidArgument))

	_, err = ParseConfig([]byte("grain: lots\n"))
	assert.Error(t, err)
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "heap.yaml")
	require.NoError(t, os.WriteFile(path, []byte("grain: 1MiB\nregions: 8\n"), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, ByteSize(1<<20), cfg.Grain)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestConfigStore_Reload(t *testing.T) {
	cs := NewConfigStore(nil)
	fired := make(chan struct{}, 1)
	cs.OnReload(func() { fired <- struct{}{} })

	require.NoError(t, cs.SetConfig(map[string]any{KeyLogLevel: "debug", KeyHoming: "off"}))

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("reload listener not called")
	}
	snap := cs.GetSnapshot()
	assert.Equal(t, "debug", snap[KeyLogLevel])
	assert.Equal(t, "off", snap[KeyHoming])
	assert.Equal(t, HomingOff, cs.Current().NUMA.Homing)
}

func TestConfigStore_GrainIsImmutable(t *testing.T) {
	cs := NewConfigStore(nil)

	err := cs.SetConfig(map[string]any{KeyGrain: uint64(4 << 20)})
	assert.ErrorIs(t, err, api.ErrGrainImmutable)

	// Restating the current grain is accepted.
	assert.NoError(t, cs.SetConfig(map[string]any{KeyGrain: "2MiB"}))
	assert.Equal(t, uint64(api.DefaultGrain), cs.GetSnapshot()[KeyGrain])

	err = cs.SetConfig(map[string]any{KeyRegions: 9})
	assert.ErrorIs(t, err, api.ErrNotSupported)

	err = cs.SetConfig(map[string]any{KeyHoming: "maybe"})
	assert.ErrorIs(t, err, api.ErrInvalidArgument)
	assert.Equal(t, HomingAuto, cs.Current().NUMA.Homing)
}
