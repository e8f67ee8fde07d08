package metric

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSnapshot(t *testing.T) {
	t.Run("full snapshot", func(t *testing.T) {
		snap, err := ParseSnapshot([]byte(`{"cpu_usage":12.5,"memory_usage":50000,"latency":3,"error_rate":1,"request_count":250,"success_rate":100}`))
		require.NoError(t, err)
		assert.Len(t, snap, 6)
		assert.Equal(t, 12.5, snap[CPUUsage])
		assert.Equal(t, 50000.0, snap[MemoryUsage])
	})

	t.Run("nulls and unknown keys dropped", func(t *testing.T) {
		snap, err := ParseSnapshot([]byte(`{"cpu_usage":null,"latency":7,"disk":3}`))
		require.NoError(t, err)
		assert.Equal(t, Snapshot{Latency: 7}, snap)
	})

	t.Run("non-numeric value drops only its key", func(t *testing.T) {
		snap, err := ParseSnapshot([]byte(`{"cpu_usage":"n/a","memory_usage":2048,"latency":{"p50":3},"error_rate":true}`))
		require.NoError(t, err)
		assert.Equal(t, Snapshot{MemoryUsage: 2048}, snap)
	})

	for name, payload := range map[string]string{
		"array":  `[1,2,3]`,
		"string": `"hello"`,
		"null":   `null`,
		"broken": `{"cpu_usage":`,
	} {
		t.Run("rejects "+name, func(t *testing.T) {
			_, err := ParseSnapshot([]byte(payload))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid data format")
		})
	}
}

func TestEncode(t *testing.T) {
	data, err := Encode(TypeSystemMetrics, Snapshot{CPUUsage: 42})
	require.NoError(t, err)

	var msg Message
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, TypeSystemMetrics, msg.Type)

	snap, err := ParseSnapshot(msg.Data)
	require.NoError(t, err)
	assert.Equal(t, 42.0, snap[CPUUsage])

	data, err = Encode(TypeSystemInfo, SystemInfo{TotalMemoryMB: 16384})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"system_info","data":{"totalMemoryMB":16384}}`, string(data))
}
