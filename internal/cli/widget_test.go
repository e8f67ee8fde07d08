package cli

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/rileyhilliard/pulse/internal/dashboard"
	"github.com/rileyhilliard/pulse/internal/errors"
	"github.com/rileyhilliard/pulse/internal/logger"
	"github.com/rileyhilliard/pulse/internal/metric"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestStore returns a store with the three default widgets w1 (CPU line
// chart at 20,20), w2 (memory gauge at 340,20), and w3 (error rate at
// 660,20), backed by a temp dir.
func newTestStore(t *testing.T) *dashboard.Store {
	t.Helper()
	n := 0
	return dashboard.NewStore(
		dashboard.NewFileBlobStore(t.TempDir()),
		dashboard.WithStoreLogger(logger.Noop()),
		dashboard.WithIDGenerator(func() string {
			n++
			return fmt.Sprintf("w%d", n)
		}),
	)
}

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }
func boolPtr(v bool) *bool    { return &v }

func TestResolveWidgetArgs(t *testing.T) {
	t.Run("both given", func(t *testing.T) {
		typ, m, err := resolveWidgetArgs([]string{"gauge", "latency"}, false)
		require.NoError(t, err)
		assert.Equal(t, dashboard.Gauge, typ)
		assert.Equal(t, metric.Latency, m)
	})

	t.Run("missing without a terminal", func(t *testing.T) {
		_, _, err := resolveWidgetArgs([]string{"gauge"}, false)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "required")
		assert.Contains(t, err.Error(), "line_chart, gauge, key_metric")
	})

	t.Run("unknown type", func(t *testing.T) {
		_, _, err := resolveWidgetArgs([]string{"pie", "cpu_usage"}, false)
		assert.Error(t, err)
	})

	t.Run("unknown metric", func(t *testing.T) {
		_, _, err := resolveWidgetArgs([]string{"gauge", "disk_io"}, false)
		assert.Error(t, err)
	})
}

func TestWidgetAdd(t *testing.T) {
	store := newTestStore(t)
	var buf bytes.Buffer

	err := widgetAdd(&buf, store, dashboard.Gauge, metric.Latency, nil)

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Added Request Latency gauge (w4) at 20,290")
	w, ok := store.Widget("w4")
	require.True(t, ok)
	assert.Equal(t, dashboard.DefaultRefreshInterval, w.RefreshIntervalSeconds)
}

func TestWidgetAdd_Refresh(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, widgetAdd(&bytes.Buffer{}, store, dashboard.LineChart, metric.RequestCount, intPtr(10)))

	w, ok := store.Widget("w4")
	require.True(t, ok)
	assert.Equal(t, 10, w.RefreshIntervalSeconds)
}

func TestWidgetAdd_BadRefreshLeavesNoWidget(t *testing.T) {
	store := newTestStore(t)

	err := widgetAdd(&bytes.Buffer{}, store, dashboard.LineChart, metric.RequestCount, intPtr(99))

	require.Error(t, err)
	assert.ErrorIs(t, err, dashboard.ErrInvalidWidget)
	assert.Len(t, store.Widgets(), 3)
}

func TestWidgetList(t *testing.T) {
	store := newTestStore(t)
	var buf bytes.Buffer

	widgetList(&buf, store)

	out := buf.String()
	for _, want := range []string{"w1", "line_chart", "cpu_usage", "20,20", "300x250", "memory_usage", "key_metric"} {
		assert.Contains(t, out, want)
	}
}

func TestWidgetList_Empty(t *testing.T) {
	store := newTestStore(t)
	for _, id := range []string{"w1", "w2", "w3"} {
		require.True(t, store.RemoveWidget(id))
	}
	var buf bytes.Buffer

	widgetList(&buf, store)

	assert.Contains(t, buf.String(), "No widgets on the dashboard")
}

func TestWidgetRemove(t *testing.T) {
	store := newTestStore(t)
	var buf bytes.Buffer

	require.NoError(t, widgetRemove(&buf, store, "w1"))
	assert.Contains(t, buf.String(), "Removed CPU Usage (w1)")
	assert.Len(t, store.Widgets(), 2)

	err := widgetRemove(&buf, store, "w1")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrWidget))
	assert.Contains(t, err.Error(), `No widget with id "w1"`)
}

func TestWidgetSet(t *testing.T) {
	store := newTestStore(t)

	err := widgetSet(&bytes.Buffer{}, store, "w1", widgetEdit{
		title:   strPtr("Host CPU"),
		refresh: intPtr(5),
		window:  intPtr(15),
	})
	require.NoError(t, err)

	w, _ := store.Widget("w1")
	assert.Equal(t, "Host CPU", w.Title)
	assert.Equal(t, 5, w.RefreshIntervalSeconds)
	assert.Equal(t, dashboard.LineChartConfig{TimeWindowMinutes: 15}, w.Config)
}

func TestWidgetSet_Trend(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, widgetSet(&bytes.Buffer{}, store, "w3", widgetEdit{trend: boolPtr(false)}))

	w, _ := store.Widget("w3")
	cfg, ok := w.Config.(dashboard.KeyMetricConfig)
	require.True(t, ok)
	assert.False(t, cfg.ShowTrend)
}

func TestWidgetSet_Rejects(t *testing.T) {
	tests := []struct {
		name string
		id   string
		edit widgetEdit
		want string
	}{
		{"unknown id", "w9", widgetEdit{title: strPtr("x")}, "No widget"},
		{"window on gauge", "w2", widgetEdit{window: intPtr(5)}, "only applies to line charts"},
		{"trend on line chart", "w1", widgetEdit{trend: boolPtr(true)}, "only applies to key metrics"},
		{"refresh out of range", "w1", widgetEdit{refresh: intPtr(0)}, "refresh interval"},
		{"zero window", "w1", widgetEdit{window: intPtr(0)}, "time window"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newTestStore(t)
			before := store.Widgets()

			err := widgetSet(&bytes.Buffer{}, store, tt.id, tt.edit)

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
			assert.Equal(t, before, store.Widgets())
		})
	}
}

func TestWidgetMove(t *testing.T) {
	store := newTestStore(t)
	var buf bytes.Buffer

	require.NoError(t, widgetMove(&buf, store, "w2", 340, 600))

	assert.Contains(t, buf.String(), "Moved w2 to 340,600")
	w, _ := store.Widget("w2")
	assert.Equal(t, dashboard.Position{X: 340, Y: 600}, w.Position)
}

func TestWidgetMove_OverlapRefused(t *testing.T) {
	store := newTestStore(t)

	err := widgetMove(&bytes.Buffer{}, store, "w2", 100, 20)

	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrLayout))
	assert.Contains(t, err.Error(), "overlap w1")
	w, _ := store.Widget("w2")
	assert.Equal(t, dashboard.Position{X: 340, Y: 20}, w.Position, "position is unchanged")
}

func TestWidgetMove_UnknownID(t *testing.T) {
	err := widgetMove(&bytes.Buffer{}, newTestStore(t), "nope", 0, 0)
	assert.Contains(t, err.Error(), "No widget")
}

func TestWidgetResize(t *testing.T) {
	store := newTestStore(t)
	var buf bytes.Buffer

	require.NoError(t, widgetResize(&buf, store, "w1", 310, 260))

	assert.Contains(t, buf.String(), "Resized w1 to 310x260")
	w, _ := store.Widget("w1")
	assert.Equal(t, dashboard.Size{Width: 310, Height: 260}, w.Size)
	assert.Equal(t, dashboard.Position{X: 20, Y: 20}, w.Position)
}

func TestWidgetResize_ClampsToMinimum(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, widgetResize(&bytes.Buffer{}, store, "w1", 10, 10))

	w, _ := store.Widget("w1")
	assert.Equal(t, dashboard.Size{Width: dashboard.MinWidth, Height: dashboard.MinHeight}, w.Size)
}

func TestWidgetResize_OverlapRefused(t *testing.T) {
	store := newTestStore(t)

	err := widgetResize(&bytes.Buffer{}, store, "w1", 400, 250)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "overlap w2")
	w, _ := store.Widget("w1")
	assert.Equal(t, dashboard.Size{Width: 300, Height: 250}, w.Size)
}

func TestParsePair(t *testing.T) {
	x, y, err := parsePair("20", "290", "position")
	require.NoError(t, err)
	assert.Equal(t, 20, x)
	assert.Equal(t, 290, y)

	for _, args := range [][2]string{{"-1", "0"}, {"a", "1"}, {"1", "2.5"}} {
		_, _, err := parsePair(args[0], args[1], "position")
		assert.Error(t, err, "%v", args)
	}
}

func TestWidgetStack(t *testing.T) {
	store := newTestStore(t)
	var buf bytes.Buffer

	require.NoError(t, widgetStack(&buf, store, "w1", stackOps[0]))
	assert.Contains(t, buf.String(), "Brought w1 to the front (z 1)")

	buf.Reset()
	require.NoError(t, widgetStack(&buf, store, "w2", stackOps[1]))
	assert.Contains(t, buf.String(), "Sent w2 to the back (z -1)")

	buf.Reset()
	require.NoError(t, widgetStack(&buf, store, "w3", stackOps[2]))
	assert.Contains(t, buf.String(), "Sent w3 back one layer (z -1)")
	w2, _ := store.Widget("w2")
	assert.Equal(t, 0, w2.ZIndex, "swapped with the widget it passed")

	assert.Error(t, widgetStack(&buf, store, "w9", stackOps[0]))
}

func TestWidgetCommandsRegistered(t *testing.T) {
	var names []string
	for _, c := range widgetCmd.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"add", "list", "remove", "set", "move", "resize", "front", "back", "backward"}, names)
}
