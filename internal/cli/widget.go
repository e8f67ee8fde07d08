package cli

import (
	"cmp"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/rileyhilliard/pulse/internal/dashboard"
	"github.com/rileyhilliard/pulse/internal/errors"
	"github.com/rileyhilliard/pulse/internal/layout"
	"github.com/rileyhilliard/pulse/internal/logger"
	"github.com/rileyhilliard/pulse/internal/metric"
	"github.com/rileyhilliard/pulse/internal/ui"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	widgetRefreshFlag int
	widgetTitleFlag   string
	widgetWindowFlag  int
	widgetTrendFlag   bool
)

// widgetCmd groups the non-interactive widget edits.
var widgetCmd = &cobra.Command{
	Use:   "widget",
	Short: "Add, list, arrange, and remove dashboard widgets",
	Long: `Edit the saved dashboard without opening it.

Every change is written to the same store the dashboard reads, and the
same overlap rules apply: a move or resize that would overlap another
widget is refused.

Examples:
  pulse widget add line_chart cpu_usage
  pulse widget list
  pulse widget move 3f2a 20 290
  pulse widget remove 3f2a`,
}

var widgetAddCmd = &cobra.Command{
	Use:   "add [type] [metric]",
	Short: "Add a widget at the next free slot",
	Long: `Add a widget showing one metric.

Types: line_chart, gauge, key_metric
Metrics: cpu_usage, memory_usage, latency, error_rate, request_count, success_rate

With no arguments in a terminal, pick the type and metric from a menu.

Examples:
  pulse widget add
  pulse widget add gauge memory_usage
  pulse widget add key_metric error_rate --refresh 5`,
	Args: cobra.MaximumNArgs(2),
	ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		switch len(args) {
		case 0:
			return typeNames(), cobra.ShellCompDirectiveNoFileComp
		case 1:
			return metricNames(), cobra.ShellCompDirectiveNoFileComp
		}
		return nil, cobra.ShellCompDirectiveNoFileComp
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		t, m, err := resolveWidgetArgs(args, isInteractive())
		if err != nil {
			return err
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		var refresh *int
		if cmd.Flags().Changed("refresh") {
			refresh = &widgetRefreshFlag
		}
		return widgetAdd(cmd.OutOrStdout(), openStore(cfg), t, m, refresh)
	},
}

var widgetListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List widgets on the dashboard",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		widgetList(cmd.OutOrStdout(), openStore(cfg))
		return nil
	},
}

var widgetRemoveCmd = &cobra.Command{
	Use:               "remove <id>",
	Aliases:           []string{"rm"},
	Short:             "Remove a widget",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeWidgetIDs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return widgetRemove(cmd.OutOrStdout(), openStore(cfg), args[0])
	},
}

var widgetSetCmd = &cobra.Command{
	Use:   "set <id>",
	Short: "Change a widget's title, refresh interval, or type settings",
	Long: `Change settings on an existing widget.

Examples:
  pulse widget set 3f2a --title "API latency"
  pulse widget set 3f2a --refresh 10
  pulse widget set 3f2a --window 15     # line charts: minutes of history
  pulse widget set 3f2a --trend=false   # key metrics: hide the trend line`,
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeWidgetIDs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		edit := widgetEdit{}
		if cmd.Flags().Changed("title") {
			edit.title = &widgetTitleFlag
		}
		if cmd.Flags().Changed("refresh") {
			edit.refresh = &widgetRefreshFlag
		}
		if cmd.Flags().Changed("window") {
			edit.window = &widgetWindowFlag
		}
		if cmd.Flags().Changed("trend") {
			edit.trend = &widgetTrendFlag
		}
		return widgetSet(cmd.OutOrStdout(), openStore(cfg), args[0], edit)
	},
}

var widgetMoveCmd = &cobra.Command{
	Use:               "move <id> <x> <y>",
	Short:             "Move a widget to canvas position x,y",
	Args:              cobra.ExactArgs(3),
	ValidArgsFunction: completeWidgetIDs,
	RunE: func(cmd *cobra.Command, args []string) error {
		x, y, err := parsePair(args[1], args[2], "position")
		if err != nil {
			return err
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return widgetMove(cmd.OutOrStdout(), openStore(cfg), args[0], x, y)
	},
}

var widgetResizeCmd = &cobra.Command{
	Use:               "resize <id> <width> <height>",
	Short:             "Resize a widget, keeping its top-left corner",
	Args:              cobra.ExactArgs(3),
	ValidArgsFunction: completeWidgetIDs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w, h, err := parsePair(args[1], args[2], "size")
		if err != nil {
			return err
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return widgetResize(cmd.OutOrStdout(), openStore(cfg), args[0], w, h)
	},
}

// stackOp is a z-order command: front, back, or backward.
type stackOp struct {
	use   string
	short string
	apply func(*dashboard.Store, string)
	verb  string
}

var stackOps = []stackOp{
	{"front <id>", "Bring a widget above all others", (*dashboard.Store).SendToFront, "Brought %s to the front"},
	{"back <id>", "Send a widget behind all others", (*dashboard.Store).SendBackward, "Sent %s to the back"},
	{"backward <id>", "Send a widget one layer back", (*dashboard.Store).SendBackwardStep, "Sent %s back one layer"},
}

func newStackCmd(op stackOp) *cobra.Command {
	return &cobra.Command{
		Use:               op.use,
		Short:             op.short,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeWidgetIDs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return widgetStack(cmd.OutOrStdout(), openStore(cfg), args[0], op)
		},
	}
}

func init() {
	widgetAddCmd.Flags().IntVar(&widgetRefreshFlag, "refresh", dashboard.DefaultRefreshInterval,
		fmt.Sprintf("refresh interval in seconds (%d-%d)", dashboard.MinRefreshInterval, dashboard.MaxRefreshInterval))

	widgetSetCmd.Flags().StringVar(&widgetTitleFlag, "title", "", "widget title")
	widgetSetCmd.Flags().IntVar(&widgetRefreshFlag, "refresh", dashboard.DefaultRefreshInterval,
		fmt.Sprintf("refresh interval in seconds (%d-%d)", dashboard.MinRefreshInterval, dashboard.MaxRefreshInterval))
	widgetSetCmd.Flags().IntVar(&widgetWindowFlag, "window", 0, "line chart history in minutes")
	widgetSetCmd.Flags().BoolVar(&widgetTrendFlag, "trend", true, "show the trend line on key metrics")

	widgetCmd.AddCommand(widgetAddCmd, widgetListCmd, widgetRemoveCmd, widgetSetCmd, widgetMoveCmd, widgetResizeCmd)
	for _, op := range stackOps {
		widgetCmd.AddCommand(newStackCmd(op))
	}
	rootCmd.AddCommand(widgetCmd)
}

func typeNames() []string {
	var names []string
	for _, t := range dashboard.Types() {
		names = append(names, string(t))
	}
	return names
}

func metricNames() []string {
	var names []string
	for _, m := range metric.All() {
		names = append(names, string(m))
	}
	return names
}

func isInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// resolveWidgetArgs parses the type and metric arguments, prompting for
// whatever is missing when interactive.
func resolveWidgetArgs(args []string, interactive bool) (dashboard.Type, metric.Name, error) {
	var typeArg, metricArg string
	if len(args) > 0 {
		typeArg = args[0]
	}
	if len(args) > 1 {
		metricArg = args[1]
	}

	if typeArg == "" || metricArg == "" {
		if !interactive {
			return "", "", errors.New(errors.ErrWidget,
				"Widget type and metric are required",
				"Usage: pulse widget add <type> <metric>\nTypes: "+strings.Join(typeNames(), ", ")+
					"\nMetrics: "+strings.Join(metricNames(), ", "))
		}
		if err := promptWidget(&typeArg, &metricArg); err != nil {
			return "", "", err
		}
	}

	t, err := dashboard.ParseType(typeArg)
	if err != nil {
		return "", "", err
	}
	m, err := metric.Parse(metricArg)
	if err != nil {
		return "", "", err
	}
	return t, m, nil
}

// promptWidget asks for the fields left empty.
func promptWidget(typeArg, metricArg *string) error {
	var fields []huh.Field
	if *typeArg == "" {
		var opts []huh.Option[string]
		for _, t := range dashboard.Types() {
			opts = append(opts, huh.NewOption(t.Label(), string(t)))
		}
		fields = append(fields, huh.NewSelect[string]().
			Title("Widget type").
			Options(opts...).
			Value(typeArg))
	}
	if *metricArg == "" {
		var opts []huh.Option[string]
		for _, m := range metric.All() {
			opts = append(opts, huh.NewOption(m.Title(), string(m)))
		}
		fields = append(fields, huh.NewSelect[string]().
			Title("Metric").
			Options(opts...).
			Value(metricArg))
	}

	if err := huh.NewForm(huh.NewGroup(fields...)).Run(); err != nil {
		return errors.WrapWithCode(err, errors.ErrWidget,
			"Failed to get user input",
			"Pass the type and metric as arguments instead")
	}
	return nil
}

func widgetNotFound(id string) error {
	return errors.New(errors.ErrWidget,
		fmt.Sprintf("No widget with id %q", id),
		"Run 'pulse widget list' to see widget ids")
}

// widgetAdd adds a widget, then applies refresh when set. A rejected
// refresh removes the widget again.
func widgetAdd(out io.Writer, store *dashboard.Store, t dashboard.Type, m metric.Name, refresh *int) error {
	w, err := store.AddWidget(t, m)
	if err != nil {
		return err
	}
	if refresh != nil && *refresh != w.RefreshIntervalSeconds {
		w.RefreshIntervalSeconds = *refresh
		if err := store.UpdateWidget(w); err != nil {
			store.RemoveWidget(w.ID)
			return err
		}
	}

	fmt.Fprintf(out, "%s Added %s %s (%s) at %d,%d\n",
		ui.SuccessStyle().Render(ui.SymbolComplete),
		m.Title(), strings.ToLower(t.Label()), w.ID, w.Position.X, w.Position.Y)
	return nil
}

func widgetRows(widgets []dashboard.Widget) []ui.WidgetRow {
	rows := make([]ui.WidgetRow, 0, len(widgets))
	for _, w := range widgets {
		rows = append(rows, ui.WidgetRow{
			ID:       w.ID,
			Type:     string(w.Type()),
			Metric:   string(w.Metric),
			Position: fmt.Sprintf("%d,%d", w.Position.X, w.Position.Y),
			Size:     fmt.Sprintf("%dx%d", w.Size.Width, w.Size.Height),
			Refresh:  fmt.Sprintf("%ds", w.RefreshIntervalSeconds),
			Z:        w.ZIndex,
		})
	}
	return rows
}

// widgetList prints widgets back to front, insertion order within a layer.
func widgetList(out io.Writer, store *dashboard.Store) {
	widgets := store.Widgets()
	slices.SortStableFunc(widgets, func(a, b dashboard.Widget) int {
		return cmp.Compare(a.ZIndex, b.ZIndex)
	})
	fmt.Fprintln(out, ui.RenderWidgetTable(widgetRows(widgets)))
}

func widgetRemove(out io.Writer, store *dashboard.Store, id string) error {
	w, ok := store.Widget(id)
	if !ok || !store.RemoveWidget(id) {
		return widgetNotFound(id)
	}
	fmt.Fprintf(out, "%s Removed %s (%s)\n", ui.SuccessStyle().Render(ui.SymbolComplete), w.Title, id)
	return nil
}

// widgetEdit carries the settings a set command changes. Nil fields are
// left alone.
type widgetEdit struct {
	title   *string
	refresh *int
	window  *int
	trend   *bool
}

func widgetSet(out io.Writer, store *dashboard.Store, id string, edit widgetEdit) error {
	w, ok := store.Widget(id)
	if !ok {
		return widgetNotFound(id)
	}

	if edit.title != nil {
		w.Title = *edit.title
	}
	if edit.refresh != nil {
		w.RefreshIntervalSeconds = *edit.refresh
	}
	if edit.window != nil {
		lc, ok := w.Config.(dashboard.LineChartConfig)
		if !ok {
			return errors.New(errors.ErrWidget,
				fmt.Sprintf("--window only applies to line charts; %s is a %s", id, strings.ToLower(w.Type().Label())),
				"")
		}
		lc.TimeWindowMinutes = *edit.window
		w.Config = lc
	}
	if edit.trend != nil {
		km, ok := w.Config.(dashboard.KeyMetricConfig)
		if !ok {
			return errors.New(errors.ErrWidget,
				fmt.Sprintf("--trend only applies to key metrics; %s is a %s", id, strings.ToLower(w.Type().Label())),
				"")
		}
		km.ShowTrend = *edit.trend
		w.Config = km
	}

	if err := store.UpdateWidget(w); err != nil {
		return err
	}
	fmt.Fprintf(out, "%s Updated %s\n", ui.SuccessStyle().Render(ui.SymbolComplete), id)
	return nil
}

func parsePair(a, b, what string) (int, int, error) {
	x, errX := strconv.Atoi(a)
	y, errY := strconv.Atoi(b)
	if errX != nil || errY != nil || x < 0 || y < 0 {
		return 0, 0, errors.New(errors.ErrLayout,
			fmt.Sprintf("Invalid %s: %s %s", what, a, b),
			"Use two non-negative whole numbers of canvas pixels")
	}
	return x, y, nil
}

func newEngine(store *dashboard.Store) *layout.Engine {
	return layout.NewEngine(store, layout.WithEngineLogger(logger.NewEnvLogger("[layout]")))
}

// overlapError reports a refused move or resize.
func overlapError(engine *layout.Engine, id string, target layout.Rect) error {
	return errors.New(errors.ErrLayout,
		fmt.Sprintf("%s at %s would overlap %s", id, target, strings.Join(engine.Conflicts(target, id), ", ")),
		"Pick a free spot, or move the other widget first")
}

// widgetMove drags the widget's top-left corner to x,y through the layout
// engine, so the drag overlap rules apply.
func widgetMove(out io.Writer, store *dashboard.Store, id string, x, y int) error {
	w, ok := store.Widget(id)
	if !ok {
		return widgetNotFound(id)
	}

	engine := newEngine(store)
	start := layout.Point{X: w.Position.X, Y: w.Position.Y}
	engine.BeginDrag(id, start, layout.ButtonPrimary)
	t, _ := engine.Move(layout.Point{X: x, Y: y})
	res, _ := engine.End()
	if res.Reverted {
		return overlapError(engine, id, t.Rect)
	}

	fmt.Fprintf(out, "%s Moved %s to %d,%d\n", ui.SuccessStyle().Render(ui.SymbolComplete), id, res.Rect.X, res.Rect.Y)
	return nil
}

// widgetResize drags the south-east handle so the widget ends up
// width x height. The engine applies the minimum size.
func widgetResize(out io.Writer, store *dashboard.Store, id string, width, height int) error {
	w, ok := store.Widget(id)
	if !ok {
		return widgetNotFound(id)
	}

	engine := newEngine(store)
	r := layout.RectOf(w)
	corner := layout.Point{X: r.Right(), Y: r.Bottom()}
	engine.BeginResize(id, layout.SouthEast, corner, layout.ButtonPrimary)
	t, _ := engine.Move(layout.Point{X: r.X + width, Y: r.Y + height})
	res, _ := engine.End()
	if res.Reverted {
		return overlapError(engine, id, t.Rect)
	}

	fmt.Fprintf(out, "%s Resized %s to %dx%d\n", ui.SuccessStyle().Render(ui.SymbolComplete), id, res.Rect.W, res.Rect.H)
	return nil
}

func widgetStack(out io.Writer, store *dashboard.Store, id string, op stackOp) error {
	if _, ok := store.Widget(id); !ok {
		return widgetNotFound(id)
	}
	op.apply(store, id)
	w, _ := store.Widget(id)
	fmt.Fprintf(out, "%s %s (z %d)\n", ui.SuccessStyle().Render(ui.SymbolComplete), fmt.Sprintf(op.verb, id), w.ZIndex)
	return nil
}

// completeWidgetIDs completes the first argument with saved widget ids.
func completeWidgetIDs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	cfg, err := loadConfig()
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	var ids []string
	for _, w := range openStore(cfg).Widgets() {
		if strings.HasPrefix(w.ID, toComplete) {
			ids = append(ids, w.ID+"\t"+w.Title)
		}
	}
	return ids, cobra.ShellCompDirectiveNoFileComp
}
