package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/livequery/internal/controller"
	"github.com/roach88/livequery/internal/record"
	"github.com/roach88/livequery/internal/source"
	"github.com/roach88/livequery/internal/store"
)

// NewTailCommand creates the tail command.
//
// tail opens a database, attaches one controller per watch definition, and
// then applies each line read from stdin as a single transaction through
// the store's writer. Every committed transaction that changes a watched
// query's results prints its edit script.
func NewTailCommand(opts *RootOptions) *cobra.Command {
	var dbPath string
	var watchesDir string

	cmd := &cobra.Command{
		Use:   "tail",
		Short: "Apply SQL from stdin and stream watched queries' edit scripts",
		RunE: func(cmd *cobra.Command, args []string) error {
			if dbPath == "" {
				return fmt.Errorf("--db is required")
			}
			watches, err := LoadWatches(watchesDir)
			if err != nil {
				return err
			}
			return runTail(cmd.Context(), cmd.OutOrStdout(), cmd.InOrStdin(), opts, dbPath, watches)
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "path to the SQLite database")
	cmd.Flags().StringVar(&watchesDir, "watches", "watches", "directory of .cue watch definitions")
	return cmd
}

// rowRecord decodes a fetched row into its plain column map.
func rowRecord(row record.Row) (map[string]any, error) {
	out := make(map[string]any, row.Len())
	for i, col := range row.Columns() {
		out[col] = row.ValueAt(i)
	}
	return out, nil
}

type tailDelegate struct {
	printer *eventPrinter
}

func (d *tailDelegate) WillChangeRecords() {}

func (d *tailDelegate) DidChangeRecord(rec map[string]any, event controller.Event) {
	d.printer.Print(rec, event)
}

func (d *tailDelegate) DidChangeRecords() {}

func runTail(ctx context.Context, out io.Writer, in io.Reader, opts *RootOptions, dbPath string, watches []WatchDef) error {
	logLevel := slog.LevelWarn
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	st, err := store.Open(dbPath, store.WithLogger(logger))
	if err != nil {
		return err
	}
	defer st.Close()

	consumer := controller.NewSerialQueue()
	defer consumer.Close()

	var controllers []*controller.Controller[map[string]any]
	for _, w := range watches {
		copts := []controller.Option[map[string]any]{
			controller.WithLogger[map[string]any](logger),
		}
		if w.IdentityColumn != "" {
			column := w.IdentityColumn
			copts = append(copts, controller.WithIdentity(func(a, b map[string]any) bool {
				av, okA := a[column]
				bv, okB := b[column]
				return okA && okB && record.ValueEqual(av, bv)
			}))
		}
		ctrl := controller.New(st, source.NewSQL(w.SQL, w.Args...), rowRecord, consumer, copts...)

		delegate := &tailDelegate{printer: newEventPrinter(out, opts.Format, w.Name)}
		if err := onConsumer(consumer, func() error {
			ctrl.SetDelegate(delegate)
			return ctrl.PerformFetch(ctx)
		}); err != nil {
			ctrl.Close()
			return fmt.Errorf("watch %q: %w", w.Name, err)
		}
		controllers = append(controllers, ctrl)
		defer ctrl.Close()
	}

	logger.Info("tailing", "watches", len(watches), "db", dbPath)

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		stmt := strings.TrimSpace(scanner.Text())
		if stmt == "" || strings.HasPrefix(stmt, "--") {
			continue
		}
		err := st.Write(ctx, func(tx *sql.Tx) error {
			_, err := tx.ExecContext(ctx, stmt)
			return err
		})
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			continue
		}
		for _, ctrl := range controllers {
			if err := ctrl.Flush(ctx); err != nil {
				return err
			}
		}
	}
	return scanner.Err()
}

// onConsumer runs fn on the consumer queue and waits for its result.
func onConsumer(consumer *controller.SerialQueue, fn func() error) error {
	done := make(chan error, 1)
	if !consumer.Submit(func() { done <- fn() }) {
		return fmt.Errorf("consumer queue closed")
	}
	return <-done
}
