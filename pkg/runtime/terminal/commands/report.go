package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/de-tools/maritime-atlas/pkg/exporters"
	"github.com/de-tools/maritime-atlas/pkg/models/store"
	"github.com/de-tools/maritime-atlas/pkg/runtime/terminal/export"
	"github.com/de-tools/maritime-atlas/pkg/services/filter"
	"github.com/de-tools/maritime-atlas/pkg/services/report"
	"github.com/de-tools/maritime-atlas/pkg/store/artifacts"
	"github.com/de-tools/maritime-atlas/pkg/store/duckdb/exports"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

const DefaultTimeout = 120 * time.Second

// Session is the report pipeline a command runs against.
type Session struct {
	Assembler report.Assembler
	Sink      artifacts.Sink
	History   exports.Store
	Logger    zerolog.Logger
	Close     func() error
}

// Loader builds a session from the configuration file at configPath.
type Loader func(ctx context.Context, configPath string) (*Session, error)

type ReportCmd struct {
	configPath string
	timeout    time.Duration
	params     filter.Params
	limit      int
	load       Loader
	reporter   *export.Reporter
	document   *exporters.Document
}

func NewReportCmd(load Loader, reporter *export.Reporter) *cobra.Command {
	rc := &ReportCmd{
		load:     load,
		reporter: reporter,
		document: exporters.NewDocument(),
	}
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Aggregate maritime reports for a time window",
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&rc.configPath, "config", "c", "", "Path to the YAML configuration file")
	flags.DurationVar(&rc.timeout, "timeout", DefaultTimeout, "Time limit for building the report")
	flags.StringVar(&rc.params.Date, "date", "", "Exact day (YYYY-MM-DD)")
	flags.StringVar(&rc.params.QuarterYear, "quarter-year", "", "Year of the quarter filter")
	flags.StringVar(&rc.params.Quarter, "quarter", "", "Quarter (1-4)")
	flags.StringVar(&rc.params.MonthYear, "month-year", "", "Year of the month filter")
	flags.StringVar(&rc.params.Month, "month", "", "Month (1-12)")

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the report tables",
		Args:  cobra.NoArgs,
		RunE:  rc.show,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "export",
		Short: "Render the report charts and store the HTML document",
		Args:  cobra.NoArgs,
		RunE:  rc.export,
	})
	history := &cobra.Command{
		Use:   "history",
		Short: "List the most recent exports",
		Args:  cobra.NoArgs,
		RunE:  rc.history,
	}
	history.Flags().IntVar(&rc.limit, "limit", exports.DefaultLimit, "Number of exports to list")
	cmd.AddCommand(history)

	return cmd
}

func (rc *ReportCmd) session(cmd *cobra.Command) (context.Context, context.CancelFunc, *Session, error) {
	ctx, cancel := context.WithTimeout(cmd.Context(), rc.timeout)
	session, err := rc.load(ctx, rc.configPath)
	if err != nil {
		cancel()
		return nil, nil, nil, fmt.Errorf("failed to load report pipeline: %w", err)
	}
	return session.Logger.WithContext(ctx), cancel, session, nil
}

func (rc *ReportCmd) show(cmd *cobra.Command, _ []string) error {
	ctx, cancel, session, err := rc.session(cmd)
	if err != nil {
		return err
	}
	defer cancel()
	defer closeSession(ctx, session)

	dataset, err := session.Assembler.Live(ctx, rc.params)
	if err != nil {
		return fmt.Errorf("failed to build report: %w", err)
	}
	return rc.reporter.Handle(dataset)
}

func (rc *ReportCmd) export(cmd *cobra.Command, _ []string) error {
	ctx, cancel, session, err := rc.session(cmd)
	if err != nil {
		return err
	}
	defer cancel()
	defer closeSession(ctx, session)

	if session.Sink == nil {
		return fmt.Errorf("no export sink configured")
	}

	dataset, err := session.Assembler.Export(ctx, rc.params)
	if err != nil {
		return err
	}

	doc, err := rc.document.Bytes(dataset)
	if err != nil {
		return err
	}

	location, err := session.Sink.Put(ctx, exporters.FileName(dataset.Summary), exporters.DocumentContentType, doc)
	if err != nil {
		return fmt.Errorf("failed to store report: %w", err)
	}

	if session.History != nil {
		err := session.History.Add(ctx, store.ExportRecord{
			Fingerprint: rc.params.Fingerprint(),
			Summary:     dataset.Summary,
			FileName:    exporters.FileName(dataset.Summary),
			Location:    location,
			Charts:      len(dataset.Rendered),
			ExportedAt:  time.Now(),
		})
		if err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Msg("export not recorded in history")
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Report %q exported to %s\n", dataset.Summary, location)
	return nil
}

func (rc *ReportCmd) history(cmd *cobra.Command, _ []string) error {
	ctx, cancel, session, err := rc.session(cmd)
	if err != nil {
		return err
	}
	defer cancel()
	defer closeSession(ctx, session)

	if session.History == nil {
		return fmt.Errorf("export history is not available")
	}

	records, err := session.History.List(ctx, rc.limit)
	if err != nil {
		return fmt.Errorf("failed to list exports: %w", err)
	}
	if len(records) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No exports found")
		return nil
	}
	for _, r := range records {
		fmt.Fprintf(cmd.OutOrStdout(), "%s  %-32s %s\n",
			r.ExportedAt.Format("2006-01-02 15:04:05"), r.Summary, r.Location)
	}
	return nil
}

func closeSession(ctx context.Context, session *Session) {
	if session.Close == nil {
		return
	}
	if err := session.Close(); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("failed to close report pipeline")
	}
}
