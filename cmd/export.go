package main

import (
	"bufio"
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/geocopy/internal/config"
	"github.com/sells-group/geocopy/internal/db"
	"github.com/sells-group/geocopy/internal/derive"
	"github.com/sells-group/geocopy/internal/export"
	"github.com/sells-group/geocopy/internal/geo"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write a COPY script for a GeoJSON or shapefile input",
	Long: `Streams features from --input (GeoJSON FeatureCollection, a JSON array of
features, or a .shp shapefile), derives one row per feature with the named
derivation, and writes the load script to stdout or --output.

If the export fails the script is left without its terminator and COMMIT and
must not be executed.`,
	Example: `  geocopy export --input zika_risk.json > zika.sql
  geocopy export --input zika_risk.shp --table miami_blocks --geometry-column geom -o zika.sql`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		applyExportFlags(cmd, &cfg.Export)
		if err := cfg.Validate("export"); err != nil {
			return err
		}

		_, err := runExport(ctx, cfg.Export, cmd.OutOrStdout())
		return err
	},
}

func init() {
	exportCmd.Flags().String("table", "", "target table name (default: from config)")
	exportCmd.Flags().StringP("input", "i", "", "input .json/.geojson or .shp file")
	exportCmd.Flags().StringP("output", "o", "", "script file to write (default: stdout)")
	exportCmd.Flags().String("derivation", "", "named derivation (see `geocopy derivations`)")
	exportCmd.Flags().String("columns", "", "YAML file overriding the derivation's column list")
	exportCmd.Flags().String("geometry-column", "", "also load the feature geometry into this column")
	exportCmd.Flags().String("dbf-encoding", "", "charset of shapefile attributes (default: utf-8)")
	exportCmd.Flags().Int("progress-every", 0, "log progress every N rows (default: from config)")
	rootCmd.AddCommand(exportCmd)
}

// applyExportFlags copies explicitly set flags over the loaded config.
func applyExportFlags(cmd *cobra.Command, ec *config.ExportConfig) {
	flags := cmd.Flags()
	str := func(name string, dst *string) {
		if flags.Changed(name) {
			*dst, _ = flags.GetString(name)
		}
	}
	str("table", &ec.Table)
	str("input", &ec.Input)
	str("output", &ec.Output)
	str("derivation", &ec.Derivation)
	str("columns", &ec.ColumnsFile)
	str("geometry-column", &ec.GeometryColumn)
	str("dbf-encoding", &ec.DBFEncoding)
	if flags.Changed("progress-every") {
		ec.ProgressEvery, _ = flags.GetInt("progress-every")
	}
}

// buildSession resolves the derivation, schema and table for ec. The input
// is not opened.
func buildSession(ec config.ExportConfig) (*export.Session, error) {
	t, err := derive.Lookup(ec.Derivation)
	if err != nil {
		return nil, err
	}

	schema := t.Schema
	if ec.ColumnsFile != "" {
		schema, err = config.LoadColumns(ec.ColumnsFile)
		if err != nil {
			return nil, err
		}
	}

	d := t.Derivation
	if ec.GeometryColumn != "" {
		schema = schema.With(derive.GeometryColumn(ec.GeometryColumn))
		d = derive.WithGeometry(d, ec.GeometryColumn)
	}

	table := ec.Table
	if table == "" {
		table = t.Table
	}

	// Fail before touching the input or output.
	if _, err := db.Preamble(table, schema); err != nil {
		return nil, err
	}

	return &export.Session{
		Table:         table,
		Schema:        schema,
		Derivation:    d,
		ProgressEvery: ec.ProgressEvery,
	}, nil
}

// runExport performs one export. The script goes to ec.Output when set and
// to stdout otherwise; whatever was emitted is flushed even when the run
// aborts.
func runExport(ctx context.Context, ec config.ExportConfig, stdout io.Writer) (res export.Result, err error) {
	log := zap.L().With(zap.String("command", "export"))

	sess, err := buildSession(ec)
	if err != nil {
		return res, err
	}

	src, err := geo.Open(ec.Input, geo.Options{DBFEncoding: ec.DBFEncoding})
	if err != nil {
		return res, &export.IOError{Op: "read", Err: err}
	}
	defer func() {
		if cerr := src.Close(); cerr != nil {
			log.Warn("close input", zap.String("input", ec.Input), zap.Error(cerr))
		}
	}()
	sess.Features = src.Features()

	out := stdout
	if ec.Output != "" {
		f, cerr := os.Create(ec.Output)
		if cerr != nil {
			return res, &export.IOError{Op: "write", Err: eris.Wrapf(cerr, "create %s", ec.Output)}
		}
		defer func() {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = &export.IOError{Op: "write", Err: cerr}
			}
		}()
		out = f
	}

	bw := bufio.NewWriterSize(out, 64*1024)

	log.Info("starting export",
		zap.String("input", ec.Input),
		zap.String("output", outputName(ec.Output)),
		zap.String("table", sess.Table),
		zap.String("derivation", ec.Derivation),
		zap.Strings("columns", sess.Schema.Names()),
	)

	res, runErr := sess.Run(ctx, bw)
	flushErr := bw.Flush()
	if runErr != nil {
		return res, runErr
	}
	if flushErr != nil {
		return res, &export.IOError{Op: "write", Err: flushErr}
	}
	return res, nil
}

func outputName(path string) string {
	if path == "" {
		return "stdout"
	}
	return path
}
