package etl

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"dataflow/internal/config"
	"dataflow/internal/datasource/file"
	"dataflow/internal/datasource/httpds"
	"dataflow/internal/metrics"
	csvparser "dataflow/internal/parser/csv"
	"dataflow/internal/report"
	"dataflow/internal/storage/csvfile"
	"dataflow/internal/storage/parquet"
	"dataflow/internal/table"
)

// Output file names under data/processed and reports/.
const (
	OrdersFile      = "orders.parquet"
	OrdersCleanFile = "orders_clean.parquet"
	UsersFile       = "users.parquet"
	AnalyticsFile   = "analytics_table.parquet"
	MissingnessFile = "missingness_orders.csv"
	RunMetaFile     = "_run_meta.json"
)

// Inputs are the raw tables as read from CSV, every column text.
type Inputs struct {
	Orders table.Table
	Users  table.Table
}

// LoadInputs reads the orders and users CSVs named by p.Inputs from
// paths.Raw. Both files are read concurrently. An input given as an http(s)
// URL is downloaded into paths.Cache first.
func LoadInputs(ctx context.Context, p config.Pipeline, paths config.Paths) (Inputs, error) {
	var in Inputs
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		in.Orders, err = readInput(ctx, p.Parser, paths, p.Inputs.Orders)
		return err
	})
	g.Go(func() (err error) {
		in.Users, err = readInput(ctx, p.Parser, paths, p.Inputs.Users)
		return err
	})
	if err := g.Wait(); err != nil {
		return Inputs{}, err
	}
	metrics.RecordRows(p.Job, "orders_in", int64(in.Orders.NumRows()))
	metrics.RecordRows(p.Job, "users_in", int64(in.Users.NumRows()))
	return in, nil
}

var httpClient = httpds.NewClient(httpds.Config{MaxRetries: 3})

func readInput(ctx context.Context, p config.Parser, paths config.Paths, name string) (table.Table, error) {
	if !httpds.IsURL(name) {
		return readCSV(ctx, p, rawPath(paths, name))
	}
	path, err := fetch(ctx, paths, name)
	if err != nil {
		return table.Table{}, err
	}
	return readCSV(ctx, p, path)
}

// fetch downloads url into paths.Cache and returns the cached file path.
// The cached copy is replaced on every run.
func fetch(ctx context.Context, paths config.Paths, url string) (string, error) {
	path := filepath.Join(paths.Cache, httpds.CacheName(url))
	err := file.NewLocal(path).Write(ctx, func(w io.Writer) error {
		rc, err := httpds.NewSource(httpClient, url).Open(ctx)
		if err != nil {
			return err
		}
		defer rc.Close()
		_, err = io.Copy(w, rc)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", url, err)
	}
	return path, nil
}

func rawPath(paths config.Paths, name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(paths.Raw, name)
}

func parserOptions(p config.Parser) csvparser.Options {
	var opt csvparser.Options
	if r, _ := utf8.DecodeRuneInString(p.Comma); r != utf8.RuneError {
		opt.Comma = r
	}
	if len(p.NullTokens) > 0 {
		opt.NullTokens = p.NullTokens
	}
	return opt
}

func readCSV(ctx context.Context, p config.Parser, path string) (table.Table, error) {
	rc, err := file.NewLocal(path).Open(ctx)
	if err != nil {
		return table.Table{}, err
	}
	defer rc.Close()

	t, err := csvparser.NewParser(parserOptions(p)).Parse(rc)
	if err != nil {
		return table.Table{}, fmt.Errorf("read %s: %w", path, err)
	}
	return t, nil
}

func readParquet(ctx context.Context, path string) (table.Table, error) {
	t, err := parquet.ReadSource(ctx, file.NewLocal(path))
	if err != nil {
		return table.Table{}, fmt.Errorf("read %s: %w", path, err)
	}
	return t, nil
}

func writeParquet(ctx context.Context, t table.Table, path string) error {
	if err := parquet.WriteSink(ctx, t, file.NewLocal(path)); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func writeMissingness(ctx context.Context, orders table.Table, paths config.Paths) error {
	path := filepath.Join(paths.Reports, MissingnessFile)
	if err := csvfile.WriteSink(ctx, report.Missingness(orders), file.NewLocal(path)); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// LoadOutputs writes users, orders_clean and analytics_table as parquet to
// paths.Processed and the missingness report of the schema-enforced orders to
// paths.Reports. Each file is replaced only once it is written in full.
func LoadOutputs(ctx context.Context, out Outputs, paths config.Paths) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return writeParquet(ctx, out.Users, filepath.Join(paths.Processed, UsersFile))
	})
	g.Go(func() error {
		return writeParquet(ctx, out.OrdersClean, filepath.Join(paths.Processed, OrdersCleanFile))
	})
	g.Go(func() error {
		return writeParquet(ctx, out.Analytics, filepath.Join(paths.Processed, AnalyticsFile))
	})
	g.Go(func() error {
		return writeMissingness(ctx, out.Orders, paths)
	})
	return g.Wait()
}

// WriteRunMeta summarises analytics into the run metadata record and writes
// it to paths.Processed as JSON.
func WriteRunMeta(ctx context.Context, paths config.Paths, analytics table.Table, timeCol string) (report.RunMeta, error) {
	meta, err := report.NewRunMeta(analytics, timeCol, "country", nowFn())
	if err != nil {
		return report.RunMeta{}, err
	}
	path := filepath.Join(paths.Processed, RunMetaFile)
	if err := file.NewLocal(path).Write(ctx, func(w io.Writer) error { return meta.Encode(w) }); err != nil {
		return report.RunMeta{}, fmt.Errorf("write %s: %w", path, err)
	}
	return meta, nil
}
