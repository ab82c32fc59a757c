// Command catalog-ingest bulk-imports product feed files into PostgreSQL.
//
// Feeds are CSV files (optionally gzip-compressed) with the columns
// id,name,price_cents,category,image. Files are parsed concurrently; when the
// same product id appears in more than one feed the later file on the command
// line wins, and cross-feed collisions are reported before writing.
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	pgzip "github.com/klauspost/pgzip"
	"golang.org/x/sync/errgroup"

	"github.com/yuhlin/craftshop/internal/domain/product"
	"github.com/yuhlin/craftshop/internal/storage/postgres"
)

const (
	bloomCapacity = 1_000_000
	bloomFPR      = 0.001
	columnsPerRow = 5
)

// feed holds one parsed input file plus a bloom filter over its product ids,
// used to spot ids that show up in more than one feed.
type feed struct {
	path     string
	products []product.Product
	ids      *bloom.BloomFilter
}

func main() {
	var databaseURL string

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if flag.NArg() == 0 {
		slog.Error("at least one feed file is required: catalog-ingest [flags] feed.csv[.gz]...")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, flag.Args()); err != nil {
		slog.Error("catalog ingest failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("catalog ingest completed successfully")
}

func run(ctx context.Context, databaseURL string, paths []string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			return errors.Wrapf(err, "check file %s", p)
		}
	}

	slog.Info("parsing feeds", slog.Int("files", len(paths)))

	feeds, err := parseFeeds(ctx, paths)
	if err != nil {
		return errors.Wrap(err, "parse feeds")
	}

	reportCollisions(feeds)

	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	repo := postgres.NewProductRepository(pool)
	var written int
	for _, f := range feeds {
		for _, p := range f.products {
			if err := repo.Upsert(ctx, p); err != nil {
				return errors.Wrapf(err, "upsert product %d from %s", p.ID, f.path)
			}
			written++
		}
	}

	slog.Info("catalog written", slog.Int("products", written))
	return nil
}

// parseFeeds reads every file concurrently, keeping command-line order in the
// result so later feeds overwrite earlier ones at write time.
func parseFeeds(ctx context.Context, paths []string) ([]feed, error) {
	feeds := make([]feed, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	for i, path := range paths {
		g.Go(func() error {
			f, err := parseFeed(ctx, path)
			if err != nil {
				return errors.Wrapf(err, "parse %s", path)
			}
			feeds[i] = f

			slog.Info("feed parsed", slog.String("file", path), slog.Int("products", len(f.products)))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return feeds, nil
}

func parseFeed(ctx context.Context, path string) (feed, error) {
	out := feed{path: path, ids: bloom.NewWithEstimates(bloomCapacity, bloomFPR)}

	f, err := os.Open(path)
	if err != nil {
		return out, errors.Wrap(err, "open")
	}
	defer func() { _ = f.Close() }()

	var src io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := pgzip.NewReader(f)
		if err != nil {
			return out, errors.Wrap(err, "create gzip reader")
		}
		defer func() { _ = gz.Close() }()
		src = gz
	}

	r := csv.NewReader(src)
	r.FieldsPerRecord = columnsPerRow

	for line := 1; ; line++ {
		if err := ctx.Err(); err != nil {
			return out, err
		}

		rec, err := r.Read()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, errors.Wrapf(err, "line %d", line)
		}

		p, err := parseRow(rec)
		if err != nil {
			// A non-numeric first row is a header.
			if line == 1 {
				continue
			}
			return out, errors.Wrapf(err, "line %d", line)
		}

		out.products = append(out.products, p)
		out.ids.AddString(rec[0])
	}
}

func parseRow(rec []string) (product.Product, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(rec[0]), 10, 64)
	if err != nil || id <= 0 {
		return product.Product{}, errors.Errorf("invalid product id %q", rec[0])
	}

	cents, err := strconv.ParseInt(strings.TrimSpace(rec[2]), 10, 64)
	if err != nil || cents < 0 {
		return product.Product{}, errors.Errorf("invalid price_cents %q", rec[2])
	}

	name := strings.TrimSpace(rec[1])
	category := strings.TrimSpace(rec[3])
	if name == "" || category == "" {
		return product.Product{}, errors.New("name and category are required")
	}

	return product.Product{
		ID:         id,
		Name:       name,
		PriceCents: cents,
		Category:   category,
		Image:      strings.TrimSpace(rec[4]),
	}, nil
}

// reportCollisions logs ids that may appear in more than one feed. The bloom
// check can rarely report a false collision; writes stay correct either way
// because the last feed wins.
func reportCollisions(feeds []feed) {
	for i := range feeds {
		for j := i + 1; j < len(feeds); j++ {
			var shared int
			for _, p := range feeds[i].products {
				if feeds[j].ids.TestString(strconv.FormatInt(p.ID, 10)) {
					shared++
				}
			}
			if shared > 0 {
				slog.Warn("feeds share product ids, later file wins",
					slog.String("earlier", feeds[i].path),
					slog.String("later", feeds[j].path),
					slog.Int("shared_ids", shared),
				)
			}
		}
	}
}
