// Command seed-db loads a product catalog (JSON or gzipped JSON) into the
// database, creates the matching stock records, and registers an admin API
// key. It is idempotent: reruns upsert instead of duplicating.
package main

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"flag"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/google/uuid"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/storefront/internal/storage/postgres"
)

const (
	upsertProductSQL = `INSERT INTO products (id, name, description, price, image_url, category)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name, description = EXCLUDED.description,
			price = EXCLUDED.price, image_url = EXCLUDED.image_url,
			category = EXCLUDED.category`

	upsertStockSQL = `INSERT INTO inventory (product_id, quantity) VALUES ($1, $2)
		ON CONFLICT (product_id) DO UPDATE SET quantity = EXCLUDED.quantity`

	upsertAPIKeySQL = `INSERT INTO api_keys (id, name, key_hash) VALUES ($1, $2, $3)
		ON CONFLICT (key_hash) DO NOTHING`

	insertWorkers = 4
)

type seedProduct struct {
	ID          string
	Name        string
	Description string
	Price       decimal.Decimal
	ImageURL    string
	Category    string
	Stock       int
}

func main() {
	var (
		databaseURL string
		catalogFile string
		apiKey      string
		pepper      string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&catalogFile, "catalog-file", "db/seed/catalog.json", "path to catalog JSON file (.json or .json.gz)")
	flag.StringVar(&apiKey, "api-key", "", "admin API key to seed (or SHOP_SEED_API_KEY env)")
	flag.StringVar(&pepper, "api-key-pepper", "", "HMAC pepper for API key hashing (or SHOP_API_KEY_PEPPER env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if apiKey == "" {
		apiKey = os.Getenv("SHOP_SEED_API_KEY")
	}
	if pepper == "" {
		pepper = os.Getenv("SHOP_API_KEY_PEPPER")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, catalogFile, apiKey, pepper); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, catalogFile, apiKey, pepper string) error {
	slog.Info("connecting to database")

	store, err := postgres.NewStore(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "create store")
	}
	defer store.Close()

	if err := store.Migrate(ctx); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	products, err := readCatalog(catalogFile)
	if err != nil {
		return errors.Wrap(err, "read catalog")
	}
	slog.Info("catalog loaded", slog.Int("products", len(products)))

	pool := store.Pool()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(insertWorkers)
	for _, p := range products {
		g.Go(func() error {
			if _, err := pool.Exec(gctx, upsertProductSQL,
				p.ID, p.Name, p.Description, p.Price, p.ImageURL, p.Category,
			); err != nil {
				return errors.Wrapf(err, "upsert product %s", p.ID)
			}
			if _, err := pool.Exec(gctx, upsertStockSQL, p.ID, p.Stock); err != nil {
				return errors.Wrapf(err, "upsert stock %s", p.ID)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if apiKey != "" {
		mac := hmac.New(sha256.New, []byte(pepper))
		mac.Write([]byte(apiKey))
		hash := hex.EncodeToString(mac.Sum(nil))

		if _, err := pool.Exec(ctx, upsertAPIKeySQL, uuid.New().String(), "seed", hash); err != nil {
			return errors.Wrap(err, "upsert api key")
		}
		slog.Info("admin api key seeded")
	}

	return nil
}

// readCatalog parses a JSON array of products, transparently decompressing
// .gz files.
func readCatalog(path string) ([]seedProduct, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		zr, err := pgzip.NewReader(f)
		if err != nil {
			return nil, errors.Wrap(err, "open gzip reader")
		}
		defer zr.Close()
		r = zr
	}

	var products []seedProduct
	d := jx.Decode(r, 64*1024)
	err = d.Arr(func(d *jx.Decoder) error {
		var p seedProduct
		if err := d.Obj(func(d *jx.Decoder, key string) error {
			switch key {
			case "id":
				v, err := d.Str()
				p.ID = v
				return err
			case "name":
				v, err := d.Str()
				p.Name = v
				return err
			case "description":
				v, err := d.Str()
				p.Description = v
				return err
			case "price":
				n, err := d.Num()
				if err != nil {
					return err
				}
				dec, err := decimal.NewFromString(n.String())
				p.Price = dec
				return err
			case "imageUrl":
				v, err := d.Str()
				p.ImageURL = v
				return err
			case "category":
				v, err := d.Str()
				p.Category = v
				return err
			case "stock":
				v, err := d.Int()
				p.Stock = v
				return err
			default:
				return d.Skip()
			}
		}); err != nil {
			return err
		}
		if p.ID == "" {
			p.ID = uuid.New().String()
		}
		products = append(products, p)
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "decode catalog")
	}
	return products, nil
}
