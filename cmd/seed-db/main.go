// Command seed-db loads the catalog and reference data from a JSON seed file
// into PostgreSQL. Rows are inserted idempotently, so re-running the seed is
// safe.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/mybooks/storefront/internal/repository"
)

type seedFile struct {
	Users         []userJSON         `json:"users"`
	Books         []bookJSON         `json:"books"`
	DeliveryRules []deliveryRuleJSON `json:"delivery_rules"`
	ReturnRules   []returnRuleJSON   `json:"return_rules"`
	Wraps         []wrapJSON         `json:"wraps"`
	UserCoupons   []couponJSON       `json:"user_coupons"`
}

type userJSON struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
	IsAdmin     bool   `json:"is_admin"`
}

type bookJSON struct {
	Name          string            `json:"name"`
	ISBN          string            `json:"isbn"`
	PublisherName string            `json:"publisher_name"`
	Description   string            `json:"description"`
	OriginalCost  decimal.Decimal   `json:"original_cost"`
	SaleCost      decimal.Decimal   `json:"sale_cost"`
	Stock         int               `json:"stock"`
	Status        string            `json:"status"`
	Images        map[string]string `json:"images"`
}

type deliveryRuleJSON struct {
	Name         string          `json:"name"`
	CompanyName  string          `json:"company_name"`
	Cost         decimal.Decimal `json:"cost"`
	FreeOverCost decimal.Decimal `json:"free_over_cost"`
	Available    bool            `json:"available"`
}

type returnRuleJSON struct {
	Name        string          `json:"name"`
	TermDays    int             `json:"term_days"`
	DeliveryFee decimal.Decimal `json:"delivery_fee"`
	Available   bool            `json:"available"`
}

type wrapJSON struct {
	Name      string          `json:"name"`
	Cost      decimal.Decimal `json:"cost"`
	Available bool            `json:"available"`
}

type couponJSON struct {
	UserEmail    string          `json:"user_email"`
	Name         string          `json:"name"`
	OrderMin     decimal.Decimal `json:"order_min"`
	DiscountCost decimal.Decimal `json:"discount_cost"`
	DiscountRate int             `json:"discount_rate"`
	MaxDiscount  decimal.Decimal `json:"max_discount"`
	IsRate       bool            `json:"is_rate"`
}

func main() {
	var (
		databaseURL string
		seedPath    string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&seedPath, "seed-file", "db/seed/catalog.json", "path to catalog seed JSON file")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, seedPath); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, seedPath string) error {
	slog.Info("reading seed file", slog.String("path", seedPath))

	data, err := os.ReadFile(seedPath)
	if err != nil {
		return errors.Wrap(err, "read seed file")
	}

	var seed seedFile
	if err := json.Unmarshal(data, &seed); err != nil {
		return errors.Wrap(err, "parse seed JSON")
	}

	slog.Info("connecting to database")

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if err := seedUsers(ctx, pool, seed.Users); err != nil {
		return errors.Wrap(err, "seed users")
	}
	if err := seedBooks(ctx, pool, seed.Books); err != nil {
		return errors.Wrap(err, "seed books")
	}
	if err := seedRefdata(ctx, pool, seed); err != nil {
		return errors.Wrap(err, "seed reference data")
	}
	if err := seedCoupons(ctx, pool, seed.UserCoupons); err != nil {
		return errors.Wrap(err, "seed coupons")
	}

	return nil
}

func seedUsers(ctx context.Context, pool *pgxpool.Pool, users []userJSON) error {
	for _, u := range users {
		_, err := pool.Exec(ctx,
			`INSERT INTO users (name, email, phone_number, is_admin)
			 VALUES ($1, $2, $3, $4) ON CONFLICT (email) DO NOTHING`,
			u.Name, u.Email, u.PhoneNumber, u.IsAdmin,
		)
		if err != nil {
			return errors.Wrapf(err, "insert user %s", u.Email)
		}
	}
	slog.Info("seeded users", slog.Int("count", len(users)))
	return nil
}

func seedBooks(ctx context.Context, pool *pgxpool.Pool, books []bookJSON) error {
	for _, b := range books {
		status := b.Status
		if status == "" {
			status = "on_sale"
		}

		var bookID int64
		err := pool.QueryRow(ctx,
			`INSERT INTO books (name, isbn, publisher_name, description, original_cost, sale_cost, stock, status)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			 ON CONFLICT (isbn) DO UPDATE SET stock = EXCLUDED.stock
			 RETURNING id`,
			b.Name, b.ISBN, b.PublisherName, b.Description,
			b.OriginalCost, b.SaleCost, b.Stock, status,
		).Scan(&bookID)
		if err != nil {
			return errors.Wrapf(err, "insert book %s", b.ISBN)
		}

		for kind, path := range b.Images {
			_, err := pool.Exec(ctx,
				`INSERT INTO book_images (book_id, kind, path)
				 VALUES ($1, $2, $3)
				 ON CONFLICT (book_id, kind) DO UPDATE SET path = EXCLUDED.path`,
				bookID, kind, path,
			)
			if err != nil {
				return errors.Wrapf(err, "insert %s image for book %s", kind, b.ISBN)
			}
		}
	}
	slog.Info("seeded books", slog.Int("count", len(books)))
	return nil
}

func seedRefdata(ctx context.Context, pool *pgxpool.Pool, seed seedFile) error {
	for _, dr := range seed.DeliveryRules {
		_, err := pool.Exec(ctx,
			`INSERT INTO delivery_rules (name, company_name, cost, free_over_cost, available)
			 VALUES ($1, $2, $3, $4, $5)`,
			dr.Name, dr.CompanyName, dr.Cost, dr.FreeOverCost, dr.Available,
		)
		if err != nil {
			return errors.Wrapf(err, "insert delivery rule %s", dr.Name)
		}
	}
	for _, rr := range seed.ReturnRules {
		_, err := pool.Exec(ctx,
			`INSERT INTO return_rules (name, term_days, delivery_fee, available)
			 VALUES ($1, $2, $3, $4) ON CONFLICT (name) DO NOTHING`,
			rr.Name, rr.TermDays, rr.DeliveryFee, rr.Available,
		)
		if err != nil {
			return errors.Wrapf(err, "insert return rule %s", rr.Name)
		}
	}
	for _, w := range seed.Wraps {
		_, err := pool.Exec(ctx,
			`INSERT INTO wraps (name, cost, available) VALUES ($1, $2, $3)`,
			w.Name, w.Cost, w.Available,
		)
		if err != nil {
			return errors.Wrapf(err, "insert wrap %s", w.Name)
		}
	}
	slog.Info("seeded reference data",
		slog.Int("delivery_rules", len(seed.DeliveryRules)),
		slog.Int("return_rules", len(seed.ReturnRules)),
		slog.Int("wraps", len(seed.Wraps)),
	)
	return nil
}

func seedCoupons(ctx context.Context, pool *pgxpool.Pool, coupons []couponJSON) error {
	for _, c := range coupons {
		_, err := pool.Exec(ctx,
			`INSERT INTO user_coupons (user_id, name, order_min, discount_cost, discount_rate, max_discount, is_rate)
			 SELECT id, $2, $3, $4, $5, $6, $7 FROM users WHERE email = $1`,
			c.UserEmail, c.Name, c.OrderMin, c.DiscountCost,
			c.DiscountRate, c.MaxDiscount, c.IsRate,
		)
		if err != nil {
			return errors.Wrapf(err, "insert coupon %s for %s", c.Name, c.UserEmail)
		}
	}
	slog.Info("seeded coupons", slog.Int("count", len(coupons)))
	return nil
}
