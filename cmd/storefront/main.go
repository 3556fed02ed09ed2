// Command storefront is a console client for a running storefront API.
//
//	storefront browse -search omega -sort price-low
//	storefront quote -item omega-3-fish-oil:2 -item zinc
//	storefront stats -username owner
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/angelmondragon/storefront-backend/internal/catalog"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
	"github.com/angelmondragon/storefront-backend/pkg/pricing"
	"github.com/angelmondragon/storefront-backend/pkg/storeapi"
)

type cliConfig struct {
	APIURL        string        `envconfig:"STOREFRONT_API_URL" default:"http://localhost:8080/api"`
	Timeout       time.Duration `envconfig:"STOREFRONT_API_TIMEOUT" default:"10s"`
	SessionID     string        `envconfig:"STOREFRONT_SESSION_ID"`
	AdminPassword string        `envconfig:"STOREFRONT_ADMIN_PASSWORD"`
	Pricing       config.PricingConfig
}

var errUsage = errors.New("usage: storefront <browse|categories|quote|stats> [flags]")

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logg := logger.New(logger.Options{ServiceName: "storefront-cli", Level: logger.ParseLevel("warn"), Output: os.Stderr})
	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, errUsage) || errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(os.Stderr, errUsage)
			os.Exit(2)
		}
		logg.Error(ctx, "storefront command failed", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}

	var cfg cliConfig
	if err := envconfig.Process(config.EnvPrefix, &cfg); err != nil {
		return fmt.Errorf("parsing cli config: %w", err)
	}
	policy, err := pricing.PolicyFromConfig(cfg.Pricing)
	if err != nil {
		return err
	}
	client, err := storeapi.NewClient(cfg.APIURL,
		storeapi.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
		storeapi.WithSessionID(cfg.SessionID),
	)
	if err != nil {
		return err
	}

	switch args[0] {
	case "browse":
		return runBrowse(ctx, client, args[1:], stdout)
	case "categories":
		return runCategories(ctx, client, stdout)
	case "quote":
		return runQuote(ctx, client, policy, args[1:], stdout)
	case "stats":
		return runStats(ctx, client, policy, cfg.AdminPassword, args[1:], stdout)
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, args[0])
	}
}

func runBrowse(ctx context.Context, client *storeapi.Client, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("browse", flag.ContinueOnError)
	search := fs.String("search", "", "case-insensitive text to match")
	categories := fs.String("category", "", "comma separated category ids")
	minPrice := fs.String("min", "", "minimum price")
	maxPrice := fs.String("max", "", "maximum price")
	inStock := fs.Bool("in-stock", false, "only products in stock")
	bestSellers := fs.Bool("best-sellers", false, "only best sellers")
	sortBy := fs.String("sort", "featured", "featured|price-low|price-high|rating|name|newest")
	server := fs.Bool("server", false, "filter on the server instead of locally")
	if err := fs.Parse(args); err != nil {
		return err
	}

	query := url.Values{}
	query.Set(catalog.ParamSearch, *search)
	query.Set(catalog.ParamCategoryIDs, *categories)
	query.Set(catalog.ParamMinPrice, *minPrice)
	query.Set(catalog.ParamMaxPrice, *maxPrice)
	query.Set(catalog.ParamInStockOnly, strconv.FormatBool(*inStock))
	query.Set(catalog.ParamBestSellersOnly, strconv.FormatBool(*bestSellers))
	query.Set(catalog.ParamSortBy, *sortBy)
	state := catalog.ParseFilterState(query)

	var visible []catalog.Product
	if *server {
		result, err := client.BrowseProducts(ctx, state, pagination.MaxLimit, 0)
		if err != nil {
			return err
		}
		visible = result.Products
	} else {
		all, err := fetchAllProducts(ctx, client)
		if err != nil {
			return err
		}
		visible = catalog.DeriveVisibleProducts(all, state)
	}

	tw := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tCATEGORY\tPRICE\tRATING\tSTOCK")
	for _, p := range visible {
		stock := "in stock"
		if !p.InStock {
			stock = "out"
		}
		price := pricing.Format(p.Price)
		if p.OnSale() {
			price += " (was " + pricing.Format(p.OriginalPrice.Decimal) + ")"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%.1f\t%s\n", p.Name, p.CategoryName, price, p.Rating, stock)
	}
	fmt.Fprintf(tw, "%d products\n", len(visible))
	return tw.Flush()
}

func fetchAllProducts(ctx context.Context, client *storeapi.Client) ([]catalog.Product, error) {
	var all []catalog.Product
	for skip := 0; ; skip += pagination.MaxLimit {
		page, err := client.ListProducts(ctx, storeapi.ListParams{Limit: pagination.MaxLimit, Skip: skip})
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < pagination.MaxLimit {
			return all, nil
		}
	}
}

func runCategories(ctx context.Context, client *storeapi.Client, stdout io.Writer) error {
	list, err := client.ListCategories(ctx)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tSLUG\tPRODUCTS")
	for _, c := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", c.ID, c.Name, c.Slug, c.ProductCount)
	}
	return tw.Flush()
}

// itemFlags collects repeated -item slug[:qty] values.
type itemFlags []cartItem

type cartItem struct {
	slug     string
	quantity int
}

func (f *itemFlags) String() string {
	parts := make([]string, 0, len(*f))
	for _, item := range *f {
		parts = append(parts, fmt.Sprintf("%s:%d", item.slug, item.quantity))
	}
	return strings.Join(parts, ",")
}

func (f *itemFlags) Set(value string) error {
	slug, rawQty, hasQty := strings.Cut(strings.TrimSpace(value), ":")
	if slug == "" {
		return errors.New("item slug is required")
	}
	quantity := 1
	if hasQty {
		n, err := strconv.Atoi(rawQty)
		if err != nil {
			return fmt.Errorf("item %q: invalid quantity", value)
		}
		quantity = n
	}
	*f = append(*f, cartItem{slug: slug, quantity: quantity})
	return nil
}

func runQuote(ctx context.Context, client *storeapi.Client, policy pricing.Policy, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("quote", flag.ContinueOnError)
	var items itemFlags
	fs.Var(&items, "item", "product slug with optional quantity, e.g. zinc:2 (repeatable)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if len(items) == 0 {
		return fmt.Errorf("%w: quote needs at least one -item", errUsage)
	}

	session := storeapi.NewSession(client, policy)
	for _, item := range items {
		product, err := client.GetProductBySlug(ctx, item.slug)
		if err != nil {
			return fmt.Errorf("item %s: %w", item.slug, err)
		}
		session.AddToCart(*product, item.quantity)
	}

	tw := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "ITEM\tQTY\tUNIT\tLINE\t")
	for _, line := range session.CartLines() {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t\n", line.Name, line.Quantity, pricing.Format(line.UnitPrice), pricing.Format(line.LineTotal()))
	}
	summary := session.Quote().Summary()
	fmt.Fprintf(tw, "Subtotal\t\t\t%s\t\n", summary.Subtotal)
	if summary.FreeShipping {
		fmt.Fprintln(tw, "Shipping\t\t\tFREE\t")
	} else {
		fmt.Fprintf(tw, "Shipping\t\t\t%s\t\n", summary.Shipping)
	}
	fmt.Fprintf(tw, "Tax\t\t\t%s\t\n", summary.Tax)
	fmt.Fprintf(tw, "Total\t\t\t%s\t\n", summary.Total)
	if err := tw.Flush(); err != nil {
		return err
	}
	if !summary.FreeShipping {
		fmt.Fprintf(stdout, "Add %s more for free shipping\n", summary.AmountToFreeShipping)
	}
	return nil
}

func runStats(ctx context.Context, client *storeapi.Client, policy pricing.Policy, password string, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("stats", flag.ContinueOnError)
	username := fs.String("username", "", "admin username")
	fs.StringVar(&password, "password", password, "admin password (defaults to STOREFRONT_ADMIN_PASSWORD)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	session := storeapi.NewSession(client, policy)
	if _, err := session.Login(ctx, *username, password); err != nil {
		return err
	}
	defer func() { _ = session.Logout(context.WithoutCancel(ctx)) }()

	stats, err := session.Stats(ctx)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Products\t%d\n", stats.TotalProducts)
	fmt.Fprintf(tw, "Featured products\t%d\n", stats.FeaturedProducts)
	fmt.Fprintf(tw, "Categories\t%d\n", stats.TotalCategories)
	fmt.Fprintf(tw, "Blog posts\t%d\n", stats.TotalBlogPosts)
	return tw.Flush()
}
