package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Clark-Hu/store-ratings/internal/apiclient"
	"github.com/Clark-Hu/store-ratings/internal/config"
	"github.com/Clark-Hu/store-ratings/internal/dashboard"
	"github.com/Clark-Hu/store-ratings/internal/domain"
	"github.com/Clark-Hu/store-ratings/internal/query"
	"github.com/Clark-Hu/store-ratings/internal/session"
)

type options struct {
	envFile  string
	api      string
	email    string
	password string
	register bool
	name     string
	address  string
	role     string
	params   query.Params
	store    string
	stars    int
	comment  string
	timeout  time.Duration
}

// parseFlags reads the command line. The API url and password fall back to
// API_URL and DASHBOARD_PASSWORD so the password need not appear in argv.
func parseFlags(args []string) (options, error) {
	var (
		opts   options
		order  string
		filter string
	)
	fs := flag.NewFlagSet("dashboard", flag.ContinueOnError)
	fs.StringVar(&opts.envFile, "env", ".env", "optional dotenv file")
	fs.StringVar(&opts.api, "api", "", "API base url (default $API_URL or http://localhost:8080)")
	fs.StringVar(&opts.email, "email", "", "login email")
	fs.StringVar(&opts.password, "password", "", "login password (default $DASHBOARD_PASSWORD)")
	fs.BoolVar(&opts.register, "register", false, "create the account before signing in")
	fs.StringVar(&opts.name, "name", "", "full name for -register")
	fs.StringVar(&opts.address, "address", "", "address for -register")
	fs.StringVar(&opts.role, "role", string(domain.RoleUser), "role for -register: user, store_owner or admin")
	fs.StringVar(&opts.params.Search, "search", "", "search text")
	fs.StringVar(&opts.params.SortField, "sort", "name", "sort field")
	fs.StringVar(&order, "order", "asc", "sort order: asc or desc")
	fs.StringVar(&filter, "filter", "all", "rating bucket: all, positive, neutral, negative")
	fs.StringVar(&opts.store, "store", "", "store id to select or rate")
	fs.IntVar(&opts.stars, "stars", 0, "stars to submit for -store (user accounts)")
	fs.StringVar(&opts.comment, "comment", "", "comment to submit for -store (user accounts)")
	fs.DurationVar(&opts.timeout, "timeout", 10*time.Second, "per-request timeout")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	if err := config.LoadDotEnv(opts.envFile); err != nil {
		return options{}, err
	}
	if opts.api == "" {
		opts.api = envOr("API_URL", "http://localhost:8080")
	}
	if opts.password == "" {
		opts.password = os.Getenv("DASHBOARD_PASSWORD")
	}
	if opts.email == "" {
		return options{}, errors.New("email required (use -email)")
	}
	if opts.stars != 0 && !domain.ValidStars(opts.stars) {
		return options{}, fmt.Errorf("-stars must be between %d and %d", domain.MinStars, domain.MaxStars)
	}
	opts.params.Order = query.ParseOrder(order)
	opts.params.Bucket = domain.ParseBucket(filter)
	return opts, nil
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		log.Fatalf("flags: %v", err)
	}

	logger := log.New(os.Stderr, "[store-ratings] ", log.LstdFlags|log.Lshortfile)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts, os.Stdout, logger); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options, out io.Writer, logger *log.Logger) error {
	client, err := apiclient.New(opts.api, opts.timeout, logger)
	if err != nil {
		return err
	}

	id, err := signIn(ctx, client, opts)
	if err != nil {
		return err
	}
	sess := session.New()
	if err := sess.Login(id); err != nil {
		return err
	}
	defer func() {
		if err := client.Logout(context.Background()); err != nil {
			logger.Printf("logout: %v", err)
		}
		_ = sess.Logout()
	}()

	kind, err := sess.Dashboard()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Signed in as %s <%s> (%s)\n\n", id.Name, id.Email, kind)

	switch kind {
	case session.AdminDashboard:
		a, err := dashboard.NewAdmin(client, sess, logger)
		if err != nil {
			return err
		}
		a.SetStoreQuery(opts.params)
		err = a.SetUserQuery(ctx, opts.params)
		renderAdmin(out, a.View())
		return noticeErr(a.Notice(), err)

	case session.OwnerDashboard:
		o, err := dashboard.NewOwner(client, sess, logger)
		if err != nil {
			return err
		}
		if err := o.Refresh(ctx); err != nil {
			return noticeErr(o.Notice(), err)
		}
		if opts.store != "" {
			if err := o.SelectStore(ctx, opts.store); err != nil {
				return noticeErr(o.Notice(), err)
			}
		}
		o.SetQuery(opts.params)
		renderOwner(out, o.View())
		return nil

	case session.UserDashboard:
		u, err := dashboard.NewUser(client, sess, logger)
		if err != nil {
			return err
		}
		if err := u.SetQuery(ctx, opts.params); err != nil {
			return noticeErr(u.Notice(), err)
		}
		if opts.store != "" && (opts.stars != 0 || opts.comment != "") {
			if err := compose(ctx, u, opts); err != nil {
				renderUser(out, u.View())
				return noticeErr(u.Notice(), err)
			}
		}
		renderUser(out, u.View())
		renderNotice(out, u.Notice())
		return nil

	default:
		return fmt.Errorf("no dashboard for %s", kind)
	}
}

func signIn(ctx context.Context, client *apiclient.Client, opts options) (domain.Identity, error) {
	if !opts.register {
		id, err := client.Login(ctx, domain.Credentials{Email: opts.email, Password: opts.password})
		if err != nil {
			return domain.Identity{}, fmt.Errorf("login failed: %w", err)
		}
		return id, nil
	}
	id, err := client.Register(ctx, domain.NewUser{
		Name:     opts.name,
		Email:    opts.email,
		Address:  opts.address,
		Role:     domain.Role(opts.role),
		Password: opts.password,
	})
	if err != nil {
		return domain.Identity{}, fmt.Errorf("registration failed: %w", err)
	}
	return id, nil
}

func compose(ctx context.Context, u *dashboard.User, opts options) error {
	if opts.stars != 0 {
		if err := u.SelectStars(opts.store, opts.stars); err != nil {
			return err
		}
	}
	if opts.comment != "" {
		if err := u.EditComment(opts.store, opts.comment); err != nil {
			return err
		}
	}
	return u.Submit(ctx, opts.store)
}

// noticeErr prefers the dashboard's user-facing message over the raw error.
func noticeErr(n dashboard.Notice, err error) error {
	if err == nil {
		return nil
	}
	if n.Kind == dashboard.NoticeError && n.Message != "" {
		return errors.New(n.Message)
	}
	return err
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
