package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexflint/go-arg"
	"github.com/docker/go-units"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/dataplane-io/lazyfile/internal/blockcache"
	"github.com/dataplane-io/lazyfile/internal/config"
	"github.com/dataplane-io/lazyfile/internal/eager"
	"github.com/dataplane-io/lazyfile/internal/handlers"
	"github.com/dataplane-io/lazyfile/internal/importer"
	"github.com/dataplane-io/lazyfile/internal/remote"
	"github.com/dataplane-io/lazyfile/internal/store"
)

func main() {
	args := &Arguments{}
	arg.MustParse(args)

	ll, err := zerolog.ParseLevel(args.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid log level: %s\n", args.LogLevel)
		os.Exit(1)
	}

	zerolog.SetGlobalLevel(ll)
	zerolog.TimeFieldFormat = time.RFC3339Nano

	l := zerolog.New(os.Stderr).With().Timestamp().Str("version", version).Logger()
	ctx := l.WithContext(context.Background())

	err = run(ctx, args)
	if err != nil {
		l.Error().Err(err).Msg("command error")
		os.Exit(1)
	}
}

func run(ctx context.Context, args *Arguments) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	switch {
	case args.Version:
		zerolog.Ctx(ctx).Info().Msg("version") // version field is already added to the logger
		return nil
	case args.Import != nil:
		return importCommand(ctx, args.Config, args.Import)
	case args.Serve != nil:
		return serveCommand(ctx, args.Config, args.Serve)
	case args.Fetch != nil:
		return fetchCommand(ctx, args.Config, args.Fetch)
	default:
		return fmt.Errorf("unknown subcommand")
	}
}

// clientOptions translates the config into origin client options.
func clientOptions(cfg *config.Config) (remote.Options, error) {
	timeout, err := cfg.Timeout()
	if err != nil {
		return remote.Options{}, err
	}

	opts := remote.Options{Timeout: timeout}

	dial, err := cfg.DialTimeout()
	if err != nil {
		return remote.Options{}, err
	}
	if dial > 0 {
		opts.Transport = &http.Transport{
			DialContext: (&net.Dialer{Timeout: dial}).DialContext,
		}
	}

	return opts, nil
}

// setup builds the client, store and importer shared by the commands.
func setup(ctx context.Context, configPath string, progress bool) (*config.Config, *store.Store, *importer.Importer, error) {
	l := zerolog.Ctx(ctx)

	cfg := config.Default()
	if configPath != "" {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return nil, nil, nil, err
		}
	}

	opts, err := clientOptions(cfg)
	if err != nil {
		return nil, nil, nil, err
	}

	var cache *blockcache.Cache
	if size, err := cfg.CacheBytes(); err != nil {
		return nil, nil, nil, err
	} else if size > 0 {
		cache, err = blockcache.New(size, *l)
		if err != nil {
			return nil, nil, nil, err
		}
	}

	client := remote.NewClient(opts, *l)
	st := store.New(client, store.Options{ChunkSize: cfg.HTTP.ChunkSize, Cache: cache}, *l)
	downloader := eager.New(eager.Options{Progress: progress}, *l)
	imp := importer.New(client, downloader, st, cfg.LazyLoadEnabled, *l)

	return cfg, st, imp, nil
}

func importCommand(ctx context.Context, configPath string, cmd *ImportCmd) error {
	_, _, imp, err := setup(ctx, configPath, true)
	if err != nil {
		return err
	}

	res := importConcurrently(ctx, imp, cmd.Urls, cmd.Concurrency)

	for i := range res.Files {
		fmt.Printf("%s\t%s\n", res.Files[i], res.Keys[i])
	}
	for _, f := range res.Failed {
		fmt.Fprintf(os.Stderr, "failed: %s\n", f)
	}

	if len(res.Failed) > 0 {
		return fmt.Errorf("%d of %d imports failed", len(res.Failed), len(cmd.Urls))
	}
	return nil
}

// importConcurrently runs imports with bounded concurrency. Outcomes
// are collected per slot and folded in input order so the result lists
// stay positionally aligned.
func importConcurrently(ctx context.Context, imp *importer.Importer, urls []string, concurrency int) importer.Result {
	if concurrency < 1 {
		concurrency = 1
	}

	outcomes := make([]importer.Outcome, len(urls))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, u := range urls {
		i, u := i, u
		g.Go(func() error {
			outcomes[i] = imp.Import(gctx, u)
			return nil
		})
	}
	// Workers never return errors; failures are outcome records.
	_ = g.Wait()

	var res importer.Result
	for _, o := range outcomes {
		res.Add(o)
	}
	return res
}

func serveCommand(ctx context.Context, configPath string, cmd *ServeCmd) error {
	l := zerolog.Ctx(ctx)

	_, st, imp, err := setup(ctx, configPath, false)
	if err != nil {
		return err
	}

	if len(cmd.Urls) > 0 {
		res := imp.ImportAll(ctx, cmd.Urls)
		for _, f := range res.Failed {
			l.Warn().Str("url", f).Msg("import failed")
		}
		l.Info().Int("imported", len(res.Files)).Int("failed", len(res.Failed)).Msg("startup imports done")
	}

	handler, err := handlers.Handler(ctx, st)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:    cmd.Addr,
		Handler: handler,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		l.Info().Str("addr", cmd.Addr).Msg("server start")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func fetchCommand(ctx context.Context, configPath string, cmd *FetchCmd) error {
	l := zerolog.Ctx(ctx)

	cfg := config.Default()
	if configPath != "" {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
	}
	opts, err := clientOptions(cfg)
	if err != nil {
		return err
	}

	client := remote.NewClient(opts, *l)

	buf := make([]byte, cmd.Length)
	s := time.Now()
	if err := client.Fetch(ctx, remote.ChunkRequest{Locator: cmd.Url, Offset: cmd.Offset, Length: cmd.Length}, buf); err != nil {
		return err
	}
	l.Info().Str("size", units.HumanSize(float64(cmd.Length))).Dur("duration", time.Since(s)).Msg("chunk fetched")

	if cmd.Out == "" {
		_, err := os.Stdout.Write(buf)
		return err
	}
	return afero.WriteFile(afero.NewOsFs(), cmd.Out, buf, 0644)
}
