package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/justestif/guess-the-song/internal/artists"
	"github.com/justestif/guess-the-song/internal/auth"
	"github.com/justestif/guess-the-song/internal/config"
	"github.com/justestif/guess-the-song/internal/logging"
	"github.com/justestif/guess-the-song/internal/spotify"
	"github.com/justestif/guess-the-song/internal/tracks"
	"github.com/justestif/guess-the-song/internal/web"
)

// ErrMissingArgument is returned when a command is run without its argument.
var ErrMissingArgument = errors.New("missing argument")

// Runner holds the output streams for CLI commands and provides a method per command action.
type Runner struct {
	output io.Writer
	logOut io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Output io.Writer
	LogOut io.Writer
}

// NewRunner creates a new Runner writing results to Output and logs to LogOut.
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.LogOut == nil {
		opts.LogOut = os.Stderr
	}
	return &Runner{output: opts.Output, logOut: opts.LogOut}
}

// deps is the set of collaborators built from configuration.
type deps struct {
	config     *config.Config
	logger     *log.Logger
	searcher   *artists.Service
	aggregator *tracks.Aggregator
	selector   *tracks.Selector
}

// build loads configuration and wires the collaborators shared by every command.
func (r *Runner) build(cmd *cli.Command) (*deps, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return nil, err
	}
	if lvl := cmd.String("log-level"); lvl != "" {
		cfg.Log.Level = lvl
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := logging.New(r.logOut, cfg.Log.Level)
	if err != nil {
		return nil, err
	}

	sc := cfg.Spotify
	provider, err := auth.New(sc.ClientID, sc.ClientSecret,
		auth.WithTokenURL(sc.TokenURL),
		auth.WithHTTPClient(&http.Client{Timeout: sc.RequestTimeout.Duration}),
		auth.WithCaching(sc.CacheToken),
	)
	if err != nil {
		return nil, err
	}

	catalog := spotify.NewCatalog(provider,
		spotify.WithBaseURL(sc.APIURL),
		spotify.WithMarket(sc.Market),
		spotify.WithTimeout(sc.RequestTimeout.Duration),
		spotify.WithRateLimit(sc.RateLimit, sc.RateBurst),
	)

	return &deps{
		config:   cfg,
		logger:   logger,
		searcher: artists.NewService(catalog),
		aggregator: tracks.NewAggregator(catalog,
			tracks.WithLogger(logger),
			tracks.WithAlbumSample(sc.AlbumSample),
			tracks.WithAlbumLimit(sc.AlbumLimit),
			tracks.WithAlbumTrackLimit(sc.AlbumTrackLimit),
			tracks.WithSearchLimit(sc.SearchLimit),
		),
		selector: tracks.NewSelector(),
	}, nil
}

// Serve runs the HTTP server until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	a, err := r.build(cmd)
	if err != nil {
		return err
	}

	addr := a.config.Server.Addr
	if v := cmd.String("addr"); v != "" {
		addr = v
	}

	server, err := web.NewServer(web.ServerConfig{
		Addr:            addr,
		Logger:          a.logger,
		Searcher:        a.searcher,
		Aggregator:      a.aggregator,
		Selector:        a.selector,
		AllowedOrigins:  a.config.Server.AllowedOrigins,
		ShutdownTimeout: a.config.Server.ShutdownTimeout.Duration,
	})
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	return server.Run(ctx)
}

// Search prints the artist candidates for one query.
func (r *Runner) Search(ctx context.Context, cmd *cli.Command) error {
	query := cmd.StringArg("query")
	if query == "" {
		return fmt.Errorf("%w: query", ErrMissingArgument)
	}

	a, err := r.build(cmd)
	if err != nil {
		return err
	}

	candidates, err := a.searcher.Search(ctx, query)
	if err != nil {
		return fmt.Errorf("searching artists: %w", err)
	}
	return r.writeJSON(candidates)
}

// Pick prints one random track for an artist.
func (r *Runner) Pick(ctx context.Context, cmd *cli.Command) error {
	artist := cmd.StringArg("artist")
	if artist == "" {
		return fmt.Errorf("%w: artist", ErrMissingArgument)
	}

	a, err := r.build(cmd)
	if err != nil {
		return err
	}

	pool, err := a.aggregator.Aggregate(ctx, artist, cmd.String("id"))
	if err != nil {
		return err
	}

	result, err := a.selector.Select(pool, artist)
	if err != nil {
		return err
	}
	return r.writeJSON(result)
}

func (r *Runner) writeJSON(v any) error {
	enc := json.NewEncoder(r.output)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}
