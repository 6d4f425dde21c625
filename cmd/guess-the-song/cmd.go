package main

import "github.com/urfave/cli/v3"

// newApp builds the root command. Without a subcommand it serves HTTP.
func newApp(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "guess-the-song",
		Usage:  "Backend for the guess-the-song game",
		Flags:  globalFlags(),
		Action: r.Serve,
		Commands: []*cli.Command{
			serveCommand(r),
			searchCommand(r),
			pickCommand(r),
		},
	}
}

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to configuration file (defaults are built in)",
			Sources: cli.EnvVars("GUESS_CONFIG"),
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "Log level: debug, info, warn or error",
		},
	}
}

// serveCommand runs the HTTP server
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Usage: "Listen address, overrides the config file",
			},
		},
		Action: r.Serve,
	}
}

// searchCommand runs one artist search
func searchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Search artists by partial name and print the candidates as JSON",
		ArgsUsage: "<query>",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "query",
			},
		},
		Action: r.Search,
	}
}

// pickCommand picks one random track for an artist
func pickCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "pick",
		Usage:     "Pick a random track for an artist and print it as JSON",
		ArgsUsage: "<artist>",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "artist",
			},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "id",
				Usage: "Catalog artist id; without it the pick falls back to a name search",
			},
		},
		Action: r.Pick,
	}
}
