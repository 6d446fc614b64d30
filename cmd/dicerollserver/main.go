/*
Dicerollserver starts a diceroll HTTP API server and begins listening for
new connections.

Usage:

	dicerollserver [flags]
	dicerollserver [flags] -l [[ADDRESS]:PORT]

Once started, the server listens for HTTP requests and responds to them
using the REST protocol documented at GET /info. By default it listens on
localhost:8080; this can be changed with the --listen/-l flag or the
DICEROLL_LISTEN_ADDRESS environment variable.

If a JWT token secret is not given, one is generated at random. As a
consequence, in this mode of operation all tokens become invalid as soon as
the server shuts down. This is suitable for testing, but a secret must be
given via config file, environment variable, or CLI flag if running in
production.

The flags are:

	-v, --version
		Print the current server and engine versions and exit.

	-c, --config PATH
		Load base configuration from the TOML file at PATH before applying
		environment variables and flags.

	-l, --listen LISTEN_ADDRESS
		Listen on the given address. Must be in BIND_ADDRESS:PORT or :PORT
		format.

	-s, --secret TOKEN_SECRET
		Use the provided secret for signing JWT tokens. If there are fewer
		than 32 bytes in the secret, it is repeated until it is. The maximum
		size is 64 bytes.

	--db DRIVER[:PARAMS]
		Use the given DB connection string. DRIVER must be one of: inmem,
		sqlite. sqlite requires the path to a data directory, e.g.
		sqlite:./data.

	--max-rolls N
	--max-ast-operations N
		Override the evaluator's default per-call ceilings.

	--init-key NAME:SECRET
		On startup, create an initial API key with the given name and secret
		if one by that name does not already exist. Intended for bootstrapping
		a fresh deployment with a key to exchange for the first bearer token.
*/
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/dekarrin/diceroll/config"
	"github.com/dekarrin/diceroll/internal/version"
	"github.com/dekarrin/diceroll/server"
	"github.com/dekarrin/diceroll/server/dao"
	"github.com/spf13/pflag"

	"github.com/dekarrin/diceroll"
)

var (
	flagVersion  = pflag.BoolP("version", "v", false, "Print the current server and engine versions and exit.")
	flagConfig   = pflag.StringP("config", "c", "", "Load base configuration from the TOML file at PATH.")
	flagListen   = pflag.StringP("listen", "l", "", "Listen on the given address.")
	flagSecret   = pflag.StringP("secret", "s", "", "Use the given secret for signing JWT tokens.")
	flagDB       = pflag.String("db", "", "Use the given DB connection string.")
	flagMaxRolls = pflag.Int("max-rolls", 0, "Override the evaluator's max-rolls ceiling.")
	flagMaxOps   = pflag.Int("max-ast-operations", 0, "Override the evaluator's max-AST-operations ceiling.")
	flagInitKey  = pflag.String("init-key", "", "Create an initial API key as NAME:SECRET if it does not already exist.")
)

func main() {
	pflag.Parse()

	if *flagVersion {
		fmt.Printf("%s (diceroll engine v%s)\n", version.Server, version.Current)
		return
	}

	if args := pflag.Args(); len(args) > 0 {
		fmt.Fprintf(os.Stderr, "Too many arguments\nDo -h for help.\n")
		os.Exit(1)
	}

	rootCfg, err := config.Load(*flagConfig)
	if err != nil {
		log.Fatalf("FATAL could not load config: %s", err.Error())
	}
	rootCfg = config.Override{
		Listen:           *flagListen,
		TokenSecret:      *flagSecret,
		DB:               *flagDB,
		MaxRolls:         *flagMaxRolls,
		MaxASTOperations: *flagMaxOps,
	}.Apply(rootCfg)
	rootCfg = rootCfg.FillDefaults()
	if err := rootCfg.Validate(); err != nil {
		log.Fatalf("FATAL invalid config: %s", err.Error())
	}

	cfg, err := server.FromRootConfig(rootCfg)
	if err != nil {
		log.Fatalf("FATAL could not build server config: %s", err.Error())
	}
	if len(cfg.TokenSecret) == 0 {
		cfg.TokenSecret, err = server.GenerateRandomSecret()
		if err != nil {
			log.Fatalf("FATAL could not generate token secret: %s", err.Error())
		}
	}

	roller := newRollerFromConfig(rootCfg)

	srv, err := server.New(cfg, roller, rootCfg.Listen)
	if err != nil {
		log.Fatalf("FATAL could not start server: %s", err.Error())
	}
	log.Printf("DEBUG Server initialized")

	if *flagInitKey != "" {
		if err := bootstrapInitKey(srv, *flagInitKey); err != nil {
			log.Fatalf("FATAL could not create initial API key: %s", err.Error())
		}
	}

	log.Printf("INFO  Starting diceroll server %s on %s...", version.Server, rootCfg.Listen)
	if err := srv.ListenForInterrupt(); err != nil {
		log.Fatalf("FATAL server exited with error: %s", err.Error())
	}
	log.Printf("INFO  Server shut down cleanly")
}

func newRollerFromConfig(rootCfg config.Config) *diceroll.Roller {
	if rootCfg.CacheCapacity > 0 {
		return diceroll.NewRollerWithCapacity(rootCfg.CacheCapacity)
	}
	return diceroll.NewRoller()
}

func bootstrapInitKey(srv *server.Server, initKey string) error {
	parts := strings.SplitN(initKey, ":", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return fmt.Errorf("--init-key must be in NAME:SECRET format")
	}

	_, err := srv.CreateAPIKey(context.Background(), parts[0], parts[1])
	if err != nil {
		if errors.Is(err, dao.ErrConstraintViolation) {
			log.Printf("INFO  API key %q already exists, skipping creation", parts[0])
			return nil
		}
		return err
	}
	log.Printf("INFO  Created initial API key %q", parts[0])
	return nil
}
