// pulse-call invokes one tool through the execution gateway and prints
// the resolved call record. Useful for poking at a platform deployment
// without a display surface attached.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/solstice-sh/pulse/internal/config"
	"github.com/solstice-sh/pulse/internal/learning"
	"github.com/solstice-sh/pulse/internal/persist"
	"github.com/solstice-sh/pulse/internal/state"
	"github.com/solstice-sh/pulse/internal/tools"
)

func main() {
	var (
		configPath = flag.String("config", "config.toml", "Path to config file")
		server     = flag.String("server", "", "Tool server id (e.g. gemini)")
		tool       = flag.String("tool", "", "Tool name (e.g. web_search)")
		paramsJSON = flag.String("params", "{}", "Tool parameters as JSON")
	)
	flag.Parse()

	// Console logging only; this is an interactive tool.
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if *server == "" || *tool == "" {
		fmt.Fprintln(os.Stderr, "usage: pulse-call -server <id> -tool <name> [-params <json>]")
		os.Exit(2)
	}

	var params map[string]interface{}
	if err := json.Unmarshal([]byte(*paramsJSON), &params); err != nil {
		log.Fatal().Err(err).Msg("Invalid -params JSON")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	local, err := persist.New()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open local cache")
	}
	defer local.Close()

	var remote *persist.Remote
	if cfg.Learn.RemoteURL != "" {
		remote = persist.NewRemote(cfg.Learn.RemoteURL)
	}
	sidecar := persist.NewSidecar(local, remote)

	store := state.New()
	defer store.Close()
	tracker := learning.NewTracker(store, sidecar)

	// Restore the call history so this invocation lands on top of it.
	if ls, history, ok := sidecar.Bootstrap(context.Background()); ok {
		tracker.Seed(ls, history)
	}

	executor := tools.NewExecutor(cfg.Gateway.URL, tracker)
	record, err := executor.Execute(context.Background(), *server, *tool, params)
	if err != nil {
		log.Fatal().Err(err).Msg("Could not build the request")
	}

	out, _ := json.MarshalIndent(record, "", "  ")
	fmt.Println(string(out))

	sidecar.Wait()
	if record.Status == state.CallPending {
		os.Exit(1)
	}
}
