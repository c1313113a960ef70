// Command tableau generates a board offline and prints its planets.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"planets-tableau/internal/planet"
	"planets-tableau/internal/player"
	"planets-tableau/internal/shared/random"
	"planets-tableau/internal/spatial"
)

type options struct {
	width       int
	height      int
	planets     int
	minDistance int
	players     string
	seed        int64
	maxAttempts int
	json        bool
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options

	fs := flag.NewFlagSet("tableau", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.IntVar(&opts.width, "width", 150, "tableau width")
	fs.IntVar(&opts.height, "height", 150, "tableau height")
	fs.IntVar(&opts.planets, "planets", 10, "number of neutral planets")
	fs.IntVar(&opts.minDistance, "min-distance", 10, "minimum distance between planets")
	fs.StringVar(&opts.players, "players", "Aaron,Peter", "comma separated player names")
	fs.Int64Var(&opts.seed, "seed", 0, "random seed, 0 picks one")
	fs.IntVar(&opts.maxAttempts, "max-attempts", planet.DefaultMaxAttempts, "placement attempts per planet")
	fs.BoolVar(&opts.json, "json", false, "print a JSON snapshot")

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	return opts, nil
}

type snapshot struct {
	Seed    int64            `json:"seed"`
	Width   int              `json:"width"`
	Height  int              `json:"height"`
	Players []*player.Player `json:"players"`
	Planets []*planet.Planet `json:"planets"`
}

func run(args []string, stdout, stderr io.Writer) error {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	seed := opts.seed
	if seed == 0 {
		if seed, err = random.NewSeed(); err != nil {
			return err
		}
	}

	var names []string
	for _, name := range strings.Split(opts.players, ",") {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}

	players, err := player.NewPlayers(names)
	if err != nil {
		return err
	}

	tableau, err := spatial.NewTableau(spatial.NewCoordinate(opts.width, opts.height))
	if err != nil {
		return err
	}

	gen := planet.NewGenerator(seed, planet.WithMaxAttempts(opts.maxAttempts))
	planets, err := planet.NewPlanets(tableau, players, opts.planets, opts.minDistance, gen)
	if err != nil {
		return err
	}

	if opts.json {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(snapshot{
			Seed:    seed,
			Width:   opts.width,
			Height:  opts.height,
			Players: planets.Players(),
			Planets: planets.All(),
		})
	}

	fmt.Fprintln(stdout, "Player planets:")
	for _, p := range planets.HomePlanets() {
		fmt.Fprintln(stdout, p)
	}

	fmt.Fprintln(stdout, "Non-player planets:")
	for _, p := range planets.NeutralPlanets() {
		fmt.Fprintln(stdout, p)
	}

	if seated := planets.Players(); len(seated) > 0 && seated[0].HasHomePlanet() {
		home, err := planets.Find(*seated[0].HomePlanetID)
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, "Player 1's planet:")
		fmt.Fprintln(stdout, home)
	}

	fmt.Fprintf(stdout, "Seed: %d\n", seed)
	return nil
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		slog.Error("Failed to generate tableau", "error", err)
		os.Exit(1)
	}
}
