package main

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"
	"testing"
)

func TestRun_PrintsPlanets(t *testing.T) {
	var out bytes.Buffer
	err := run([]string{"-seed", "42", "-players", "Aaron, Peter", "-planets", "3"}, &out, io.Discard)
	if err != nil {
		t.Fatalf("run() error: %v", err)
	}

	text := out.String()
	for _, want := range []string{"Player planets:", "Non-player planets:", "Player 1's planet:", "Seed: 42"} {
		if !strings.Contains(text, want) {
			t.Fatalf("output missing %q:\n%s", want, text)
		}
	}
	if got := strings.Count(text, "home_player="); got != 3 {
		// two home planets plus Player 1's planet printed again
		t.Fatalf("home planet lines = %d, want 3:\n%s", got, text)
	}
}

func TestRun_PlayerOneIsFirstSeated(t *testing.T) {
	var out bytes.Buffer
	if err := run([]string{"-seed", "3", "-players", "Aaron,Peter,Lisa", "-planets", "2"}, &out, io.Discard); err != nil {
		t.Fatalf("run() error: %v", err)
	}

	lines := strings.Split(out.String(), "\n")
	var firstHome, playerOne string
	for i, line := range lines {
		switch line {
		case "Player planets:":
			firstHome = lines[i+1]
		case "Player 1's planet:":
			playerOne = lines[i+1]
		}
	}
	if firstHome == "" || playerOne != firstHome {
		t.Fatalf("Player 1's planet %q is not the first seated home %q", playerOne, firstHome)
	}
	if !strings.Contains(firstHome, "home_player=") || strings.Contains(firstHome, "-") {
		t.Fatalf("home planet should name its player: %q", firstHome)
	}
}

func TestRun_JSONIsReproducible(t *testing.T) {
	args := []string{"-seed", "7", "-players", "Aaron,Peter", "-planets", "5", "-json"}

	var first, second bytes.Buffer
	if err := run(args, &first, io.Discard); err != nil {
		t.Fatalf("run() error: %v", err)
	}
	if err := run(args, &second, io.Discard); err != nil {
		t.Fatalf("run() error: %v", err)
	}

	var a, b snapshot
	if err := json.Unmarshal(first.Bytes(), &a); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if err := json.Unmarshal(second.Bytes(), &b); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if len(a.Planets) != 7 || len(b.Planets) != 7 {
		t.Fatalf("planets = %d and %d, want 7", len(a.Planets), len(b.Planets))
	}
	for i := range a.Planets {
		if a.Planets[i].Coordinate != b.Planets[i].Coordinate || a.Planets[i].Size != b.Planets[i].Size {
			t.Fatalf("planet %d differs between runs with the same seed", i)
		}
	}
}

func TestRun_NoSpaceFails(t *testing.T) {
	err := run([]string{"-seed", "1", "-width", "30", "-height", "30", "-min-distance", "10", "-planets", "50", "-max-attempts", "50"}, io.Discard, io.Discard)
	if err == nil {
		t.Fatalf("expected an error when the tableau is full")
	}
}

func TestRun_RejectsDuplicatePlayers(t *testing.T) {
	if err := run([]string{"-players", "Aaron,Aaron"}, io.Discard, io.Discard); err == nil {
		t.Fatalf("expected duplicate player error")
	}
}
