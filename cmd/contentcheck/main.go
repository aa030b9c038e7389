// Package main provides the content validation tool. It runs the same
// loaders the harness uses against a content tree and reports what it
// finds, exiting non-zero when anything fails to load.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cinderpeak/ironwatch/internal/game/ruleset"
	"github.com/cinderpeak/ironwatch/internal/game/world"
	"github.com/cinderpeak/ironwatch/internal/scripting"
)

func main() {
	contentDir := flag.String("content", "content", "path to content root (archetypes/ and attacks/)")
	levelsDir := flag.String("levels", "", "path to level files (default <content>/levels)")
	scriptsDir := flag.String("scripts", "", "path to cue hook scripts; empty = skip")
	flag.Parse()

	if *levelsDir == "" {
		*levelsDir = filepath.Join(*contentDir, "levels")
	}

	start := time.Now()
	failed := false

	registry, err := ruleset.LoadDir(*contentDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "tables: %v\n", err)
		failed = true
	} else {
		fmt.Printf("tables: %d archetypes, %d attack variants\n",
			len(registry.ArchetypeIDs()), len(registry.VariantIDs()))
	}

	catalog, err := world.LoadCatalog(*levelsDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "levels: %v\n", err)
		failed = true
	} else {
		fmt.Printf("levels: %d (%s)\n", catalog.Count(), strings.Join(catalog.IDs(), ", "))
		if registry != nil {
			if err := catalog.ValidateSpawns(registry.Known); err != nil {
				fmt.Fprintf(os.Stderr, "spawns: %v\n", err)
				failed = true
			} else {
				fmt.Println("spawns: all archetypes resolve")
			}
		}
	}

	if *scriptsDir != "" {
		mgr := scripting.NewManager(nil, 0)
		if err := mgr.LoadDir(*scriptsDir); err != nil {
			fmt.Fprintf(os.Stderr, "scripts: %v\n", err)
			failed = true
		} else {
			fmt.Printf("scripts: loaded from %s\n", *scriptsDir)
		}
		mgr.Close()
	}

	if failed {
		os.Exit(1)
	}
	fmt.Printf("content ok in %s\n", time.Since(start).Round(time.Millisecond))
}
