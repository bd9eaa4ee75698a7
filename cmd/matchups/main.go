// Command matchups ranks archetypes by matchup winrate and serves the
// dashboard API.
package main

import (
	"os"

	"github.com/ramonehamilton/matchups/cmd/matchups/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
