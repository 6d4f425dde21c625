// Command guess-the-song serves the backend of a guess-the-song game: artist
// autocomplete and random track picks drawn from the Spotify catalog.
package main

import (
	"context"
	"fmt"
	"os"
)

func main() {
	cmd := newApp(NewRunner(RunnerOpts{}))
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
