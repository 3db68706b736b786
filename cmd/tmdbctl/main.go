// SPDX-License-Identifier: GPL-3.0-or-later

// Command tmdbctl browses the movies now playing and keeps a list of liked movies.
package main

import (
	"fmt"
	"os"
)

var version = "0.1.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
