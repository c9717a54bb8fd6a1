// Command graphctl inspects element files offline: it merges bidirectional
// edges, resolves neighbors and checks proposed connections.
package main

import "os"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
