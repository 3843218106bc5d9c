// ethlight is the command line host of the Ethereum light client. Every
// command opens the configured header database, dispatches one call into the
// light client and exits.
package main

import (
	"os"
)

func main() {
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
