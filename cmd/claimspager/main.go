// Command claimspager drives the claims pagination engine: index management,
// synthetic data seeding, paginated queries and the by-provider report.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
