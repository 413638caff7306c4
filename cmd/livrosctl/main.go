// Command livrosctl runs maintenance tasks against the livros database:
// migrations, publisher accounts, the import worker and XML imports from files.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
