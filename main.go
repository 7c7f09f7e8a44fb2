// Command aslc (root entry point, mirroring the teacher's layout of a
// thin root main.go delegating to the real driver in internal/driver,
// which cmd/aslc also uses).
package main

import (
	"fmt"
	"os"

	"aslc/internal/driver"
)

func main() {
	if err := driver.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
