// Command aslc compiles ASL source to three-address code.
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
