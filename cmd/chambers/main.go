// chambers tracks the live session state of the U.S. House and Senate.
package main

import (
	"os"

	"github.com/chrisgilldc/chambers/internal/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
