// eeformula is a command line electrical engineering formula evaluator.
package main

import (
	"os"

	"github.com/njchilds90/eeformula/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
