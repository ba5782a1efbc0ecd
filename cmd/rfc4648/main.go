package main

import (
	"os"

	"github.com/josephcopenhaver/rfc4648/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
