package main

import (
	"os"

	"github.com/manifestlab/puppetmill/internal/cli"
)

func main() {
	os.Exit(int(cli.Run()))
}
