// Package main is the entry point for the t2s CLI binary.
package main

import (
	"os"

	cli "t2s/pkg/cli"

	_ "github.com/duckdb/duckdb-go/v2"
	_ "github.com/mattn/go-sqlite3"
)

func main() {
	os.Exit(cli.Execute())
}
