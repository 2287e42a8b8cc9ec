package main

import "github.com/custodia-labs/kb-core/internal/adapters/driving/cli"

func main() {
	cli.Execute()
}
