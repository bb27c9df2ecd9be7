package main

import "calunga-catalog/internal/cli"

func main() {
	cli.Execute()
}
