package main

import "cpperf/internal/cli"

func main() {
	cli.Execute()
}
