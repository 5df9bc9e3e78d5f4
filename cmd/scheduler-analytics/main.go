package main

import "github.com/obscura-observatory/scheduler-analytics/internal/cli"

func main() {
	cli.Execute()
}
