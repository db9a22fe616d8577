// Command hockey-report tracks a hockey team's schedule and results from
// official game reports.
package main

import "github.com/pfrederiksen/hockey-report/internal/cli"

func main() {
	cli.Execute()
}
