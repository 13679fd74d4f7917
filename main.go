package main

import "github.com/epiagent/epiagent-cli/cmd"

func main() {
	cmd.Execute()
}
