package main

import "github.com/naka-gawa/fork-auditor/cmd"

func main() {
	cmd.Execute()
}
