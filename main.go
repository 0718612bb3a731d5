package main

import "github.com/Mohsinsiddi/btmtctl/cmd"

func main() {
	cmd.Execute()
}
