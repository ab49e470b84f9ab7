package main

import "github.com/Mohsinsiddi/w3ledger/cmd"

func main() {
	cmd.Execute()
}
