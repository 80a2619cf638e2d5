package main

import "account-audit/cmd"

func main() {
	cmd.Execute()
}
