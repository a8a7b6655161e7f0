package main

import "github.com/safetystack/dashgen/cmd"

func main() {
	cmd.Execute()
}
