package main

import "github.com/teaden/Audiophile/cmd"

func main() {
	cmd.Execute()
}
