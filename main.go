package main

import "github.com/fvmtools/gofvm/cmd"

func main() {
	cmd.Execute()
}
