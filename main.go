package main

import "github.com/localhive/localhive/cmd"

func main() {
	cmd.Execute()
}
