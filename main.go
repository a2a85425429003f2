package main

import "github.com/lotas/tabdedupe/internal/cmd"

func main() {
	cmd.Execute()
}
