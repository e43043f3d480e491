package main

import "github.com/iformai/iform/internal/cmd"

func main() {
	cmd.Execute()
}
