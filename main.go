package main

import "github.com/hoppxi/filekit/internal/cmd"

func main() {
	cmd.Execute()
}
