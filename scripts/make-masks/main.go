/*
	Writes the fixed mask and outline PNGs next to the binary.
*/

package main

import "github.com/hoppxi/filekit/internal/cmd"

func main() {
	cmd.ExecuteStandalone("masks")
}
