/*
	Clips every image of a folder to a frame and strokes its outline.
*/

package main

import "github.com/hoppxi/filekit/internal/cmd"

func main() {
	cmd.ExecuteStandalone("frame")
}
