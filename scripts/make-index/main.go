/*
	Writes index.html for a folder: make-index [folder_path] [output_file]
*/

package main

import "github.com/hoppxi/filekit/internal/cmd"

func main() {
	cmd.ExecuteStandalone("index")
}
