/*
	Interactive PDF text replacement.
*/

package main

import "github.com/hoppxi/filekit/internal/cmd"

func main() {
	cmd.ExecuteStandalone("pdf-replace")
}
