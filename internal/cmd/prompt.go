package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// ask prints label and returns the trimmed answer. EOF counts as an empty
// answer.
func ask(r *bufio.Reader, w io.Writer, label string) string {
	fmt.Fprint(w, label)
	input, _ := r.ReadString('\n')
	return strings.TrimSpace(input)
}

func confirm(r *bufio.Reader, w io.Writer, message string) bool {
	input := strings.ToLower(ask(r, w, message))
	return input == "y" || input == "yes"
}

// trimQuotes removes the quotes file managers add when a path is pasted.
func trimQuotes(s string) string {
	return strings.Trim(strings.TrimSpace(s), `"'`)
}
