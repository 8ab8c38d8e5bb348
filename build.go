//go:build ignore

/*
	builds filekit and every tool under scripts/ into bin/: go run build.go
*/

package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

func build(root, pkg, outPath string) bool {
	fmt.Printf("Building %s -> %s\n", pkg, outPath)

	cmd := exec.Command("go", "build", "-o", outPath, pkg)
	cmd.Dir = root
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Env = os.Environ()

	if err := cmd.Run(); err != nil {
		fmt.Printf("Build failed for %s : %v\n", pkg, err)
		return false
	}
	fmt.Printf("Built %s\n", outPath)
	return true
}

func buildScripts(root string) int {
	entries, err := os.ReadDir(filepath.Join(root, "scripts"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading scripts dir: %v\n", err)
		return 1
	}

	failed := 0
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		name := entry.Name()
		if _, err := os.Stat(filepath.Join(root, "scripts", name, "main.go")); err != nil {
			fmt.Printf("Skipping scripts/%s (no main.go)\n", name)
			continue
		}
		if !build(root, "./scripts/"+name, filepath.Join(root, "bin", name)) {
			failed++
		}
	}
	return failed
}

func main() {
	root, err := os.Getwd()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Couldn't get working dir:", err)
		os.Exit(1)
	}

	failed := buildScripts(root)
	if !build(root, ".", filepath.Join(root, "bin", "filekit")) {
		failed++
	}
	if failed > 0 {
		os.Exit(1)
	}
}
