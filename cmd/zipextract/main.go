package main

import (
	"fmt"
	"os"

	"github.com/ignite/value-matrix/internal/zipref"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "Usage: zipextract <file.xlsx>")
		os.Exit(1)
	}

	f, err := os.Open(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	codes, err := zipref.ReadZIPCodes(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println("ZIP Codes:")
	fmt.Println(zipref.QuotedList(codes))
}
