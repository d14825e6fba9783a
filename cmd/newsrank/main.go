// Command newsrank ranks related news from a JSON corpus file.
package main

import (
	"fmt"
	"os"

	"github.com/kailas-cloud/newsrec/internal/cli"
)

func main() {
	if err := cli.Execute(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
