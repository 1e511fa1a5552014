// contentpipe drives the content generation pipeline from the command
// line: one-shot runs, directory watching, and topology validation.
//
// Usage:
//
//	contentpipe [--quiet] [--log-format text|json] <command> [flags]
//
// Commands:
//
//	run       Run the pipeline once against a product input
//	watch     Watch a directory and run the pipeline on product files
//	validate  Validate a pipeline topology file
package main

import "os"

// version is set via ldflags at build time.
var version = "dev"

func main() {
	if err := Execute(version); err != nil {
		os.Exit(1)
	}
}
