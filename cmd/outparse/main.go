// Command outparse extracts structured data from LLM responses on the
// command line: sections, code fences, list and mapping literals, tagged
// payloads, whole documents against a schema, and code review verdicts.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
