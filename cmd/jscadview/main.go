// Command jscadview shows a JSCAD geometry payload in an interactive orbit viewport, either in
// a GPU window or inside the terminal.
package main

import (
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
