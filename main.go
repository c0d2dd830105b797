// The main package for the itemwatch executable.
package main

import (
	"github.com/frontierlabs/itemwatch/cmd"
)

func main() {
	cmd.Execute()
}
