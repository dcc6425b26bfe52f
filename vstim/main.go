// Package main is the entry of the vstim command line tool.
package main

import "github.com/sarchlab/vstim/vstim/cmd"

func main() {
	cmd.Execute()
}
