// Package main provides omsctl, a command line client for the OMS bridge.
//
// Every command runs one logical operation against the backend selected by
// --system-type (or OMS_SYSTEM_TYPE) and prints the normalized result.
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
