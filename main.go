// Package main is the entry point for the poimetrics CLI tool, which turns
// battle-royale breadcrumb telemetry into per-POI landing and death metrics.
package main

import "github.com/pable/go-poi-metrics/cmd"

func main() {
	cmd.Execute()
}
