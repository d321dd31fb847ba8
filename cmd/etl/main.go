// Command etl runs the orders analytics pipeline: the full run, the staged
// load/clean/build flows, config validation and a cron scheduler.
//
// Configuration is resolved flag → env → config file → defaults. A .env file
// in the working directory is loaded first when present.
package main

import "os"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
