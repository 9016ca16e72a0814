package main

import (
	"log"

	"github.com/zintix-labs/slicelab/sdk/perf"
)

// makefile runner
func main() {
	bindVar()
	mode, err := perf.ParseMode(cfg.pprofmode)
	if err != nil {
		log.Fatal(err)
	}
	if err := perf.Run(perf.DefaultDir, mode, executeSampler); err != nil {
		log.Fatal(err)
	}
}
