package main

import (
	"fmt"

	"github.com/yaron8/latency-metrics/aggregator/bootstrap"
)

func main() {
	bootstrap, err := bootstrap.NewBootstrap()
	if err != nil {
		panic(fmt.Sprintf("Failed to create aggregator bootstrap: %v", err))
	}

	if err := bootstrap.Start(); err != nil {
		panic(fmt.Sprintf("Aggregator server failed: %v", err))
	}
}
