package main

import (
	"fmt"

	"github.com/yaron8/latency-metrics/generator/bootstrap"
)

func main() {
	bootstrap, err := bootstrap.NewBootstrap()
	if err != nil {
		panic(fmt.Sprintf("Failed to create generator bootstrap: %v", err))
	}

	if err := bootstrap.StartServer(); err != nil {
		panic(err)
	}
}
