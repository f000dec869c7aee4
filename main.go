package main

import (
	"log"
	"os"
	"os/signal"

	"github.com/sami-dca/sami-core/sami"
)

func main() {
	configFile := ""
	if len(os.Args) > 1 {
		configFile = os.Args[1]
	}

	node, err := sami.NewNode(configFile)
	if err != nil {
		log.Fatalf("failed to create node: %v \n", err)
	}
	node.Start()

	terminate := make(chan os.Signal, 1)
	signal.Notify(terminate, os.Interrupt)
	// wait for the SIGINT signal (Ctrl+C)
	log.Println("Press Ctrl+C to stop sami-core")
	<-terminate

	node.Stop()
}
