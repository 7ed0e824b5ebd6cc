package main

import (
	"fmt"
	"os"
)

// Version information
const (
	Version = "0.1.0"
	Name    = "Byzantine-Fault-Tolerance-Protocols"
)

func main() {
	fmt.Printf("%s v%s\n", Name, Version)
	fmt.Println("Simulation harness for BFT-MV-DID reconciliation and BFT-SH-DID recovery")
	fmt.Println("See cmd/bftsim for the experiment runner")
	os.Exit(0)
}
