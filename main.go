package main

import (
	"github.com/kozaktomas/faceledger/cmd"
)

func main() {
	cmd.Execute()
}
