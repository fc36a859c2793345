package main

import (
	"github.com/RyanBlaney/sonido-align/cmd"
)

func main() {
	cmd.Execute()
}
