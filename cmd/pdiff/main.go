package main

import (
	"github.com/MeKo-Tech/pdiff/cmd/pdiff/cmd"
)

func main() {
	cmd.Execute()
}
