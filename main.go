package main

import (
	"github.com/moveline/leadgate/cmd"
)

func main() {
	cmd.Execute()
}
