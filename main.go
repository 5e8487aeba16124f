package main

import (
	"github.com/mj1618/atspi-inspector/cmd"
	_ "github.com/mj1618/atspi-inspector/internal/platform/atspi"
)

func main() {
	cmd.Execute()
}
