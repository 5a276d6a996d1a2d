package main

import (
	"github.com/gdmirror/gdmirror/internal/cli"
)

func main() {
	_ = cli.Execute()
}
