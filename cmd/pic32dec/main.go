package main

import "github.com/OpenTraceLab/OpenTraceICSP/cmd/pic32dec/cmd"

func main() {
	cmd.Execute()
}
