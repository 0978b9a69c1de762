package main

import "github.com/OpenTraceLab/OpenTraceDFT/cmd/dft/cmd"

func main() {
	cmd.Execute()
}
