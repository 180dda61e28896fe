package main

import "pkgsweep/cmd"

func main() {
	cmd.Execute()
}
