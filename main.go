package main

import "joarchive/cmd"

func main() {
	cmd.Execute()
}
