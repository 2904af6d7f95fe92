package main

import "rawurls/cmd"

func main() {
	cmd.Execute()
}
