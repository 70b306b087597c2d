package main

import "github.com/frahmantamala/performance-evaluation/cmd"

func main() {
	cmd.Execute()
}
