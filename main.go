package main

import "github.com/KaramelBytes/multiplot/cmd"

func main() {
	cmd.Execute()
}
