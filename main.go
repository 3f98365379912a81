package main

import "github.com/KaramelBytes/solarlens/cmd"

func main() {
	cmd.Execute()
}
