package main

import "github.com/mkjeong/leadnet/cmd"

func main() {
	cmd.Execute()
}
