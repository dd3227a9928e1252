package main

import "github.com/behnamazizi/localnet-bookmarks/cmd"

func main() {
	cmd.Execute()
}
