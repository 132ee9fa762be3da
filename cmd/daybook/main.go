package main

import "github.com/nhle/daybook/cmd/daybook/root"

func main() {
	root.Execute()
}
