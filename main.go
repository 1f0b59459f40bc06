package main

import "github.com/OMUAPPS/omuchat-python/cmd"

func main() {
	cmd.Execute()
}
