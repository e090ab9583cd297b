package main

import "github.com/ArseniyBeglov/corobus/cmd"

func main() {
	cmd.Execute()
}
