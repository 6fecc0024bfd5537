package main

import "github.com/sanjaykumaran16/smart-privacy-firewall/cmd"

func main() {
	cmd.Execute()
}
