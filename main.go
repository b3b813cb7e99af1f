package main

import "github.com/gatehouse/visitor-management/cmd"

func main() {
	cmd.Execute()
}
