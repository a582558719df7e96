package main

import "integrity-service/cmd"

func main() {
	cmd.Execute()
}
