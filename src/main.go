package main

import "CitibikeDashboard/src/cli"

func main() {
	cli.Execute()
}
