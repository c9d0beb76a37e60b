package main

import (
	"SleepFM/cmd"
)

func main() {
	cmd.Execute()
}
