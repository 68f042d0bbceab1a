package main

import "github.com/peoplekit/hrcore/cmd"

func main() {
	cmd.Execute()
}
