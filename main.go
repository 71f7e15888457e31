package main

import "github.com/tasknexus/tasknexus-feishu/cmd"

func main() {
	cmd.Execute()
}
