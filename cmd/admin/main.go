package main

import "github.com/yigit/unicampus/internal/cli"

func main() {
	cli.Execute()
}
