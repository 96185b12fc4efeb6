package main

import "github.com/aklyachkin/usrgrp/cli"

func main() {
	cli.Execute()
}
