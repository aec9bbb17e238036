package main

import "github.com/restore-pt/clinibot/cmd"

func main() {
	cmd.Execute()
}
