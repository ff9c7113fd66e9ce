package main

import "github.com/robalobadob/emojiquest/cmd"

func main() {
	cmd.Execute()
}
