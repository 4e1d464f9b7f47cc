package main

import "github.com/Aryan4717/media-mind-ai/internal/cli"

func main() {
	cli.Execute()
}
