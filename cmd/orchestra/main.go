// Command orchestra runs the startup interview server and terminal client.
package main

import "github.com/PXLTCH/startup-ai/internal/cli"

func main() {
	cli.Execute()
}
