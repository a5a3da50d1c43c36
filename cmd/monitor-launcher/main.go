package main

import "github.com/oshokin/monitor-bootstrap/cmd/monitor-launcher/cmd"

func main() {
	cmd.Execute()
}
