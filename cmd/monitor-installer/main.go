package main

import "github.com/oshokin/monitor-bootstrap/cmd/monitor-installer/cmd"

func main() {
	cmd.Execute()
}
