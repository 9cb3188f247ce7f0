package main

import "github.com/jaevans/harvester-auto-backup/cmd/harvester-auto-backup/cmd"

func main() {
	cmd.Execute()
}
