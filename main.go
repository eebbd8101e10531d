package main

import "github.com/StinkyLord/nix-sbom-builder/cmd"

func main() {
	cmd.Execute()
}
