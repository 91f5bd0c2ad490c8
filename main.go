package main

import "github.com/frahmantamala/store-management/cmd"

func main() {
	cmd.Execute()
}
