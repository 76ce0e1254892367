package main

import (
	"github.com/dormire/storefront/cmd"
)

func main() {
	cmd.Start()
}
