package main

import (
	"github.com/adlytic/meta-ads-mcp/cmd"
)

func main() {
	cmd.Execute()
}
