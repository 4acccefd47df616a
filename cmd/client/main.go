package main

import (
	"github.com/upreis/reistooq-core-sub019/cmd/client/cmd"
)

func main() {
	cmd.Execute()
}
