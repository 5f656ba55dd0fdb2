package main

import (
	"go.uber.org/fx"

	"github.com/smallbiznis/huddle/internal/server"
)

func main() {
	fx.New(server.Module).Run()
}
