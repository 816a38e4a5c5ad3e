package main

import (
	"context"
	"os"

	"github.com/stigoleg/wakefull/internal/cli"
)

const appVersion = "1.0.0"

func main() {
	os.Exit(cli.NewApp(appVersion).Execute(context.Background(), os.Args[1:]))
}
