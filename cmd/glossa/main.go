package main

import (
	"os"

	"horse.fit/glossa/internal/app"
)

func main() {
	os.Exit(app.Run(os.Args[1:]))
}
