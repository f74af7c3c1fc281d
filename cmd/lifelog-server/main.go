package main

import (
	"os"

	"github.com/lifelog/lifelog-server/lifelogservice"
)

func main() {
	if err := lifelogservice.Run(); err != nil {
		os.Exit(1)
	}
}
