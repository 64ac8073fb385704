package main

import (
	"github.com/sirupsen/logrus"

	"ideabox/internal/app"
)

func main() {
	if err := app.Run(); err != nil {
		logrus.Fatalf("Application failed: %v", err)
	}
}
