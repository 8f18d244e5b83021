package main

import (
	"labelfind/internal/bootstrap"
)

func main() {
	bootstrap.NewApp().Run()
}
