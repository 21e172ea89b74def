package main

import (
	"sitewatch/cmd/handlers"
)

func main() {
	handlers.Execute()
}
