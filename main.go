package main

import (
	_ "github.com/joho/godotenv/autoload"

	"github.com/Tiliavir/trivial-water-tracker/cmd"
)

func main() {
	cmd.Execute()
}
