package main

import (
	"mlnotify/cmd"

	"github.com/joho/godotenv"
)

func main() {
	// .env is optional; real deployments configure through the environment.
	_ = godotenv.Load()

	cmd.Run()
}
