/*
Copyright © 2025 tieubaoca
*/
package main

import (
	"log"

	"github.com/joho/godotenv"

	"github.com/tieubaoca/rag-be/cmd"
)

func main() {
	// A .env file is a local convenience; deployments set real env vars.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}
	cmd.Execute()
}
