package main

import (
	"log"
	"os"

	"github.com/BartekS5/ytetl/internal/cli"
	"github.com/BartekS5/ytetl/pkg/logger"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	logger.Init(os.Getenv("LOG_LEVEL"))

	rootCmd := cli.NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
