package main

import (
	"fmt"

	"github.com/joho/godotenv"

	"github.com/temirov/repoflat/internal/cli"
	"github.com/temirov/repoflat/internal/utils"
)

// main is the entry point for the repoflat command.
func main() {
	loggerInstance, loggerInitializationError := utils.NewApplicationLogger()
	if loggerInitializationError != nil {
		panic(fmt.Errorf(utils.LoggerInitializationFailedMessageFormat, loggerInitializationError))
	}
	defer loggerInstance.Sync()

	// A missing .env is the common case.
	_ = godotenv.Load()

	if applicationExecutionError := cli.Execute(); applicationExecutionError != nil {
		loggerInstance.Fatal(utils.ApplicationExecutionFailedMessage + ": " + applicationExecutionError.Error())
	}
}
