package main

import (
	"github.com/graphein/backend/internal/server"
	"github.com/graphein/backend/internal/util"
	"github.com/graphein/backend/pkg/logger"
	"github.com/graphein/backend/pkg/logger/console"

	_ "github.com/lib/pq"
)

func main() {
	util.LoadEnv()

	debug := util.GetEnvBool("DEBUG", false)

	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug: debug,
	})
	logger.Init(consoleLogger)

	server.Init()
}
