package main

import (
	"StreakKeeper/internal/repository"
	"StreakKeeper/pkg/logger"
)

func main() {
	logger.Init()
	defer logger.Sync()

	repository.RunGenerate()
}
