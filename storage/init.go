package storage

import (
	"StreakKeeper/config"
	"StreakKeeper/storage/database"
	"StreakKeeper/storage/mq"
	"StreakKeeper/storage/redis"
)

// 统一 init storage 层，按配置跳过未启用的组件

func Init() error {
	if config.Cfg.StoreDriver == "postgres" {
		if err := database.Init(); err != nil {
			return err
		}
	}

	if config.Cfg.RedisEnabled {
		if err := redis.Init(); err != nil {
			return err
		}
	}

	if config.Cfg.RabbitMQEnabled {
		if err := mq.Init(); err != nil {
			return err
		}
	}

	return nil
}
