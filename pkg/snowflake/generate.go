package snowflake

import (
	"errors"
	"fmt"
	"sync"

	"github.com/bwmarrin/snowflake"
)

var (
	node *snowflake.Node
	once sync.Once

	errInvalidMachineID   = errors.New("invalid snowflake machine id")
	errInvalidDataCenter  = errors.New("invalid snowflake datacenter id")
	errGeneratorUninitial = errors.New("snowflake generator is not initialized")
)

// Init datacenterID 和 machineID 都是 0~31，拼成 10 位节点号
func Init(machineID, dataCenterID int64) error {
	var initErr error

	once.Do(func() {
		if machineID < 0 || machineID > 31 {
			initErr = errInvalidMachineID
			return
		}
		if dataCenterID < 0 || dataCenterID > 31 {
			initErr = errInvalidDataCenter
			return
		}

		var err error
		node, err = snowflake.NewNode((dataCenterID << 5) | machineID)
		if err != nil {
			initErr = err
		}
	})

	return initErr
}

func NextID() (int64, error) {
	if node == nil {
		return 0, errGeneratorUninitial
	}

	return node.Generate().Int64(), nil
}

// NextMessageID 形如 streak_reset_1790000000000000000 的消息 ID
func NextMessageID(kind string) (string, error) {
	id, err := NextID()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s_%d", kind, id), nil
}
