package cmd

import (
	"fmt"
	"log"

	"SleepFM/config"
	"SleepFM/storage"

	"github.com/spf13/cobra"
)

var redisCmd = &cobra.Command{
	Use:   "redis",
	Short: "Redis连接测试",
	Long:  `测试Redis状态后端是否可用，并做一次基本读写。`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("开始测试Redis连接...")

		cfg := config.Load()
		fmt.Printf("Redis配置: %s:%s, DB: %d\n", cfg.RedisHost, cfg.RedisPort, cfg.RedisDB)

		rs, err := storage.NewRedisStore(cfg, 0)
		if err != nil {
			log.Fatalf("无法连接到Redis: %v", err)
		}
		fmt.Println("Redis连接成功！")

		if err := rs.SelfTest(); err != nil {
			log.Fatalf("Redis读写测试失败: %v", err)
		}
		fmt.Println("Redis基本操作测试成功！")

		if err := rs.Close(); err != nil {
			log.Printf("关闭Redis连接时发生错误: %v", err)
		}
		fmt.Println("Redis测试完成，连接已关闭。")
	},
}

func init() {
	rootCmd.AddCommand(redisCmd)
}
