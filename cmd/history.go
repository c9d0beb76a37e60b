package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "查看播放历史",
	Run: func(cmd *cobra.Command, args []string) {
		a := initApp()
		items := a.history.Items()
		if len(items) == 0 {
			fmt.Println("还没有播放记录。")
		}
		for _, e := range items {
			fmt.Printf("%s\t%s\t%s\n", time.UnixMilli(e.Ts).Format("2006-01-02 15:04"), e.ID, e.Title)
		}
		for _, c := range a.history.ComboItems() {
			fmt.Printf("组合 %s\t%v\t%s\n", c.ID, c.AudioIDs, c.Mode)
		}
	},
}

var historySyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "拉取服务端的组合播放历史",
	Run: func(cmd *cobra.Command, args []string) {
		a := initApp()
		if err := a.history.SyncWhiteNoiseHistory(context.Background()); err != nil {
			log.Fatalf("同步组合播放历史失败: %v", err)
		}
		fmt.Printf("组合播放历史 %d 条\n", len(a.history.ComboItems()))
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "清空本地播放历史",
	Run: func(cmd *cobra.Command, args []string) {
		a := initApp()
		a.history.Clear()
		fmt.Println("已清空。")
	},
}

func init() {
	historyCmd.AddCommand(historySyncCmd)
	historyCmd.AddCommand(historyClearCmd)
	rootCmd.AddCommand(historyCmd)
}
