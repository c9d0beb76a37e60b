package cmd

import (
	"context"
	"fmt"
	"log"
	"strconv"

	"SleepFM/model"

	"github.com/spf13/cobra"
)

var favoritesCmd = &cobra.Command{
	Use:   "favorites",
	Short: "管理音频收藏",
	Run: func(cmd *cobra.Command, args []string) {
		a := initApp()
		items := a.favorites.Items()
		if len(items) == 0 {
			fmt.Println("还没有收藏。")
			return
		}
		for _, e := range items {
			fmt.Printf("%d\t%s\t%s\n", e.ID, e.Title, e.Author)
		}
		for _, c := range a.favorites.Combos() {
			fmt.Printf("组合 %s\t%s\t%v\n", c.ID, c.Name, c.AudioIDs)
		}
	},
}

var favoritesAddCmd = &cobra.Command{
	Use:   "add <audioId> [title]",
	Short: "收藏一个音频",
	Args:  cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		a := initApp()
		title := ""
		if len(args) > 1 {
			title = args[1]
		}
		item := model.Track{ID: args[0], MetaID: args[0], Title: title}
		if err := a.favorites.Add(context.Background(), item); err != nil {
			log.Fatalf("收藏失败: %v", err)
		}
		fmt.Println("已收藏。")
	},
}

var favoritesRemoveCmd = &cobra.Command{
	Use:   "remove <audioId>",
	Short: "取消收藏",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		a := initApp()
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			log.Fatalf("音频ID必须是数字: %v", err)
		}
		if err := a.favorites.Remove(context.Background(), id); err != nil {
			log.Fatalf("取消收藏失败: %v", err)
		}
		fmt.Println("已取消收藏。")
	},
}

func init() {
	favoritesCmd.AddCommand(favoritesAddCmd)
	favoritesCmd.AddCommand(favoritesRemoveCmd)
	rootCmd.AddCommand(favoritesCmd)
}
