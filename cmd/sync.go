package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"SleepFM/storage"

	"github.com/spf13/cobra"
)

var syncWatch bool

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "与服务端同步全部状态",
	Long:  `拉取服务端的收藏、组合收藏、组合播放历史和闹钟，与本地状态合并。`,
	Run: func(cmd *cobra.Command, args []string) {
		a := initApp()
		ctx := context.Background()

		syncAll(ctx, a)

		if !syncWatch {
			return
		}
		fs, ok := a.store.(*storage.FileStore)
		if !ok {
			log.Fatalf("--watch 只支持 file 状态后端")
		}
		watchState(ctx, a, fs.Dir())
	},
}

// syncAll 按固定顺序跑一轮同步。只有组合播放历史的失败要报出来，
// 其余同步各自吞错。
func syncAll(ctx context.Context, a *app) {
	a.favorites.SyncFromServer(ctx)
	a.favorites.SyncWhiteNoiseCombos(ctx)
	a.alarms.FetchAlarmsFromServer(ctx)
	if err := a.history.SyncWhiteNoiseHistory(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "同步组合播放历史失败: %v\n", err)
	}
	fmt.Printf("同步完成：收藏 %d 条，组合 %d 个，闹钟 %d 个\n",
		len(a.favorites.Items()), len(a.favorites.Combos()), len(a.alarms.Alarms()))
}

// watchState 监听状态目录。另一个运行端改了快照文件就重新加载
// 对应的容器，保持两边看到同一份状态。
func watchState(ctx context.Context, a *app, dir string) {
	w, err := storage.WatchDir(dir)
	if err != nil {
		log.Fatalf("无法监听状态目录 %s: %v", dir, err)
	}
	defer w.Close()

	fmt.Printf("正在监听状态目录 %s，Ctrl+C 退出\n", dir)
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case key := <-w.Keys():
			reloadKey(a, key)
		case <-sig:
			return
		}
	}
}

func reloadKey(a *app, key string) {
	switch key {
	case "favoriteItems":
		a.favorites.Load()
	case "historyItems":
		a.history.Load()
	case "playerState":
		a.player.Load()
	case "sleepStore":
		a.alarms.Load()
	case "app_auth_user":
		// 身份由 auth.Manager 每次按需读取，这里只提示
	default:
		return
	}
	fmt.Printf("已重新加载 %s\n", key)
}

func init() {
	syncCmd.Flags().BoolVar(&syncWatch, "watch", false, "同步后持续监听状态目录的外部变更")
	rootCmd.AddCommand(syncCmd)
}
