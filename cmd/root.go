package cmd

import (
	"fmt"
	"log"
	"os"
	"time"

	"SleepFM/config"
	"SleepFM/core/api"
	"SleepFM/core/auth"
	"SleepFM/core/feedback"
	"SleepFM/core/store"
	"SleepFM/logger"
	"SleepFM/model"
	"SleepFM/storage"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "sleepfm",
	Short: "SleepFM 白噪音助眠客户端",
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

// Execute executes the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app 一次命令运行期间的全部依赖。
type app struct {
	cfg       *config.Config
	store     storage.Store
	auth      *auth.Manager
	client    *api.Client
	favorites *store.FavoritesStore
	history   *store.HistoryStore
	player    *store.PlayerStore
	alarms    *store.AlarmStore
	feedback  *feedback.Service
}

// initApp 装配配置、日志、存储后端和各个状态容器。
// 存储后端打不开属于环境问题，直接退出。
func initApp() *app {
	cfg := config.Load()
	logger.InitLogger(logger.Config{Level: logger.LogLevel(cfg.LogLevel), OutputPath: cfg.LogPath})

	var st storage.Store
	switch cfg.StateBackend {
	case "redis":
		rs, err := storage.NewRedisStore(cfg, 0)
		if err != nil {
			log.Fatalf("无法连接到Redis状态后端: %v", err)
		}
		st = rs
	default:
		fs, err := storage.NewFileStore(cfg.StateDir)
		if err != nil {
			log.Fatalf("无法打开状态目录 %s: %v", cfg.StateDir, err)
		}
		st = fs
	}

	mgr := auth.NewManager(st)
	client := api.NewClient(cfg.APIBase, cfg.RequestTimeout, func() string {
		if s := mgr.Session(); s != nil {
			return s.BearerToken()
		}
		return ""
	})

	a := &app{
		cfg:       cfg,
		store:     st,
		auth:      mgr,
		client:    client,
		favorites: store.NewFavorites(mgr, client, st),
		history:   store.NewHistory(mgr, client, st),
		player:    store.NewPlayer(mgr, client, st),
		alarms:    store.NewAlarms(mgr, client, st),
		feedback:  feedback.NewService(client, st),
	}
	a.favorites.Load()
	a.history.Load()
	a.player.Load()
	a.alarms.Load()
	a.feedback.Load()

	// 起床闹钟被关掉时排一条反馈任务
	a.alarms.SetFeedbackHook(func(alarm model.Alarm) {
		a.feedback.ScheduleReminder(alarm.ID, alarm.Label, time.Now().Add(5*time.Minute))
	})
	return a
}
