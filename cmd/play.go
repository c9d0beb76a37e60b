package cmd

import (
	"fmt"
	"log"
	"strconv"

	"SleepFM/core/store"
	"SleepFM/model"

	"github.com/spf13/cobra"
)

var playCmd = &cobra.Command{
	Use:   "play [audioId]",
	Short: "播放音频并查看播放器状态",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		a := initApp()
		if len(args) == 1 {
			t := model.Track{ID: args[0], MetaID: args[0]}
			a.player.Play(&t)
			a.history.Add(t)
		} else {
			a.player.Play(nil)
		}
		printPlayer(a)
	},
}

var playComboCmd = &cobra.Command{
	Use:   "combo <audioId>...",
	Short: "播放一组白噪音（最多3个）",
	Args:  cobra.RangeArgs(1, model.MaxComboSize),
	Run: func(cmd *cobra.Command, args []string) {
		a := initApp()
		ids := make([]int64, 0, len(args))
		for _, arg := range args {
			id, err := strconv.ParseInt(arg, 10, 64)
			if err != nil {
				log.Fatalf("音频ID必须是数字: %v", err)
			}
			ids = append(ids, id)
		}
		a.player.PlayCombo(ids, "mix", 0)
		fmt.Printf("正在混播 %v\n", ids)
	},
}

var pauseCmd = &cobra.Command{
	Use:   "pause",
	Short: "暂停播放",
	Run: func(cmd *cobra.Command, args []string) {
		a := initApp()
		a.player.Pause()
		printPlayer(a)
	},
}

var nextCmd = &cobra.Command{
	Use:   "next",
	Short: "下一曲",
	Run: func(cmd *cobra.Command, args []string) {
		a := initApp()
		a.player.Next()
		printPlayer(a)
	},
}

var prevCmd = &cobra.Command{
	Use:   "prev",
	Short: "上一曲",
	Run: func(cmd *cobra.Command, args []string) {
		a := initApp()
		a.player.Prev()
		printPlayer(a)
	},
}

var loopCmd = &cobra.Command{
	Use:   "loop <off|one|all>",
	Short: "设置循环模式",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		a := initApp()
		a.player.SetLoopMode(store.LoopMode(args[0]))
		printPlayer(a)
	},
}

func printPlayer(a *app) {
	state := "暂停"
	if a.player.IsPlaying() {
		state = "播放中"
	}
	current := "（无）"
	if t := a.player.CurrentTrack(); t != nil {
		current = t.ID
		if t.Title != "" {
			current += " " + t.Title
		}
	}
	fmt.Printf("%s\t%s\t音量 %.0f%%\t循环 %s\n",
		state, current, a.player.Volume()*100, a.player.Mode())
}

func init() {
	playCmd.AddCommand(playComboCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(pauseCmd)
	rootCmd.AddCommand(nextCmd)
	rootCmd.AddCommand(prevCmd)
	rootCmd.AddCommand(loopCmd)
}
