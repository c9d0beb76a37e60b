package cmd

import (
	"context"
	"fmt"
	"log"

	"SleepFM/model"

	"github.com/spf13/cobra"
)

var alarmLabel string

var alarmsCmd = &cobra.Command{
	Use:   "alarms",
	Short: "管理闹钟和睡前提醒",
	Run: func(cmd *cobra.Command, args []string) {
		a := initApp()
		alarms := a.alarms.Alarms()
		if len(alarms) == 0 {
			fmt.Println("还没有闹钟。")
		}
		for _, al := range alarms {
			state := "关"
			if al.Enabled {
				state = "开"
			}
			pending := ""
			if model.IsTempAlarmID(al.ID) {
				pending = "（未同步）"
			}
			fmt.Printf("%s\t%02d:%02d\t%s\t%s%s\n", al.ID, al.Hour, al.Minute, state, al.Label, pending)
		}
		r := a.alarms.Reminder()
		if r.Enabled {
			fmt.Printf("睡前提醒 %02d:%02d %s\n", r.Hour, r.Minute, r.Label)
		}
	},
}

var alarmsAddCmd = &cobra.Command{
	Use:   "add <HH:mm>",
	Short: "新建闹钟",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		a := initApp()
		hour, minute, ok := model.ParseClock(args[0])
		if !ok {
			log.Fatalf("时间格式应为 HH:mm，拿到 %q", args[0])
		}
		alarm := model.Alarm{Label: alarmLabel, Enabled: true, Hour: hour, Minute: minute, Volume: 1}
		created, err := a.alarms.AddAlarm(context.Background(), alarm)
		if err != nil {
			// 闹钟本地已生效，服务端失败只提示
			fmt.Printf("闹钟已在本地生效，服务端创建失败: %v\n", err)
		}
		fmt.Printf("闹钟 %s 已建，%02d:%02d\n", created.ID, created.Hour, created.Minute)
	},
}

var alarmsToggleCmd = &cobra.Command{
	Use:   "toggle <id>",
	Short: "开/关一个闹钟",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		a := initApp()
		if !a.alarms.ToggleAlarm(context.Background(), args[0]) {
			log.Fatalf("没有找到闹钟 %s", args[0])
		}
		fmt.Println("已切换。")
	},
}

var alarmsRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "删除闹钟",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		a := initApp()
		if !a.alarms.RemoveAlarm(context.Background(), args[0]) {
			log.Fatalf("没有找到闹钟 %s", args[0])
		}
		fmt.Println("已删除。")
	},
}

func init() {
	alarmsAddCmd.Flags().StringVar(&alarmLabel, "label", "", "闹钟标签")
	alarmsCmd.AddCommand(alarmsAddCmd)
	alarmsCmd.AddCommand(alarmsToggleCmd)
	alarmsCmd.AddCommand(alarmsRemoveCmd)
	rootCmd.AddCommand(alarmsCmd)
}
