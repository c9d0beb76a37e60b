package cmd

import (
	"fmt"
	"log"

	"SleepFM/core/auth"

	"github.com/spf13/cobra"
)

var (
	loginToken string
	loginName  string
	loginGuest bool
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "查看当前登录状态",
	Run: func(cmd *cobra.Command, args []string) {
		a := initApp()
		st := a.auth.Status()
		switch {
		case st.IsGuest:
			fmt.Println("游客模式：可以播放，不能收藏。")
		case st.IsAuthenticated:
			name := ""
			if s := a.auth.Session(); s != nil {
				name = s.Name
			}
			fmt.Printf("已登录：%s\n", name)
		default:
			fmt.Println("未登录。")
		}
	},
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "保存登录凭证",
	Run: func(cmd *cobra.Command, args []string) {
		a := initApp()
		if loginToken == "" && !loginGuest {
			log.Fatalf("需要 --token 或 --guest")
		}
		session := auth.Session{Token: loginToken, Name: loginName, Guest: loginGuest}
		if err := a.auth.Save(session); err != nil {
			log.Fatalf("保存登录态失败: %v", err)
		}
		fmt.Println("已保存。")
	},
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "退出登录",
	Run: func(cmd *cobra.Command, args []string) {
		a := initApp()
		if err := a.auth.Clear(); err != nil {
			log.Fatalf("清除登录态失败: %v", err)
		}
		fmt.Println("已退出。")
	},
}

func init() {
	authLoginCmd.Flags().StringVar(&loginToken, "token", "", "服务端签发的访问令牌")
	authLoginCmd.Flags().StringVar(&loginName, "name", "", "显示名")
	authLoginCmd.Flags().BoolVar(&loginGuest, "guest", false, "以游客身份使用")
	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authLogoutCmd)
	rootCmd.AddCommand(authCmd)
}
