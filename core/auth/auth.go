package auth

import (
	"fmt"
	"time"

	"SleepFM/storage"

	"github.com/golang-jwt/jwt/v5"
)

// StorageKey 本地会话快照的存储键。
const StorageKey = "app_auth_user"

// Session 本地持久化的登录态。Token 由服务端签发，客户端只存不验签。
// Guest 是显式的游客标记：游客可能携带token，也可能没有，两者独立。
type Session struct {
	ID          string `json:"id,omitempty"`
	Token       string `json:"token,omitempty"`
	AccessToken string `json:"access_token,omitempty"`
	Name        string `json:"name,omitempty"`
	Guest       bool   `json:"guest,omitempty"`
}

// BearerToken 返回会话携带的token，兼容两个历史字段名。
func (s *Session) BearerToken() string {
	if s == nil {
		return ""
	}
	if s.Token != "" {
		return s.Token
	}
	return s.AccessToken
}

// Status 身份门的判定结果。
type Status struct {
	Token           string
	IsAuthenticated bool
	IsGuest         bool
}

// Manager 身份门。所有需要身份的变更操作在动手前先过这里。
type Manager struct {
	store storage.Store
}

// NewManager 创建身份门，会话从给定存储读取。
func NewManager(store storage.Store) *Manager {
	return &Manager{store: store}
}

// Session 读取本地会话。没有会话或读取失败都返回nil（降级为未登录）。
func (m *Manager) Session() *Session {
	var s Session
	found, err := m.store.Get(StorageKey, &s)
	if err != nil || !found {
		return nil
	}
	return &s
}

// Save 持久化会话。
func (m *Manager) Save(s Session) error {
	if err := m.store.Set(StorageKey, s); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Clear 清除本地会话。
func (m *Manager) Clear() error {
	if err := m.store.Delete(StorageKey); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Status 返回当前身份判定：有可用token即视为已登录，
// guest 标记独立于token存在。
func (m *Manager) Status() Status {
	s := m.Session()
	if s == nil {
		return Status{}
	}
	token := s.BearerToken()
	return Status{
		Token:           token,
		IsAuthenticated: token != "" && tokenUsable(token, time.Now()),
		IsGuest:         s.Guest,
	}
}

// IsAuthenticated 当前会话是否持有可用token。
func (m *Manager) IsAuthenticated() bool {
	return m.Status().IsAuthenticated
}

// IsGuest 当前会话是否是游客。
func (m *Manager) IsGuest() bool {
	return m.Status().IsGuest
}

// tokenUsable 对JWT做客户端侧的过期检查。验签是服务端的事，
// 这里只解码claims：带exp且已过期的token直接当作未登录，
// 省掉一次注定401的请求。解析不了的token按原样放行。
func tokenUsable(token string, now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return true
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return true
	}
	return now.Before(exp.Time)
}
