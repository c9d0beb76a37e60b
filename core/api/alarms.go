package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"SleepFM/model"
)

// alarmPayload 创建/更新闹钟的请求体。时间用 "HH:mm" 字符串，
// 这是服务端两种时间形态中较新的那种。
func alarmPayload(a model.Alarm) map[string]any {
	return map[string]any{
		"label":       a.Label,
		"enabled":     a.Enabled,
		"time":        fmt.Sprintf("%02d:%02d", a.Hour, a.Minute),
		"repeat":      a.Repeat,
		"repeat_days": a.RepeatDays,
		"ringtone":    a.Ringtone,
		"snooze":      a.Snooze,
		"vibrate":     a.Vibrate,
		"volume":      a.Volume,
	}
}

// ListAlarms 拉取服务端闹钟列表。
func (c *Client) ListAlarms(ctx context.Context) ([]model.Alarm, error) {
	var raw json.RawMessage
	err := c.do(ctx, http.MethodGet, "/api/alarms", nil, &raw)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}

	items := unwrapList(raw)
	alarms := make([]model.Alarm, 0, len(items))
	for _, item := range items {
		if alarm, ok := model.NormalizeAlarm(item); ok {
			alarms = append(alarms, alarm)
		}
	}
	return alarms, nil
}

// CreateAlarm 在服务端创建闹钟，返回服务端分配的ID。
// 响应不带ID时返回空串，临时ID继续留用。
func (c *Client) CreateAlarm(ctx context.Context, a model.Alarm) (string, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodPost, "/api/alarms", alarmPayload(a), &raw); err != nil {
		return "", err
	}
	if alarm, ok := model.NormalizeAlarm(unwrapObject(raw)); ok && !model.IsTempAlarmID(alarm.ID) {
		return alarm.ID, nil
	}
	return "", nil
}

// UpdateAlarm 更新服务端闹钟。只对持有服务端ID的闹钟调用。
func (c *Client) UpdateAlarm(ctx context.Context, id string, a model.Alarm) error {
	return c.do(ctx, http.MethodPut, "/api/alarms/"+url.PathEscape(id), alarmPayload(a), nil)
}

// DeleteAlarm 删除服务端闹钟。404按已删除处理。
func (c *Client) DeleteAlarm(ctx context.Context, id string) error {
	err := c.do(ctx, http.MethodDelete, "/api/alarms/"+url.PathEscape(id), nil, nil)
	if err != nil && !isNotFound(err) {
		return err
	}
	return nil
}
