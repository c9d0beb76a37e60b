package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TempAlarmPrefix 客户端生成的临时闹钟ID前缀。服务端创建成功前，
// 闹钟只持有这种占位ID，无法在服务端被寻址。
const TempAlarmPrefix = "al_"

// NewTempAlarmID 生成一个临时闹钟ID。
func NewTempAlarmID(now time.Time) string {
	return fmt.Sprintf("%s%d", TempAlarmPrefix, now.UnixMilli())
}

// IsTempAlarmID 判断ID是否仍是未经服务端确认的占位ID。
func IsTempAlarmID(id string) bool {
	return strings.HasPrefix(id, TempAlarmPrefix)
}

// Alarm 一个闹钟。ID 在服务端创建成功前是临时占位ID。
type Alarm struct {
	ID         string  `json:"id"`
	Label      string  `json:"label"`
	Enabled    bool    `json:"enabled"`
	Hour       int     `json:"hour"`
	Minute     int     `json:"minute"`
	Repeat     string  `json:"repeat,omitempty"`
	RepeatDays []int   `json:"repeatDays,omitempty"`
	Ringtone   string  `json:"ringtone,omitempty"`
	Snooze     bool    `json:"snooze"`
	Vibrate    bool    `json:"vibrate"`
	Volume     float64 `json:"volume"`
}

// Clamp 将时间和音量收敛到合法区间。
func (a *Alarm) Clamp() {
	a.Hour = clampInt(a.Hour, 0, 23)
	a.Minute = clampInt(a.Minute, 0, 59)
	a.Volume = clampFloat(a.Volume, 0, 1)
}

// NormalizeAlarm 归一化服务端闹钟。不同版本的后端用两种形态返回时间：
// "HH:mm" / "HH:mm:ss" 字符串，或分开的 hour/minute 字段。
// 解析不出ID时返回 false。
func NormalizeAlarm(raw json.RawMessage) (Alarm, bool) {
	obj, ok := parseObject(raw)
	if !ok {
		return Alarm{}, false
	}

	id := obj.stringOr("", "id", "alarm_id", "alarmId")
	if id == "" {
		return Alarm{}, false
	}

	alarm := Alarm{
		ID:       id,
		Label:    obj.stringOr("", "label", "name"),
		Repeat:   obj.stringOr("", "repeat"),
		Ringtone: obj.stringOr("", "ringtone"),
		Volume:   1,
	}

	if v, ok := obj.pick("enabled", "is_enabled", "isEnabled"); ok {
		if b, ok := asBool(v); ok {
			alarm.Enabled = b
		}
	} else {
		alarm.Enabled = true
	}
	if v, ok := obj.pick("snooze"); ok {
		alarm.Snooze, _ = asBool(v)
	}
	if v, ok := obj.pick("vibrate"); ok {
		alarm.Vibrate, _ = asBool(v)
	}
	if v, ok := obj.pick("volume"); ok {
		if f, ok := asFloat64(v); ok {
			alarm.Volume = f
		}
	}
	if v, ok := obj.pick("repeat_days", "repeatDays"); ok {
		for _, d := range asInt64Slice(v) {
			alarm.RepeatDays = append(alarm.RepeatDays, int(d))
		}
	}

	if hour, minute, ok := alarmTime(obj); ok {
		alarm.Hour, alarm.Minute = hour, minute
	}
	alarm.Clamp()
	return alarm, true
}

func alarmTime(obj rawObject) (int, int, bool) {
	if v, ok := obj.pick("time"); ok {
		if s, ok := asString(v); ok {
			if h, m, ok := ParseClock(s); ok {
				return h, m, true
			}
		}
	}
	hRaw, hOK := obj.pick("hour")
	mRaw, mOK := obj.pick("minute")
	if hOK && mOK {
		h, ok1 := asInt64(hRaw)
		m, ok2 := asInt64(mRaw)
		if ok1 && ok2 {
			return int(h), int(m), true
		}
	}
	return 0, 0, false
}

// ParseClock 解析 "HH:mm" 或 "HH:mm:ss" 形式的时刻，秒被忽略。
func ParseClock(s string) (hour, minute int, ok bool) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, 0, false
	}
	h, err1 := strconv.Atoi(parts[0])
	m, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil || h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, 0, false
	}
	return h, m, true
}
