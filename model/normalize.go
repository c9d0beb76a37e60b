package model

import (
	"encoding/json"
	"strconv"
	"strings"
)

// 服务端返回的字段形态并不稳定：同一个值可能是数字、数字字符串，
// 同一个字段在不同接口下有多个别名。这里集中做归一化，
// 原始服务端形态不允许越过 api 层泄漏给各个 store。

type rawObject map[string]json.RawMessage

func parseObject(raw json.RawMessage) (rawObject, bool) {
	var obj rawObject
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, false
	}
	return obj, true
}

// pick 按别名优先级取第一个存在且非 null 的字段。
func (o rawObject) pick(keys ...string) (json.RawMessage, bool) {
	for _, k := range keys {
		if v, ok := o[k]; ok && string(v) != "null" {
			return v, true
		}
	}
	return nil, false
}

// asInt64 兼容数字和数字字符串两种形态。
func asInt64(raw json.RawMessage) (int64, bool) {
	var n int64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64); err == nil {
			return v, true
		}
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return int64(f), true
	}
	return 0, false
}

func asString(raw json.RawMessage) (string, bool) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, true
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String(), true
	}
	return "", false
}

func asBool(raw json.RawMessage) (bool, bool) {
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return b, true
	}
	// 部分接口用 0/1 表示布尔
	if n, ok := asInt64(raw); ok {
		return n != 0, true
	}
	return false, false
}

func asFloat64(raw json.RawMessage) (float64, bool) {
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if v, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return v, true
		}
	}
	return 0, false
}

// asInt64Slice 过滤掉无法解析的元素，不因单个坏值放弃整个列表。
func asInt64Slice(raw json.RawMessage) []int64 {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	out := make([]int64, 0, len(items))
	for _, it := range items {
		if n, ok := asInt64(it); ok {
			out = append(out, n)
		}
	}
	return out
}

func (o rawObject) stringOr(def string, keys ...string) string {
	if raw, ok := o.pick(keys...); ok {
		if s, ok := asString(raw); ok && s != "" {
			return s
		}
	}
	return def
}

func (o rawObject) int64Or(def int64, keys ...string) int64 {
	if raw, ok := o.pick(keys...); ok {
		if n, ok := asInt64(raw); ok {
			return n
		}
	}
	return def
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
