// Package notice 操作结果提示，对应界面上的一条 toast
package notice

import "github.com/weiwangfds/keepsake/internal/i18n"

// Notice 操作提示
type Notice struct {
	Success bool   `json:"success"`
	Key     string `json:"key"`
	Message string `json:"message"`
}

// OK 成功提示
func OK(key string) Notice {
	return Notice{Success: true, Key: key, Message: i18n.T(key)}
}

// Fail 失败提示，只携带通用文案，具体原因写日志
func Fail(key string) Notice {
	return Notice{Success: false, Key: key, Message: i18n.T(key)}
}

// Localize 按语言重新翻译
func (n Notice) Localize(lang string) Notice {
	n.Message = i18n.GetInstance().Translate(n.Key, lang)
	return n
}
