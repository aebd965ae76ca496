// Package i18n 提供错误消息与提示语的多语言翻译
package i18n

import (
	"strings"
	"sync"

	"github.com/go-playground/locales/en_US"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/weiwangfds/keepsake/internal/logger"
)

// 支持的语言
const (
	LangEnUS = "en-US"
	LangZhCN = "zh-CN"
)

var (
	instance *I18n
	once     sync.Once

	translations = map[string]map[string]string{
		LangEnUS: {
			"success":               "Success",
			"internal_server_error": "Internal Server Error",
			"invalid_params":        "Invalid Parameters",
			"unauthorized":          "Unauthorized",
			"not_found":             "Resource Not Found",

			"upload_failed":        "Failed to upload file",
			"upload_too_large":     "File is too large",
			"storage_unavailable":  "Storage is unavailable",
			"storage_unsupported":  "Storage provider is not supported",
			"database_query":       "Failed to read from the database",
			"database_insert":      "Failed to save to the database",
			"database_update":      "Failed to update the database",
			"database_delete":      "Failed to delete from the database",
			"entry_not_found":      "Entry not found",
			"note_not_found":       "Love note not found",
			"note_fields_required": "Please fill in all fields",
			"board_not_found":      "Board session not found",
			"board_loading":        "Love notes are still loading",

			"entry_saved":        "Entry saved",
			"entry_save_failed":  "Failed to save entry",
			"entry_deleted":      "Entry deleted",
			"entry_delete_fail":  "Failed to delete entry",
			"note_added":         "Love note added!",
			"note_saved":         "Love note saved",
			"note_save_failed":   "Failed to save love note",
			"note_updated":       "Love note updated!",
			"note_update_failed": "Failed to update note",
			"pin_updated":        "Note pin status updated!",
			"pin_update_failed":  "Failed to update pin",
			"note_deleted":       "Love note deleted",
			"note_delete_failed": "Failed to delete note",
			"note_add_failed":    "Failed to add love note",

			"unknown_error": "Unknown Error",
		},
		LangZhCN: {
			"success":               "成功",
			"internal_server_error": "服务器内部错误",
			"invalid_params":        "参数错误",
			"unauthorized":          "未授权",
			"not_found":             "资源未找到",

			"upload_failed":        "文件上传失败",
			"upload_too_large":     "文件大小超限",
			"storage_unavailable":  "存储服务不可用",
			"storage_unsupported":  "存储提供商不支持",
			"database_query":       "数据库查询错误",
			"database_insert":      "数据库插入错误",
			"database_update":      "数据库更新错误",
			"database_delete":      "数据库删除错误",
			"entry_not_found":      "条目未找到",
			"note_not_found":       "情书未找到",
			"note_fields_required": "请填写所有字段",
			"board_not_found":      "展示会话未找到",
			"board_loading":        "情书仍在加载中",

			"entry_saved":        "条目已保存",
			"entry_save_failed":  "保存条目失败",
			"entry_deleted":      "条目已删除",
			"entry_delete_fail":  "删除条目失败",
			"note_added":         "情书已添加！",
			"note_saved":         "情书已保存",
			"note_save_failed":   "保存情书失败",
			"note_updated":       "情书已更新！",
			"note_update_failed": "更新情书失败",
			"pin_updated":        "置顶状态已更新！",
			"pin_update_failed":  "更新置顶失败",
			"note_deleted":       "情书已删除",
			"note_delete_failed": "删除情书失败",
			"note_add_failed":    "添加情书失败",

			"unknown_error": "未知错误",
		},
	}
)

// I18n 翻译器集合
type I18n struct {
	translators map[string]ut.Translator
	defaultLang string
}

// GetInstance 获取I18n单例
func GetInstance() *I18n {
	once.Do(func() {
		instance = &I18n{
			translators: make(map[string]ut.Translator),
			defaultLang: LangEnUS,
		}
		instance.initTranslators()
	})
	return instance
}

func (i *I18n) initTranslators() {
	enUS := en_US.New()
	uni := ut.New(enUS, enUS, zh.New())

	for lang, locale := range map[string]string{LangEnUS: "en_US", LangZhCN: "zh"} {
		trans, found := uni.GetTranslator(locale)
		if !found {
			logger.Errorf("translator not found for %s (locale %s)", lang, locale)
			continue
		}
		i.translators[lang] = trans
	}
}

// Translate 根据键和语言获取翻译，找不到时回退到默认语言，再回退到键本身
func (i *I18n) Translate(key, lang string) string {
	lang = i.Resolve(lang)
	if text, ok := translations[lang][key]; ok {
		return text
	}
	if text, ok := translations[i.defaultLang][key]; ok {
		return text
	}
	logger.Warnf("未找到翻译: %s, 语言: %s", key, lang)
	return key
}

// Resolve 将 Accept-Language 之类的输入映射为受支持的语言
func (i *I18n) Resolve(lang string) string {
	lang = strings.TrimSpace(lang)
	if idx := strings.IndexAny(lang, ",;"); idx >= 0 {
		lang = lang[:idx]
	}
	if _, ok := i.translators[lang]; ok {
		return lang
	}
	if strings.HasPrefix(strings.ToLower(lang), "zh") {
		return LangZhCN
	}
	return i.defaultLang
}

// SetDefaultLanguage 设置默认语言
func (i *I18n) SetDefaultLanguage(lang string) {
	if _, ok := i.translators[lang]; ok {
		i.defaultLang = lang
	}
}

// GetDefaultLanguage 获取默认语言
func (i *I18n) GetDefaultLanguage() string {
	return i.defaultLang
}

// T 使用默认语言翻译
func T(key string) string {
	g := GetInstance()
	return g.Translate(key, g.defaultLang)
}
