package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTranslate(t *testing.T) {
	g := GetInstance()

	assert.Equal(t, "Failed to save love note", g.Translate("note_save_failed", LangEnUS))
	assert.Equal(t, "保存情书失败", g.Translate("note_save_failed", LangZhCN))
	assert.Equal(t, "保存情书失败", g.Translate("note_save_failed", "zh-TW,zh;q=0.9"))
	assert.Equal(t, "Love note deleted", g.Translate("note_deleted", "fr-FR"))
	assert.Equal(t, "no_such_key", g.Translate("no_such_key", LangEnUS))
}

func TestResolve(t *testing.T) {
	g := GetInstance()

	assert.Equal(t, LangEnUS, g.Resolve(""))
	assert.Equal(t, LangZhCN, g.Resolve("zh-CN"))
	assert.Equal(t, LangEnUS, g.Resolve("en-US,en;q=0.8"))
}

func TestT(t *testing.T) {
	assert.Equal(t, "Please fill in all fields", T("note_fields_required"))
}
