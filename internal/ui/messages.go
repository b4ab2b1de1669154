package ui

import (
	"strings"

	"github.com/Embers-of-the-Fire/evemt/internal/importer"
)

var messages = map[string]map[string]string{
	"en": {
		importer.KeyStart:           "Starting import",
		importer.KeyDirectoryExists: "Pack directory {name} already exists",
		importer.KeyOpeningFile:     "Opening archive",
		importer.KeyCreatingDir:     "Creating pack directory",
		importer.KeyExtractingFiles: "Extracting {total} files",
		importer.KeyExtractingFile:  "Extracting file {current} of {total}",
		importer.KeyComplete:        "Import complete",
		importer.KeyError:           "Import failed: {error}",
	},
	"zh": {
		importer.KeyStart:           "开始导入",
		importer.KeyDirectoryExists: "数据包目录 {name} 已存在",
		importer.KeyOpeningFile:     "正在打开压缩包",
		importer.KeyCreatingDir:     "正在创建数据包目录",
		importer.KeyExtractingFiles: "正在解压 {total} 个文件",
		importer.KeyExtractingFile:  "正在解压第 {current}/{total} 个文件",
		importer.KeyComplete:        "导入完成",
		importer.KeyError:           "导入失败：{error}",
	},
}

// Message renders a progress message key with its params in lang.
// Unknown keys render as the key itself; unknown languages fall back to English.
func Message(key string, params map[string]string, lang string) string {
	table, ok := messages[lang]
	if !ok {
		table = messages["en"]
	}
	text, ok := table[key]
	if !ok {
		return key
	}
	for k, v := range params {
		text = strings.ReplaceAll(text, "{"+k+"}", v)
	}
	return text
}
