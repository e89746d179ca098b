// Package domain 负责从磁盘读取课程内容文件。
package domain

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// ContentExt 内容文件扩展名。
const ContentExt = ".json"

// IsContentFile 判断路径是否为内容文件，忽略编辑器临时文件与隐藏文件。
func IsContentFile(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") || strings.HasSuffix(base, "~") {
		return false
	}
	return strings.EqualFold(filepath.Ext(base), ContentExt)
}

// LoadContentFile 读取内容文件。maxBytes>0 时超过上限直接报错，不读入整个文件。
func LoadContentFile(path string, maxBytes int64) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open content: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if maxBytes > 0 {
		r = io.LimitReader(f, maxBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read content: %w", err)
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return nil, fmt.Errorf("content file %s exceeds %d bytes", path, maxBytes)
	}
	return data, nil
}

// ListContentFiles 返回目录下（不递归）的内容文件，按路径排序。
func ListContentFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list content dir: %w", err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !IsContentFile(e.Name()) {
			continue
		}
		out = append(out, filepath.Join(dir, e.Name()))
	}
	slices.Sort(out)
	return out, nil
}
