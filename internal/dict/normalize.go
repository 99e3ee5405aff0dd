package dict

import "strings"

var keyReplacer = strings.NewReplacer("-", "", "_", "", " ", "")

// NormalizeKey приводит заголовок колонки к каноническому ключу сопоставления.
// Точечные навигационные пути режем по последней точке, дефисы/подчёркивания/пробелы
// выкидываем, остальное в нижний регистр. Пустой вход -> пустой ключ.
func NormalizeKey(col string) string {
	if i := strings.LastIndexByte(col, '.'); i >= 0 {
		col = col[i+1:]
	}
	return strings.ToLower(keyReplacer.Replace(col))
}
