package template

import (
	"bytes"
	"strings"
	"unicode/utf8"
)

var bomUTF8 = []byte{0xEF, 0xBB, 0xBF}

// DecodeText приводит сырые байты текстового файла к UTF-8 строке.
// Порядок: срезаем UTF-8 BOM; валидный UTF-8 отдаём как есть;
// иначе считаем Latin-1 (байт == код-пойнт). Шаблоны приходят из Excel-экспортов,
// так что этих двух кодировок хватает.
func DecodeText(data []byte) string {
	data = bytes.TrimPrefix(data, bomUTF8)
	if utf8.Valid(data) {
		return string(data)
	}
	var sb strings.Builder
	sb.Grow(len(data) * 2)
	for _, b := range data {
		sb.WriteRune(rune(b))
	}
	return sb.String()
}
