package api

import (
	"bytes"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
)

// readUpload вычитывает multipart-файл в память и кладёт копию в blob
// (если он настроен). Файлы маленькие, буферизовать целиком нормально.
func (s *Storage) readUpload(fh *multipart.FileHeader) (name string, data []byte, key string, size int64, hash string, err error) {
	f, err := fh.Open()
	if err != nil {
		return "", nil, "", 0, "", err
	}
	defer f.Close()

	data, err = io.ReadAll(f)
	if err != nil {
		return "", nil, "", 0, "", err
	}
	name = safeName(fh)

	if s.Blob != nil {
		key, size, hash, err = s.Blob.Put("", bytes.NewReader(data))
		if err != nil {
			return "", nil, "", 0, "", err
		}
	} else {
		size = int64(len(data))
	}
	return name, data, key, size, hash, nil
}

func safeName(h *multipart.FileHeader) string {
	name := filepath.Base(h.Filename)
	name = strings.TrimSpace(name)
	if name == "" {
		return "file"
	}
	return name
}
