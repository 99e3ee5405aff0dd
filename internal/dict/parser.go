package dict

import (
	"encoding/xml"
	"io"
	"os"
)

// ParseError — фатальная ошибка разбора словаря. Дальше сессия жить не может:
// вызывающий обязан показать её пользователю и не трогать текущие индексы.
type ParseError struct {
	Cause error
}

func (e *ParseError) Error() string { return "dictionary parse: " + e.Cause.Error() }
func (e *ParseError) Unwrap() error { return e.Cause }

type xmlProperty struct {
	Name      string `xml:"Name,attr"`
	Type      string `xml:"Type,attr"`
	MaxLength string `xml:"MaxLength,attr"`
	Required  string `xml:"http://www.successfactors.com/edm/sap required,attr"`
	Label     string `xml:"http://www.successfactors.com/edm/sap label,attr"`
}

type xmlEntityType struct {
	Name       string        `xml:"Name,attr"`
	Properties []xmlProperty `xml:"Property"`
}

// ParseMetadata разбирает OData-словарь (EDMX). Идём потоково по токенам и
// выдёргиваем каждый EntityType, где бы он ни лежал в обёртках edmx/Schema.
// Документ без единого EntityType — не ошибка, просто пустой словарь.
func ParseMetadata(r io.Reader) ([]*Entity, error) {
	dec := xml.NewDecoder(r)

	var entities []*Entity
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &ParseError{Cause: err}
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "EntityType" {
			continue
		}

		var et xmlEntityType
		if err := dec.DecodeElement(&et, &se); err != nil {
			return nil, &ParseError{Cause: err}
		}

		e := &Entity{Name: et.Name}
		for _, p := range et.Properties {
			e.Properties = append(e.Properties, &PropertyEntry{
				EntityType: et.Name,
				Name:       p.Name,
				Type:       p.Type,
				Required:   p.Required,
				MaxLength:  p.MaxLength,
				Label:      p.Label,
			})
		}
		entities = append(entities, e)
	}
	return entities, nil
}

// LoadMetadataFile — обёртка для загрузки словаря с диска (старт сервера, admin reload).
func LoadMetadataFile(path string) ([]*Entity, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseMetadata(f)
}
