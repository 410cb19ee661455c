package models

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// MarshalBSONValue encodes the mapping as a BSON document with keys in
// insertion order, mirroring the JSON encoding used by the Postgres store.
func (lc LanguageContent) MarshalBSONValue() (bsontype.Type, []byte, error) {
	doc := make(bson.D, 0, len(lc.langs))
	for _, lang := range lc.langs {
		doc = append(doc, bson.E{Key: lang, Value: lc.byLang[lang]})
	}
	return bson.MarshalValue(doc)
}

// UnmarshalBSONValue decodes a BSON document, preserving its key order.
func (lc *LanguageContent) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	var doc bson.D
	if err := bson.UnmarshalValue(t, data, &doc); err != nil {
		return err
	}
	out := LanguageContent{byLang: make(map[string]SectionContent, len(doc))}
	for _, elem := range doc {
		raw, err := bson.Marshal(elem.Value)
		if err != nil {
			return err
		}
		var content SectionContent
		if err := bson.Unmarshal(raw, &content); err != nil {
			return err
		}
		if _, exists := out.byLang[elem.Key]; !exists {
			out.langs = append(out.langs, elem.Key)
		}
		out.byLang[elem.Key] = content
	}
	*lc = out
	return nil
}
