package domain

// Well-known fields of backup index documents.
const (
	FieldDateDeleted = "DateDeleted"
	FieldIsVisible   = "IsVisible"
	FieldURL         = "Url"
)

// Document is one stored document as returned in response.docs.
type Document map[string]any

// String returns a string-valued field, or "" when absent or not a string.
func (d Document) String(field string) string {
	s, _ := d[field].(string)
	return s
}

// Bool returns a boolean field. The index may return booleans as strings.
func (d Document) Bool(field string) (bool, bool) {
	switch v := d[field].(type) {
	case bool:
		return v, true
	case string:
		switch v {
		case "true":
			return true, true
		case "false":
			return false, true
		}
	}
	return false, false
}

// Int returns a numeric field truncated to int. Response bodies decode numbers as float64.
func (d Document) Int(field string) (int, bool) {
	v, ok := d[field].(float64)
	return int(v), ok
}

// Page is a slice of matching documents and the total match count.
type Page struct {
	Total int        `json:"total"`
	Docs  []Document `json:"docs"`
}
