package tiptap

// GetAttrString безопасно извлекает строковый атрибут из map.
func GetAttrString(attrs map[string]any, key string) string {
	if attrs == nil {
		return ""
	}
	str, ok := attrs[key].(string)
	if !ok {
		return ""
	}
	return str
}

// GetAttrInt безопасно извлекает целочисленный атрибут из map.
func GetAttrInt(attrs map[string]any, key string) int {
	if attrs == nil {
		return 0
	}
	val, ok := attrs[key]
	if !ok {
		return 0
	}

	// Может быть float64 из JSON
	if f, ok := val.(float64); ok {
		return int(f)
	}

	if i, ok := val.(int); ok {
		return i
	}

	return 0
}

// GetAttrBool безопасно извлекает булевый атрибут из map.
func GetAttrBool(attrs map[string]any, key string) bool {
	if attrs == nil {
		return false
	}
	b, ok := attrs[key].(bool)
	if !ok {
		return false
	}
	return b
}
