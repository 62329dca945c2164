package bbcode

var defaultCodec = MustCodec(DefaultConfig())

// IsValid reports whether markup contains a map tag in the default dialect.
func IsValid(markup string) bool {
	return defaultCodec.IsValid(markup)
}

// Parse parses markup in the default dialect.
func Parse(markup string) Document {
	return defaultCodec.Parse(markup)
}

// Serialize renders doc in the default dialect.
func Serialize(doc Document) string {
	return defaultCodec.Serialize(doc)
}

// Scan finds every map tag of the default dialect in text.
func Scan(text string) []Block {
	return defaultCodec.Scan(text)
}
