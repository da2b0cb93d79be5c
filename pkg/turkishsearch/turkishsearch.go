package turkishsearch

import "strings"

// turkishLower Türkçe'ye özgü harfleri doğru küçülterek string'i normalize eder.
// strings.ToLower "I" harfini "i" yapar; Türkçe'de doğrusu "ı"dır.
func turkishLower(s string) string {
	replacer := strings.NewReplacer(
		"I", "ı", "İ", "i",
		"Ğ", "ğ", "Ü", "ü",
		"Ş", "ş", "Ö", "ö",
		"Ç", "ç",
	)
	return strings.ToLower(replacer.Replace(s))
}

// SQLFilter verilen kolon için Türkçe duyarlı LIKE filtresi üretir.
// Dönen fragment WHERE içinde kullanılır, args sorgu parametreleridir.
func SQLFilter(column string, term string) (string, []any) {
	pattern := "%" + turkishLower(strings.TrimSpace(term)) + "%"
	return "LOWER(" + column + ") LIKE ?", []any{pattern}
}
