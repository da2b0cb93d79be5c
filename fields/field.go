package fields

import (
	"encoding/json"
	"fmt"
)

// Kind bir form alanının türünü tanımlar.
type Kind string

const (
	KindSingleLine Kind = "single_line"
	KindMultiLine  Kind = "multi_line"
	KindEmail      Kind = "email"
	KindNumber     Kind = "number"
	KindPhone      Kind = "phone"
	KindDate       Kind = "date"
	KindDropdown   Kind = "dropdown"
	KindRadio      Kind = "radio"
	KindCheckboxes Kind = "checkboxes"
	KindName       Kind = "name"
	KindAddress    Kind = "address"
	KindGroup      Kind = "group"
)

// Field form alanı tanımı. Group türünde alt alanlar Fields içinde taşınır.
type Field struct {
	Label    string   `json:"label"`
	Handle   string   `json:"handle"`
	Kind     Kind     `json:"kind"`
	Required bool     `json:"required"`
	Multi    bool     `json:"multi,omitempty"`    // Dropdown için çoklu seçim
	Options  []string `json:"options,omitempty"`  // Dropdown/Radio/Checkboxes seçenekleri
	Fields   []Field  `json:"fields,omitempty"`   // Group alt alanları
}

// Page çok sayfalı formlarda tek bir sayfayı temsil eder.
type Page struct {
	Label  string  `json:"label"`
	Fields []Field `json:"fields"`
}

// ParseLayout JSON olarak saklanan alan düzenini çözer.
// Boş veri geçerli (alansız form) kabul edilir.
func ParseLayout(data []byte) ([]Page, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var pages []Page
	if err := json.Unmarshal(data, &pages); err != nil {
		return nil, fmt.Errorf("alan düzeni çözümlenemedi: %w", err)
	}
	return pages, nil
}

// LayoutFields tüm sayfalardaki alanları tek listede döndürür.
func LayoutFields(pages []Page) []Field {
	var all []Field
	for _, page := range pages {
		all = append(all, page.Fields...)
	}
	return all
}
