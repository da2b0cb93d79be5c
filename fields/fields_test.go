package fields

import (
	"math/rand"
	"strings"
	"testing"
)

func TestParseLayout(t *testing.T) {
	layout := []byte(`[
		{"label": "İletişim", "fields": [
			{"label": "Ad", "handle": "ad", "kind": "single_line", "required": true},
			{"label": "E-posta", "handle": "eposta", "kind": "email"}
		]},
		{"label": "Mesaj", "fields": [
			{"label": "Mesaj", "handle": "mesaj", "kind": "multi_line"}
		]}
	]`)

	pages, err := ParseLayout(layout)
	if err != nil {
		t.Fatal(err)
	}
	if len(pages) != 2 {
		t.Fatalf("2 sayfa beklenirken %d çözümlendi", len(pages))
	}
	if pages[0].Fields[0].Handle != "ad" || !pages[0].Fields[0].Required {
		t.Errorf("alan tanımı eksik çözümlendi: %+v", pages[0].Fields[0])
	}

	all := LayoutFields(pages)
	if len(all) != 3 {
		t.Errorf("tüm sayfalardan 3 alan toplanmalı: %d", len(all))
	}
}

func TestParseLayoutEmptyDataIsValid(t *testing.T) {
	pages, err := ParseLayout(nil)
	if err != nil {
		t.Errorf("boş düzen geçerli olmalı: %v", err)
	}
	if pages != nil {
		t.Errorf("boş düzen alansız dönmeli: %v", pages)
	}
}

func TestParseLayoutMalformedData(t *testing.T) {
	if _, err := ParseLayout([]byte("{bozuk")); err == nil {
		t.Error("bozuk düzen hata döndürmeli")
	}
}

func TestFakeValuesCoverAllHandles(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	fieldList := []Field{
		{Handle: "ad", Kind: KindSingleLine},
		{Handle: "eposta", Kind: KindEmail},
		{Handle: "yas", Kind: KindNumber},
		{Handle: "sehir", Kind: KindDropdown, Options: []string{"Ankara", "İzmir"}},
		{Handle: "ilgi", Kind: KindCheckboxes, Options: []string{"spor", "müzik"}},
	}

	values := FakeValues(fieldList, rng)
	for _, field := range fieldList {
		if _, ok := values[field.Handle]; !ok {
			t.Errorf("alan %q için değer üretilmeli", field.Handle)
		}
	}

	if email, ok := values["eposta"].(string); !ok || !strings.Contains(email, "@") {
		t.Errorf("e-posta alanı geçerli biçimde olmalı: %v", values["eposta"])
	}
	if selected, ok := values["sehir"].(string); !ok || (selected != "Ankara" && selected != "İzmir") {
		t.Errorf("seçenekli alan tanımlı seçeneklerden birini almalı: %v", values["sehir"])
	}
	if multi, ok := values["ilgi"].([]string); !ok || len(multi) != 1 {
		t.Errorf("çoklu seçim alanı seçenek listesi dönmeli: %v", values["ilgi"])
	}
}

func TestFakeValuesGroupProducesNestedRow(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	group := Field{
		Handle: "adres",
		Kind:   KindGroup,
		Fields: []Field{
			{Handle: "sehir", Kind: KindSingleLine},
			{Handle: "posta_kodu", Kind: KindNumber},
		},
	}

	value := group.FakeValue(rng)
	rows, ok := value.([]any)
	if !ok || len(rows) != 1 {
		t.Fatalf("group alanı tek satırlık liste üretmeli: %v", value)
	}
	row, ok := rows[0].(map[string]any)
	if !ok {
		t.Fatalf("group satırı eşleme olmalı: %v", rows[0])
	}
	if _, ok := row["sehir"]; !ok {
		t.Error("alt alanlar satırda yer almalı")
	}
}
