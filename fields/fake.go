package fields

import (
	"fmt"
	"math/rand"
	"strings"
	"time"
)

// IFieldValueGenerator alan türü başına örnek (fake) değer üretir.
// E-posta önizlemeleri gerçek gönderim olmadan bu değerlerle oluşturulur.
type IFieldValueGenerator interface {
	GenerateFakeValue(rng *rand.Rand) any
}

var sampleWords = []string{
	"lorem", "ipsum", "dolor", "sit", "amet", "consectetur",
	"adipiscing", "elit", "sed", "do", "eiusmod", "tempor",
}

var sampleNames = []string{"Ayşe", "Mehmet", "Zeynep", "Emre", "Elif", "Can"}
var sampleSurnames = []string{"Yılmaz", "Kaya", "Demir", "Çelik", "Şahin", "Arslan"}
var sampleCities = []string{"İstanbul", "Ankara", "İzmir", "Bursa", "Antalya"}

type textGenerator struct{ lines int }

func (g textGenerator) GenerateFakeValue(rng *rand.Rand) any {
	var lines []string
	for i := 0; i < g.lines; i++ {
		count := 3 + rng.Intn(5)
		words := make([]string, count)
		for j := range words {
			words[j] = sampleWords[rng.Intn(len(sampleWords))]
		}
		lines = append(lines, strings.Join(words, " "))
	}
	return strings.Join(lines, "\n")
}

type emailGenerator struct{}

func (emailGenerator) GenerateFakeValue(rng *rand.Rand) any {
	return fmt.Sprintf("%s%d@ornek.com", sampleWords[rng.Intn(len(sampleWords))], rng.Intn(1000))
}

type numberGenerator struct{}

func (numberGenerator) GenerateFakeValue(rng *rand.Rand) any {
	return rng.Intn(100)
}

type phoneGenerator struct{}

func (phoneGenerator) GenerateFakeValue(rng *rand.Rand) any {
	return fmt.Sprintf("+90 5%02d %03d %02d %02d", rng.Intn(100), rng.Intn(1000), rng.Intn(100), rng.Intn(100))
}

type dateGenerator struct{}

func (dateGenerator) GenerateFakeValue(rng *rand.Rand) any {
	offset := time.Duration(rng.Intn(365*24)) * time.Hour
	return time.Now().Add(-offset).Format(time.RFC3339)
}

type nameGenerator struct{}

func (nameGenerator) GenerateFakeValue(rng *rand.Rand) any {
	return sampleNames[rng.Intn(len(sampleNames))] + " " + sampleSurnames[rng.Intn(len(sampleSurnames))]
}

type addressGenerator struct{}

func (addressGenerator) GenerateFakeValue(rng *rand.Rand) any {
	return map[string]any{
		"address1": fmt.Sprintf("%s caddesi no: %d", sampleWords[rng.Intn(len(sampleWords))], rng.Intn(200)+1),
		"city":     sampleCities[rng.Intn(len(sampleCities))],
		"zip":      fmt.Sprintf("%05d", rng.Intn(100000)),
		"country":  "Türkiye",
	}
}

// optionGenerator seçenekli alanlar için rastgele bir seçenek döndürür.
type optionGenerator struct {
	field Field
	multi bool
}

func (g optionGenerator) GenerateFakeValue(rng *rand.Rand) any {
	if len(g.field.Options) == 0 {
		if g.multi {
			return []string{}
		}
		return ""
	}
	value := g.field.Options[rng.Intn(len(g.field.Options))]
	if g.multi {
		return []string{value}
	}
	return value
}

// groupGenerator alt alanları tek satırlık iç içe değer olarak üretir.
type groupGenerator struct{ field Field }

func (g groupGenerator) GenerateFakeValue(rng *rand.Rand) any {
	row := make(map[string]any, len(g.field.Fields))
	for _, sub := range g.field.Fields {
		row[sub.Handle] = sub.FakeValue(rng)
	}
	return []any{row}
}

// generatorFor alan türüne uygun üreticiyi seçer.
func generatorFor(field Field) IFieldValueGenerator {
	switch field.Kind {
	case KindMultiLine:
		return textGenerator{lines: 3}
	case KindEmail:
		return emailGenerator{}
	case KindNumber:
		return numberGenerator{}
	case KindPhone:
		return phoneGenerator{}
	case KindDate:
		return dateGenerator{}
	case KindName:
		return nameGenerator{}
	case KindAddress:
		return addressGenerator{}
	case KindDropdown:
		return optionGenerator{field: field, multi: field.Multi}
	case KindRadio:
		return optionGenerator{field: field}
	case KindCheckboxes:
		return optionGenerator{field: field, multi: true}
	case KindGroup:
		return groupGenerator{field: field}
	default:
		return textGenerator{lines: 1}
	}
}

// FakeValue alan için örnek değer üretir.
func (f Field) FakeValue(rng *rand.Rand) any {
	return generatorFor(f).GenerateFakeValue(rng)
}

// FakeValues bir alan listesinin tamamı için handle -> değer eşlemesi üretir.
func FakeValues(fieldList []Field, rng *rand.Rand) map[string]any {
	values := make(map[string]any, len(fieldList))
	for _, field := range fieldList {
		values[field.Handle] = field.FakeValue(rng)
	}
	return values
}
