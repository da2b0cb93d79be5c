package models

import (
	"encoding/json"

	"gorm.io/datatypes"
)

// Notification bir form gönderiminden sonra gidecek e-posta bildirimini tanımlar.
type Notification struct {
	BaseModel
	FormID uint `gorm:"index;not null"`

	Name      string `gorm:"type:varchar(150);not null"`
	Enabled   bool   `gorm:"default:true;index"`
	Subject   string `gorm:"type:varchar(255)"`
	ToEmail   string `gorm:"type:text"` // Virgülle ayrılmış alıcılar; alan referansı da olabilir
	FromEmail string `gorm:"type:varchar(150)"`
	Template  string `gorm:"type:varchar(100)"` // E-posta şablon referansı

	// Koşullar NotificationConditions yapısı olarak JSON saklanır.
	Conditions datatypes.JSON `gorm:"type:jsonb"`
}

// ConditionOperator bildirim koşullarında kullanılabilecek operatörler.
type ConditionOperator string

const (
	OperatorEquals      ConditionOperator = "="
	OperatorNotEquals   ConditionOperator = "!="
	OperatorGreaterThan ConditionOperator = ">"
	OperatorLessThan    ConditionOperator = "<"
	OperatorContains    ConditionOperator = "contains"
	OperatorStartsWith  ConditionOperator = "startsWith"
	OperatorEndsWith    ConditionOperator = "endsWith"
)

// NotificationCondition tek bir koşul satırı: alan, operatör, değer.
type NotificationCondition struct {
	Field    string            `json:"field"`
	Operator ConditionOperator `json:"operator"`
	Value    string            `json:"value"`
}

// NotificationConditions bildirimin koşul kümesi.
// Enabled=false veya boş Items ise bildirim her zaman gönderilir.
type NotificationConditions struct {
	Enabled  bool                    `json:"enabled"`
	MatchAll bool                    `json:"matchAll"` // true: tümü, false: herhangi biri
	Items    []NotificationCondition `json:"items"`
}

// ConditionSet JSON koşul verisini çözer. Veri yoksa boş küme döner.
func (n *Notification) ConditionSet() (NotificationConditions, error) {
	var set NotificationConditions
	if len(n.Conditions) == 0 {
		return set, nil
	}
	err := json.Unmarshal(n.Conditions, &set)
	return set, err
}
