package models

import (
	"encoding/json"

	"formlar.link/fields"

	"gorm.io/datatypes"
)

// Stencil yeniden kullanılabilir form şablonu: ayarlar, alanlar ve
// bildirimler tek bir veri bloğunda saklanır. Kayıtlar yalnızca config
// senkronizasyonu üzerinden yazılır ve soft delete ile arşivlenir.
type Stencil struct {
	BaseModel
	UID    string         `gorm:"type:varchar(36);uniqueIndex;not null"`
	Name   string         `gorm:"type:varchar(150);not null"`
	Handle string         `gorm:"type:varchar(64);index;not null"`
	Data   datatypes.JSON `gorm:"type:jsonb"`
}

// StencilNotification şablondaki bildirim tanımı.
type StencilNotification struct {
	Name       string                 `json:"name"`
	Enabled    bool                   `json:"enabled"`
	Subject    string                 `json:"subject"`
	ToEmail    string                 `json:"toEmail"`
	FromEmail  string                 `json:"fromEmail"`
	Template   string                 `json:"template"`
	Conditions NotificationConditions `json:"conditions"`
}

// StencilIntegrationToggle şablonda bir entegrasyonun açık/kapalı durumu.
type StencilIntegrationToggle struct {
	Enabled bool `json:"enabled"`
}

// StencilData şablonun gömülü ayar bloğu.
type StencilData struct {
	RequireUser             bool   `json:"requireUser"`
	UserDeletedAction       string `json:"userDeletedAction"`
	FileUploadsAction       string `json:"fileUploadsAction"`
	DataRetention           string `json:"dataRetention"`
	DataRetentionValue      int    `json:"dataRetentionValue"`
	AvailabilityFrom        string `json:"availabilityFrom"`
	AvailabilityTo          string `json:"availabilityTo"`
	AvailabilitySubmissions *int   `json:"availabilitySubmissions"`

	Pages         []fields.Page                       `json:"pages"`
	Notifications []StencilNotification               `json:"notifications"`
	Integrations  map[string]StencilIntegrationToggle `json:"integrations"`
}

// DataStruct JSON veri bloğunu çözer. Boş blok geçerli kabul edilir.
func (s *Stencil) DataStruct() (StencilData, error) {
	var data StencilData
	if len(s.Data) == 0 {
		return data, nil
	}
	err := json.Unmarshal(s.Data, &data)
	return data, err
}

// SetDataStruct veri bloğunu JSON olarak yazar.
func (s *Stencil) SetDataStruct(data StencilData) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	s.Data = raw
	return nil
}
