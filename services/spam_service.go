package services

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"formlar.link/configs"
	"formlar.link/configs/configslog"
	"formlar.link/models"
	"formlar.link/pkg/events"

	"go.uber.org/zap"
)

// ISpamService gönderimleri anahtar kelime/IP kurallarına göre sınıflandırır.
type ISpamService interface {
	SpamChecks(submission *models.Submission, form *models.Form)
	LogSpam(submission *models.Submission)
}

// SpamService ISpamService arayüzünü uygular.
type SpamService struct {
	settings func() *configs.Settings
}

// NewSpamService yeni bir SpamService örneği oluşturur.
func NewSpamService() ISpamService {
	return &SpamService{settings: configs.GetSettings}
}

// NewSpamServiceWith verilen ayar sağlayıcısıyla oluşturur (testler için).
func NewSpamServiceWith(settings func() *configs.Settings) ISpamService {
	return &SpamService{settings: settings}
}

// spamRuleContext kural şablonlarının değerlendirildiği bağlam.
type spamRuleContext struct {
	Submission *models.Submission
	Form       *models.Form
}

// SpamChecks gönderimi kurallara göre değerlendirir ve spam ise işaretler.
// Daha önce spam olarak işaretlenmiş gönderimde (örn. captcha tarafından)
// hiçbir şey yapmaz; SpamReason değişmez.
func (s *SpamService) SpamChecks(submission *models.Submission, form *models.Form) {
	BeforeSpamCheckHooks.Emit(SpamCheckEvent{Submission: submission}, events.HookResult{})

	if !submission.IsSpam {
		rules := s.expandRules(s.settings().SpamKeywords, submission, form)

		// Alan değerleri tek bir string'e düzleştirilir; çok sayıda diziyi
		// gezmektense tek string üzerinde arama yapmak yeterli.
		fieldContent := strings.ToLower(contentAsString(submission.FieldValues))

		for _, rule := range rules {
			lowered := strings.ToLower(rule)
			if lowered != "" && strings.Contains(fieldContent, lowered) {
				submission.IsSpam = true
				submission.SpamReason = fmt.Sprintf("Contains banned keyword: “%s”", rule)
				break
			}

			// IP eşleşmesi tam string karşılaştırmasıdır, substring değil.
			if submission.IPAddress != "" && submission.IPAddress == rule {
				submission.IsSpam = true
				submission.SpamReason = fmt.Sprintf("Contains banned IP: “%s”", rule)
				break
			}
		}
	}

	AfterSpamCheckHooks.Emit(SpamCheckEvent{Submission: submission}, events.HookResult{})
}

// LogSpam spam olarak işaretlenen gönderimi operatör loglarına yazar.
func (s *SpamService) LogSpam(submission *models.Submission) {
	nonEmpty := map[string]any{}
	for handle, value := range submission.FieldValues {
		if value == nil || fmt.Sprint(value) == "" {
			continue
		}
		nonEmpty[handle] = value
	}
	serialized, err := json.Marshal(nonEmpty)
	if err != nil {
		serialized = []byte("{}")
	}

	configslog.Log.Warn("Gönderim spam olarak işaretlendi",
		zap.Uint("submissionID", submission.ID),
		zap.String("reason", submission.SpamReason),
		zap.ByteString("fieldValues", serialized))
}

// expandRules çok satırlı kural metnini kural listesine çevirir.
// "{" içeren kurallar şablon ifadesi kabul edilir: gönderim bağlamına karşı
// değerlendirilir, sonuç satırlara bölünüp kural kümesine eklenir. Bozuk
// şablon değerlendirmeyi durdurmaz, sıfır kural üretir.
func (s *SpamService) expandRules(raw string, submission *models.Submission, form *models.Form) []string {
	var rules []string
	for _, line := range linesOf(raw) {
		if !strings.Contains(line, "{") {
			rules = append(rules, line)
			continue
		}

		rendered, err := renderRuleTemplate(line, spamRuleContext{Submission: submission, Form: form})
		if err != nil {
			configslog.SLog.Warnw("Spam kuralı şablonu değerlendirilemedi, kural atlanıyor.", "rule", line, "error", err)
			continue
		}
		rules = append(rules, linesOf(rendered)...)
	}
	return rules
}

func renderRuleTemplate(rule string, ctx spamRuleContext) (string, error) {
	tmpl, err := template.New("spam_rule").Parse(rule)
	if err != nil {
		return "", err
	}
	var out strings.Builder
	if err := tmpl.Execute(&out, ctx); err != nil {
		return "", err
	}
	return out.String(), nil
}

// linesOf satır satır böler, boşlukları kırpar, boş satırları atar.
func linesOf(raw string) []string {
	var lines []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// contentAsString alan değerlerini tek bir boşlukla ayrılmış string'e
// düzleştirir. İç içe satırlar (group alanları) özyinelemeli gezilir.
func contentAsString(values map[string]any) string {
	var parts []string
	for _, value := range values {
		parts = append(parts, valueAsString(value))
	}
	return strings.Join(parts, " ")
}

func valueAsString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case map[string]any:
		return contentAsString(v)
	case []any:
		var parts []string
		for _, item := range v {
			parts = append(parts, valueAsString(item))
		}
		return strings.Join(parts, " ")
	case []string:
		return strings.Join(v, " ")
	default:
		return fmt.Sprint(v)
	}
}

var _ ISpamService = (*SpamService)(nil)
