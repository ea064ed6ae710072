package services

import "strings"

// ConsultSentinel is the out-of-band marker the model places at the start of
// a reply to request escalation to a human doctor.
const ConsultSentinel = "CONSULTATION_REQUESTED"

// Fixed phrase sets, matched case-insensitively. These are the whole
// protocol: intent is inferred from free text, not from a structured field.
var doctorRequestPhrases = []string{
	"i want a doctor",
	"need a doctor",
	"see a doctor",
}

var consultationCompletePhrases = []string{
	"final report",
	"consultation complete",
}

// UserRequestsDoctor reports whether the patient's own words ask for a human
// doctor, anywhere in the text.
func UserRequestsDoctor(text string) bool {
	lower := strings.ToLower(text)
	for _, phrase := range doctorRequestPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

// StripConsultSentinel removes a leading sentinel token and surrounding
// whitespace from an assistant reply. The second return reports whether the
// sentinel was present.
func StripConsultSentinel(reply string) (string, bool) {
	trimmed := strings.TrimSpace(reply)
	if !strings.HasPrefix(trimmed, ConsultSentinel) {
		return reply, false
	}
	return strings.TrimSpace(strings.TrimPrefix(trimmed, ConsultSentinel)), true
}

// IsConsultationComplete reports whether the assistant reply signals a
// finished consultation.
func IsConsultationComplete(reply string) bool {
	lower := strings.ToLower(reply)
	for _, phrase := range consultationCompletePhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}
