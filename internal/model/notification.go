package model

import "fmt"

// Push content for a newly issued prescription.
const (
	NotificationTypeNewPrescription = "NEW_PRESCRIPTION"
	NewPrescriptionTitle            = "Nueva Receta Médica"
	DiagnosisPlaceholder            = "No especificado"
)

// MaxNotificationDiagnosis caps the diagnosis quoted in a push body, in runes.
// FCM rejects payloads over 4 KB.
const MaxNotificationDiagnosis = 500

// NewPrescriptionBody interpolates the diagnosis, or the placeholder when it is absent or empty.
// Long diagnoses are cut and marked with an ellipsis.
func NewPrescriptionBody(diagnosis *string) string {
	d := DiagnosisPlaceholder
	if diagnosis != nil && *diagnosis != "" {
		d = *diagnosis
	}
	if r := []rune(d); len(r) > MaxNotificationDiagnosis {
		d = string(r[:MaxNotificationDiagnosis]) + "…"
	}
	return fmt.Sprintf("Se ha registrado una nueva receta para ti. Diagnóstico: %s.", d)
}
