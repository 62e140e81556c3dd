package domain

import "time"

// AccessGrant habilita a un medico a leer los datos de un paciente.
// Revocar no borra el registro: se marca revoked_at.
type AccessGrant struct {
	ID        string     `json:"id"`
	PatientID string     `json:"patient_id"`
	DoctorID  string     `json:"doctor_id"`
	CreatedAt time.Time  `json:"created_at"`
	RevokedAt *time.Time `json:"revoked_at,omitempty"`
}

// Active indica si el permiso sigue vigente.
func (g AccessGrant) Active() bool {
	return g.RevokedAt == nil
}
