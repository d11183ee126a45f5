// Package queue defines the job payloads exchanged over the message broker
// and the background consumer that delivers them. Dispatch is fire-and-forget
// from the flows' perspective: a code already committed to the cache counts
// as issued even if the notification job fails.
package queue

// Queue names. Durable, declared idempotently by both sides.
const (
	SendCodeQueue = "auth.send_code"
	SendSMSQueue  = "auth.send_sms"
)

// EmailVariant selects subject and body template for a send-code email.
type EmailVariant string

const (
	VariantRegistration   EmailVariant = "EMAIL_REGISTRATION"
	VariantPasswordChange EmailVariant = "PASSWORD_CHANGE"
	VariantEmailChange    EmailVariant = "EMAIL_CHANGE"
)

// SendCodeEvent asks the worker to email a confirmation code.
type SendCodeEvent struct {
	Code      string       `json:"code"`
	Variant   EmailVariant `json:"variant"`
	Email     string       `json:"email"`
	FirstName string       `json:"first_name"`
	LastName  string       `json:"last_name"`
}

// SendSMSEvent asks the worker to text a confirmation code.
type SendSMSEvent struct {
	Code  string `json:"code"`
	Phone string `json:"phone"`
}
