package types

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ErrorMessage is the body of every non-2xx API response.
//
// Reason is required on the wire; Advice and See are optional hints for the
// caller. Cause rides along for server-side logging and never serializes.
type ErrorMessage struct {
	Reason string `json:"reason"`
	Advice string `json:"advice,omitempty"`
	See    string `json:"see,omitempty"`
	Cause  error  `json:"-"`
}

func (em *ErrorMessage) UnmarshalJSON(b []byte) error {
	var f struct {
		Reason *string `json:"reason"`
		Advice string  `json:"advice"`
		See    string  `json:"see"`
	}
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	if f.Reason == nil {
		return fmt.Errorf(`required field missing: "reason"`)
	}
	em.Reason, em.Advice, em.See = *f.Reason, f.Advice, f.See
	return nil
}

func (e ErrorMessage) String() string {
	var b strings.Builder
	b.WriteString(e.Reason)
	if e.Advice != "" {
		b.WriteString("\n")
		b.WriteString(e.Advice)
	}
	if e.Cause != nil {
		fmt.Fprintf(&b, "\n caused by:%s", e.Cause.Error())
	}
	return b.String()
}

func (e ErrorMessage) Error() string {
	return e.String()
}

func (e ErrorMessage) Unwrap() error {
	return e.Cause
}
