package schema

import (
	"encoding/json"
	"errors"
)

const ContentType = "application/json"

type PasswordResetLink struct {
	Email       string
	Link        string
	DisplayName string
}

func (m *PasswordResetLink) Marshal() ([]byte, error) {
	return json.Marshal(m)
}

func (m *PasswordResetLink) Unmarshal(data []byte) error {
	if err := json.Unmarshal(data, m); err != nil {
		return err
	}
	if m.Email == "" || m.Link == "" {
		return errors.New("password reset link message must have email and link")
	}
	return nil
}
