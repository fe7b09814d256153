package domain

import "strings"

type TemplateID string

func (id TemplateID) Valid() bool {
	return strings.TrimSpace(string(id)) != ""
}
