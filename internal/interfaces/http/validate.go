package http

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// validate instancia compartida del validador de structs (tags `validate`).
var validate = validator.New()

// fieldError describe una violación de validación de un campo del body.
type fieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
	Param string `json:"param,omitempty"`
}

// validateStruct corre las reglas `validate` del DTO y devuelve las
// violaciones en un formato apto para ErrorResponse.Details.
func validateStruct(in any) []fieldError {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []fieldError{{Field: "body", Rule: fmt.Sprintf("%v", err)}}
	}
	out := make([]fieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, fieldError{Field: fe.Field(), Rule: fe.Tag(), Param: fe.Param()})
	}
	return out
}
