package validator

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"
	"sync"

	"github.com/Angel-Eco/CuidadoPRO/pkg/apperror"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerOnce sync.Once

// Register installs the custom tags on gin's validator engine. Safe to call
// more than once.
func Register() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}

		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})

		_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
			return IsValidPhone(fl.Field().String())
		})
		_ = v.RegisterValidation("hasat", func(fl validator.FieldLevel) bool {
			return strings.Contains(fl.Field().String(), "@")
		})
	})
}

// IsValidPhone accepts digits plus the separators +, - and space. At least
// one digit is required.
func IsValidPhone(s string) bool {
	digits := 0
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '+' || r == '-' || r == ' ':
		default:
			return false
		}
	}
	return digits > 0
}

// Struct validates v against its binding tags outside of a request.
func Struct(v interface{}) error {
	Register()
	if err := binding.Validator.ValidateStruct(v); err != nil {
		return BindError(err)
	}
	return nil
}

// BindError turns a gin binding failure into a validation error.
func BindError(err error) error {
	if err == nil {
		return nil
	}

	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.Is(err, io.EOF):
		return apperror.BadRequest("El cuerpo de la solicitud está vacío")
	case errors.As(err, &syntaxErr):
		return apperror.Validation("El cuerpo de la solicitud no es JSON válido")
	case errors.As(err, &typeErr):
		return apperror.Validation(fmt.Sprintf("%s tiene un tipo inválido", getFieldName(typeErr.Field)))
	}

	return apperror.Validation(FormatValidationError(err))
}

func FormatValidationError(err error) string {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		var messages []string
		for _, fieldError := range validationErrors {
			message := getFieldErrorMessage(fieldError)
			messages = append(messages, message)
		}
		return strings.Join(messages, "; ")
	}
	return err.Error()
}

func getFieldErrorMessage(fe validator.FieldError) string {
	field := getFieldName(fe.Field())

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s es obligatorio", field)
	case "email", "hasat":
		return fmt.Sprintf("%s debe ser válido", field)
	case "phone":
		return fmt.Sprintf("%s debe contener solo números, +, - y espacios", field)
	case "oneof":
		return fmt.Sprintf("%s debe ser uno de: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s debe tener al menos %s caracteres", field, fe.Param())
		}
		return fmt.Sprintf("%s debe ser mayor o igual a %s", field, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s debe tener como máximo %s caracteres", field, fe.Param())
		}
		return fmt.Sprintf("%s debe ser menor o igual a %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s no es válido", field)
	}
}

func getFieldName(field string) string {
	fieldNames := map[string]string{
		"nombre":            "Nombre",
		"telefono":          "Teléfono",
		"email":             "Email",
		"direccion":         "Dirección",
		"tipo_servicio":     "Tipo de servicio",
		"comentarios":       "Comentarios",
		"comentarios_admin": "Comentarios del administrador",
		"estado":            "Estado",
		"especialidad":      "Especialidad",
		"experiencia":       "Experiencia",
		"descripcion":       "Descripción",
		"orden":             "Orden",
		"imagen_url":        "URL de imagen",
		"username":          "Usuario",
		"password":          "Contraseña",
		"full_name":         "Nombre completo",
		"role":              "Rol",
		"limit":             "Límite",
		"offset":            "Desplazamiento",
	}

	if name, ok := fieldNames[field]; ok {
		return name
	}
	return field
}
